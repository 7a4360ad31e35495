package config

import (
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadAndWatch reads config/{service}.yaml into out and keeps it fresh.
// onChange, when non-nil, runs after every successful reload.
func LoadAndWatch(service string, out interface{}, onChange func()) (*viper.Viper, error) {
	return LoadAndWatchDir(service, "", out, onChange)
}

// LoadAndWatchDir is LoadAndWatch with an extra search directory tried first.
func LoadAndWatchDir(service, dir string, out interface{}, onChange func()) (*viper.Viper, error) {
	// .env 里的 key（例如 MMBOT_FEED_API_KEY）先进环境变量，再由 viper 覆盖
	_ = godotenv.Load()

	v := viper.New()
	// 约定：config/{service}.yaml
	v.SetConfigName(service)
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 环境变量覆盖，例如：
	//   MMBOT_FEED_API_KEY 覆盖 feed.api_key
	//   MMBOT_ADMIN_ADDR   覆盖 admin.addr
	v.SetEnvPrefix(strings.ToUpper(service))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(out); err != nil {
		return nil, err
	}

	log.Printf("[%s] config loaded from %s", service, v.ConfigFileUsed())

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("[%s] config file changed: %s", service, e.Name)

		if err := v.Unmarshal(out); err != nil {
			log.Printf("[%s] reload config error: %v", service, err)
			return
		}
		if onChange != nil {
			onChange()
		}
		log.Printf("[%s] config reloaded OK", service)
	})

	return v, nil
}
