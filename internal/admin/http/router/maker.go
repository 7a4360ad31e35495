package router

import (
	"github.com/gin-gonic/gin"
	"mmbot.com/internal/admin/handler"
)

func Maker(api *gin.RouterGroup, m handler.Maker) {
	h := handler.Bot{M: m}
	api.GET("/balance", h.Balance)

	orders := api.Group("/orders")
	{
		orders.GET("", h.Orders)
		orders.POST("", h.AddOrder)
		orders.POST("/replenish", h.Replenish)
	}
	api.POST("/fills/check", h.CheckFills)
}
