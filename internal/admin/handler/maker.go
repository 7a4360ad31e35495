package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"mmbot.com/internal/maker"
	"mmbot.com/internal/quotes/datasource/model"
	"mmbot.com/pkg/common"
	"mmbot.com/pkg/logger"
	"mmbot.com/pkg/xerr"
)

// Maker 是 admin 需要的 bot 能力，*maker.Bot 满足
type Maker interface {
	Balance() maker.Balance
	Orders() []maker.Order
	AddOrder(o maker.Order) (maker.Order, error)
	CheckFills(ctx context.Context, snap model.Snapshot) []maker.Order
	Replenish(ctx context.Context, snap model.Snapshot) []maker.Order
}

type Bot struct {
	M Maker
}

type orderReq struct {
	ID     uint64     `json:"id"`
	Side   maker.Side `json:"side" binding:"required"`
	Price  float64    `json:"price" binding:"required"`
	Amount float64    `json:"amount"`
}

func (b *Bot) Balance(c *gin.Context) {
	common.Success(c, b.M.Balance())
}

func (b *Bot) Orders(c *gin.Context) {
	orders := b.M.Orders()
	common.Success(c, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// AddOrder 绕过报价策略直接挂单，测试/预置数据用
func (b *Bot) AddOrder(c *gin.Context) {
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailFromErr(c, xerr.Wrap(err, xerr.RequestParamsError, "invalid order"))
		return
	}
	o, err := b.M.AddOrder(maker.Order{ID: req.ID, Side: req.Side, Price: req.Price, Amount: req.Amount})
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	logger.Info(c, "order seeded",
		zap.Uint64("id", o.ID),
		zap.String("side", o.Side.String()),
		zap.Float64("price", o.Price),
		zap.Float64("amount", o.Amount),
	)
	common.Success(c, o)
}

func (b *Bot) CheckFills(c *gin.Context) {
	snap, ok := bindSnapshot(c)
	if !ok {
		return
	}
	filled := b.M.CheckFills(c.Request.Context(), snap)
	common.Success(c, gin.H{
		"filled":  nonNil(filled),
		"balance": b.M.Balance(),
	})
}

func (b *Bot) Replenish(c *gin.Context) {
	snap, ok := bindSnapshot(c)
	if !ok {
		return
	}
	placed := b.M.Replenish(c.Request.Context(), snap)
	common.Success(c, gin.H{
		"placed": nonNil(placed),
		"open":   len(b.M.Orders()),
	})
}

func bindSnapshot(c *gin.Context) (model.Snapshot, bool) {
	var snap model.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		common.FailFromErr(c, xerr.Wrap(err, xerr.RequestParamsError, "invalid snapshot"))
		return snap, false
	}
	if !snap.Quotable() {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "current_price must be positive"))
		return snap, false
	}
	return snap, true
}

func nonNil(o []maker.Order) []maker.Order {
	if o == nil {
		return []maker.Order{}
	}
	return o
}
