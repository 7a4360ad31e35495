package maker

import (
	"math"

	"mmbot.com/internal/quotes/datasource/model"
)

// RandFunc returns a uniform value in [0,1).
type RandFunc func() float64

type QuoteParams struct {
	TargetDepth      int
	PriceOffsetRatio float64 // maxDiff = spread * ratio
	BalanceFraction  float64 // 单笔最多动用余额的比例
	MaxQuoteNotional float64 // 单笔最大 quote 名义金额
}

// MaxOrderID 外部指定 id 的上限，上面留出的空间给 Next 用，保证不回绕
const MaxOrderID uint64 = math.MaxInt64

// IDSeq 进程内单调递增的订单号，不复用。非并发安全，由 Bot 加锁
type IDSeq struct {
	last uint64
}

func (s *IDSeq) Next() uint64 {
	s.last++
	return s.last
}

// Observe moves the sequence past an externally assigned id.
func (s *IDSeq) Observe(id uint64) {
	if id > s.last {
		s.last = id
	}
}

type Quoter struct {
	params QuoteParams
	rand   RandFunc
}

func NewQuoter(params QuoteParams, r RandFunc) *Quoter {
	return &Quoter{params: params, rand: r}
}

// Replenish tops book up to TargetDepth and returns the orders it added.
//
// Sides alternate by book size parity (even → BID, odd → ASK). Each order
// draws its price offset first and its amount second. Nothing is placed when
// the snapshot has no usable price, and the loop stops early once the
// maximum amount for the next side is not positive.
func (q *Quoter) Replenish(book *Book, snap model.Snapshot, bal Balance, ids *IDSeq) []Order {
	if !snap.Quotable() {
		return nil
	}
	maxDiff := snap.Spread() * q.params.PriceOffsetRatio

	var placed []Order
	for book.Len() < q.params.TargetDepth {
		side := Bid
		if book.Len()%2 == 1 {
			side = Ask
		}

		u := q.rand() * maxDiff
		price := snap.CurrentPrice - u
		if side == Ask {
			price = snap.CurrentPrice + u
		}
		if !finitePositive(price) {
			price = snap.CurrentPrice
		}

		maxAmount := q.maxAmount(side, price, bal)
		if !finitePositive(maxAmount) {
			break
		}
		o := Order{
			ID:     ids.Next(),
			Side:   side,
			Price:  price,
			Amount: q.rand() * maxAmount,
		}
		if err := book.Add(o); err != nil {
			break
		}
		placed = append(placed, o)
	}
	return placed
}

func (q *Quoter) maxAmount(side Side, price float64, bal Balance) float64 {
	maxQuote := math.Min(bal.Quote*q.params.BalanceFraction, q.params.MaxQuoteNotional)
	if side == Bid {
		return maxQuote / price
	}
	return math.Min(bal.Base*q.params.BalanceFraction, maxQuote/price)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
