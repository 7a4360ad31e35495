package maker

// Crosses reports whether a resting order fills at price.
//   - BID: price <= order.Price
//   - ASK: price >= order.Price
func Crosses(o Order, price float64) bool {
	switch o.Side {
	case Bid:
		return price <= o.Price
	case Ask:
		return price >= o.Price
	default:
		return false
	}
}

// MatchFills removes every order crossed by price from book, settles each on
// ledger in insertion order and returns them.
func MatchFills(book *Book, ledger *Ledger, price float64) []Order {
	filled := book.Extract(func(o Order) bool { return Crosses(o, price) })
	for _, o := range filled {
		ledger.ApplyFill(o)
	}
	return filled
}
