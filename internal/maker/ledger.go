package maker

// Ledger only changes through ApplyFill.
type Ledger struct {
	bal Balance
}

func NewLedger(initial Balance) *Ledger {
	return &Ledger{bal: initial}
}

func (l *Ledger) Balance() Balance { return l.bal }

// ApplyFill settles o and returns the new balance. No bounds checks.
func (l *Ledger) ApplyFill(o Order) Balance {
	l.bal = l.bal.Apply(o)
	return l.bal
}
