package maker

import "fmt"

// Book: 按插入顺序保存挂单，id -> 下标 做 O(1) 查找
type Book struct {
	orders []Order
	pos    map[uint64]int
}

func NewBook(capacity int) *Book {
	return &Book{
		orders: make([]Order, 0, capacity),
		pos:    make(map[uint64]int, capacity),
	}
}

func (b *Book) Len() int { return len(b.orders) }

// Add appends o. IDs are unique within a book.
func (b *Book) Add(o Order) error {
	if _, ok := b.pos[o.ID]; ok {
		return fmt.Errorf("duplicate order id %d", o.ID)
	}
	b.pos[o.ID] = len(b.orders)
	b.orders = append(b.orders, o)
	return nil
}

func (b *Book) Get(id uint64) (Order, bool) {
	i, ok := b.pos[id]
	if !ok {
		return Order{}, false
	}
	return b.orders[i], true
}

func (b *Book) Remove(id uint64) (Order, bool) {
	i, ok := b.pos[id]
	if !ok {
		return Order{}, false
	}
	o := b.orders[i]
	copy(b.orders[i:], b.orders[i+1:]) // 右边整体左移一格
	b.orders = b.orders[:len(b.orders)-1]
	delete(b.pos, id)
	// 下标变了，从 i 开始重建
	for j := i; j < len(b.orders); j++ {
		b.pos[b.orders[j].ID] = j
	}
	return o, true
}

// Extract removes every order matching pred and returns them in insertion
// order. The remaining orders keep their relative order.
func (b *Book) Extract(pred func(Order) bool) []Order {
	var out []Order
	kept := b.orders[:0]
	for _, o := range b.orders {
		if pred(o) {
			out = append(out, o)
			delete(b.pos, o.ID)
			continue
		}
		b.pos[o.ID] = len(kept)
		kept = append(kept, o)
	}
	// 清掉尾部残留，避免旧值被误读
	for i := len(kept); i < len(b.orders); i++ {
		b.orders[i] = Order{}
	}
	b.orders = kept
	return out
}

// Orders returns a copy in insertion order.
func (b *Book) Orders() []Order {
	out := make([]Order, len(b.orders))
	copy(out, b.orders)
	return out
}
