package inventory

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Inventory is the in-memory product store. Products are kept in insertion
// order; values handed out are copies, so callers cannot corrupt stock.
type Inventory struct {
	mu    sync.RWMutex
	order []string
	m     map[string]*Product
	now   func() time.Time
}

type Option func(*Inventory)

// WithClock overrides the wall clock used by RemoveExpired.
func WithClock(now func() time.Time) Option {
	return func(inv *Inventory) { inv.now = now }
}

func New(opts ...Option) *Inventory {
	inv := &Inventory{
		m:   map[string]*Product{},
		now: time.Now,
	}
	for _, o := range opts {
		o(inv)
	}
	return inv
}

func (inv *Inventory) Add(p Product) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, ok := inv.m[p.ID]; ok {
		return fmt.Errorf("%w: id=%s", ErrDuplicateProductID, p.ID)
	}
	inv.put(p)
	return nil
}

// put inserts or overwrites p, keeping the position of an existing entry.
func (inv *Inventory) put(p Product) {
	p = p.clone()
	if _, ok := inv.m[p.ID]; !ok {
		inv.order = append(inv.order, p.ID)
	}
	inv.m[p.ID] = &p
}

// UpdateQuantity applies delta to the product's stock. A sale larger than the
// available stock fails with a *StockError and a restock past math.MaxInt
// fails with ErrQuantityOverflow. Either way the quantity is left unchanged.
func (inv *Inventory) UpdateQuantity(id string, delta int) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	p, ok := inv.m[id]
	if !ok {
		return fmt.Errorf("%w: id=%s", ErrNotFound, id)
	}
	if delta < 0 && p.Quantity+delta < 0 {
		return &StockError{ID: id, Delta: delta, Available: p.Quantity}
	}
	if delta > 0 && p.Quantity > math.MaxInt-delta {
		return fmt.Errorf("%w: id=%s quantity=%d delta=%d", ErrQuantityOverflow, id, p.Quantity, delta)
	}
	p.Quantity += delta
	return nil
}

func (inv *Inventory) Get(id string) (Product, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	p, ok := inv.m[id]
	if !ok {
		return Product{}, false
	}
	return p.clone(), true
}

// Search returns products whose name contains keyword, ignoring case.
func (inv *Inventory) Search(keyword string) []Product {
	kw := strings.ToLower(keyword)

	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]Product, 0)
	for _, id := range inv.order {
		p := inv.m[id]
		if strings.Contains(strings.ToLower(p.Name), kw) {
			out = append(out, p.clone())
		}
	}
	return out
}

func (inv *Inventory) List() []Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]Product, 0, len(inv.order))
	for _, id := range inv.order {
		out = append(out, inv.m[id].clone())
	}
	return out
}

func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.order)
}

// RemoveExpired deletes every grocery whose expiry date is strictly before
// today and returns the removed ids. Groceries with an unreadable expiry date
// are kept.
func (inv *Inventory) RemoveExpired() []string {
	now := inv.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	inv.mu.Lock()
	defer inv.mu.Unlock()

	var removed []string
	kept := inv.order[:0]
	for _, id := range inv.order {
		exp, ok, err := inv.m[id].Expiry()
		if ok && err == nil && exp.Before(today) {
			delete(inv.m, id)
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	inv.order = kept
	return removed
}

// TotalValue sums price*quantity over all products. No rounding is applied.
func (inv *Inventory) TotalValue() decimal.Decimal {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	total := decimal.Zero
	for _, id := range inv.order {
		p := inv.m[id]
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// merge inserts or overwrites every product. Products not in ps are kept.
func (inv *Inventory) merge(ps []Product) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for _, p := range ps {
		inv.put(p)
	}
}
