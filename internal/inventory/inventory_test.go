package inventory_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"InventoryStore/internal/inventory"
)

func fixedClock(day string) func() time.Time {
	t, err := time.Parse(inventory.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(15 * time.Hour) }
}

func phone() inventory.Product {
	return inventory.NewElectronics("E1", "Phone", 500, 10, "Acme", 2)
}

func TestInventory_EmptyTotalIsZero(t *testing.T) {
	inv := inventory.New()
	if !inv.TotalValue().IsZero() {
		t.Fatalf("total=%s want 0", inv.TotalValue())
	}
	if got := inv.List(); len(got) != 0 {
		t.Fatalf("list len=%d want 0", len(got))
	}
}

func TestInventory_AddRejectsDuplicateID(t *testing.T) {
	inv := inventory.New()
	if err := inv.Add(phone()); err != nil {
		t.Fatalf("add: %v", err)
	}

	err := inv.Add(inventory.NewClothing("E1", "Shirt", 20, 1, "M", "cotton"))
	if !errors.Is(err, inventory.ErrDuplicateProductID) {
		t.Fatalf("err=%v want ErrDuplicateProductID", err)
	}

	p, ok := inv.Get("E1")
	if !ok || p.Kind != inventory.KindElectronics || p.Name != "Phone" || p.Quantity != 10 {
		t.Fatalf("first product changed: %+v", p)
	}
	if inv.Len() != 1 {
		t.Fatalf("len=%d want 1", inv.Len())
	}
}

func TestInventory_UpdateQuantity(t *testing.T) {
	inv := inventory.New()
	if err := inv.Add(phone()); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := inv.UpdateQuantity("E1", -3); err != nil {
		t.Fatalf("sell 3: %v", err)
	}
	if p, _ := inv.Get("E1"); p.Quantity != 7 {
		t.Fatalf("quantity=%d want 7", p.Quantity)
	}

	err := inv.UpdateQuantity("E1", -20)
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("err=%v want ErrInsufficientStock", err)
	}
	var se *inventory.StockError
	if !errors.As(err, &se) || se.ID != "E1" || se.Delta != -20 || se.Available != 7 {
		t.Fatalf("stock error=%#v", se)
	}
	if p, _ := inv.Get("E1"); p.Quantity != 7 {
		t.Fatalf("quantity after failed sale=%d want 7", p.Quantity)
	}

	if err := inv.UpdateQuantity("E1", -7); err != nil {
		t.Fatalf("sell to zero: %v", err)
	}
	p, ok := inv.Get("E1")
	if !ok || p.Quantity != 0 {
		t.Fatalf("zero-stock product must stay listed: ok=%v qty=%d", ok, p.Quantity)
	}

	if err := inv.UpdateQuantity("E1", 5); err != nil {
		t.Fatalf("restock: %v", err)
	}
	if p, _ := inv.Get("E1"); p.Quantity != 5 {
		t.Fatalf("quantity=%d want 5", p.Quantity)
	}

	if err := inv.UpdateQuantity("nope", 1); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestInventory_QuantityNeverNegative(t *testing.T) {
	inv := inventory.New()
	if err := inv.Add(inventory.NewGrocery("G1", "Milk", 1.5, 3, "2999-01-01")); err != nil {
		t.Fatalf("add: %v", err)
	}

	deltas := []int{-1, -5, 4, -6, -1, 0, -1, 2, -3}
	want := 3
	for _, d := range deltas {
		err := inv.UpdateQuantity("G1", d)
		if want+d < 0 {
			if !errors.Is(err, inventory.ErrInsufficientStock) {
				t.Fatalf("delta %d: err=%v want ErrInsufficientStock", d, err)
			}
		} else {
			if err != nil {
				t.Fatalf("delta %d: %v", d, err)
			}
			want += d
		}

		p, _ := inv.Get("G1")
		if p.Quantity != want || p.Quantity < 0 {
			t.Fatalf("after delta %d: quantity=%d want %d", d, p.Quantity, want)
		}
	}
}

func TestInventory_UpdateQuantityExtremeDeltas(t *testing.T) {
	inv := inventory.New()
	_ = inv.Add(phone())
	_ = inv.Add(inventory.NewClothing("C1", "Hat", 5, 0, "M", "felt"))

	err := inv.UpdateQuantity("E1", math.MaxInt)
	if !errors.Is(err, inventory.ErrQuantityOverflow) {
		t.Fatalf("restock past max: err=%v want ErrQuantityOverflow", err)
	}
	if p, _ := inv.Get("E1"); p.Quantity != 10 {
		t.Fatalf("quantity after overflow=%d want 10", p.Quantity)
	}

	if err := inv.UpdateQuantity("E1", math.MaxInt-10); err != nil {
		t.Fatalf("restock to max: %v", err)
	}
	if p, _ := inv.Get("E1"); p.Quantity != math.MaxInt {
		t.Fatalf("quantity=%d want MaxInt", p.Quantity)
	}
	if err := inv.UpdateQuantity("E1", 1); !errors.Is(err, inventory.ErrQuantityOverflow) {
		t.Fatalf("restock at max: err=%v", err)
	}

	err = inv.UpdateQuantity("C1", math.MinInt)
	if !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Fatalf("min int delta: err=%v want ErrInsufficientStock", err)
	}
	if p, _ := inv.Get("C1"); p.Quantity != 0 {
		t.Fatalf("quantity after min int delta=%d want 0", p.Quantity)
	}
}

func TestInventory_Search(t *testing.T) {
	inv := inventory.New()
	for _, p := range []inventory.Product{
		phone(),
		inventory.NewClothing("C1", "Shoes", 80, 4, "42", "leather"),
		inventory.NewElectronics("E2", "Headphones", 120, 2, "Acme", 1),
	} {
		if err := inv.Add(p); err != nil {
			t.Fatalf("add %s: %v", p.ID, err)
		}
	}

	tests := []struct {
		keyword string
		want    []string
	}{
		{"pho", []string{"E1", "E2"}},
		{"PHONE", []string{"E1", "E2"}},
		{"shoe", []string{"C1"}},
		{"", []string{"E1", "C1", "E2"}},
		{"tablet", nil},
	}
	for _, tt := range tests {
		got := inv.Search(tt.keyword)
		if got == nil {
			t.Fatalf("search %q returned nil slice", tt.keyword)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("search %q: got %d products want %d", tt.keyword, len(got), len(tt.want))
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Fatalf("search %q [%d]: id=%s want %s", tt.keyword, i, got[i].ID, id)
			}
		}
	}
}

func TestInventory_SearchPhoneNotShoes(t *testing.T) {
	inv := inventory.New()
	_ = inv.Add(phone())
	_ = inv.Add(inventory.NewClothing("C1", "Shoes", 80, 4, "42", "leather"))

	got := inv.Search("pho")
	if len(got) != 1 || got[0].Name != "Phone" {
		t.Fatalf("got %+v want only Phone", got)
	}
}

func TestInventory_ListKeepsInsertionOrderAndCopies(t *testing.T) {
	inv := inventory.New()
	ids := []string{"z", "a", "m"}
	for _, id := range ids {
		if err := inv.Add(inventory.NewClothing(id, "Item "+id, 1, 1, "S", "wool")); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got := inv.List()
	for i, id := range ids {
		if got[i].ID != id {
			t.Fatalf("list[%d]=%s want %s", i, got[i].ID, id)
		}
	}

	got[0].Quantity = -100
	got[0].Clothing.Size = "XXL"
	p, _ := inv.Get("z")
	if p.Quantity != 1 || p.Clothing.Size != "S" {
		t.Fatalf("store mutated through listed copy: %+v %+v", p, p.Clothing)
	}
}

func TestInventory_RemoveExpired(t *testing.T) {
	inv := inventory.New(inventory.WithClock(fixedClock("2026-10-15")))
	for _, p := range []inventory.Product{
		inventory.NewGrocery("G1", "Old bread", 2, 5, "2000-01-01"),
		phone(),
		inventory.NewGrocery("G2", "Yesterday milk", 1, 1, "2026-10-14"),
		inventory.NewGrocery("G3", "Today cheese", 3, 1, "2026-10-15"),
		inventory.NewGrocery("G4", "Fresh eggs", 4, 12, "2026-11-01"),
		inventory.NewClothing("C1", "Coat", 90, 1, "L", "wool"),
		inventory.NewGrocery("G5", "Mystery", 1, 1, "not a date"),
	} {
		if err := inv.Add(p); err != nil {
			t.Fatalf("add %s: %v", p.ID, err)
		}
	}

	removed := inv.RemoveExpired()
	if len(removed) != 2 || removed[0] != "G1" || removed[1] != "G2" {
		t.Fatalf("removed=%v want [G1 G2]", removed)
	}

	var left []string
	for _, p := range inv.List() {
		left = append(left, p.ID)
	}
	want := []string{"E1", "G3", "G4", "C1", "G5"}
	if len(left) != len(want) {
		t.Fatalf("left=%v want %v", left, want)
	}
	for i := range want {
		if left[i] != want[i] {
			t.Fatalf("left=%v want %v", left, want)
		}
	}

	if again := inv.RemoveExpired(); len(again) != 0 {
		t.Fatalf("second sweep removed %v", again)
	}
}

func TestInventory_RemoveExpiredWithoutGroceriesIsNoop(t *testing.T) {
	inv := inventory.New()
	_ = inv.Add(phone())

	if removed := inv.RemoveExpired(); len(removed) != 0 {
		t.Fatalf("removed=%v", removed)
	}
	if inv.Len() != 1 {
		t.Fatalf("len=%d want 1", inv.Len())
	}
}

func TestInventory_TotalValue(t *testing.T) {
	inv := inventory.New(inventory.WithClock(fixedClock("2026-10-15")))
	_ = inv.Add(phone())
	_ = inv.Add(inventory.NewGrocery("G1", "Tea", 0.1, 3, "2000-01-01"))
	_ = inv.Add(inventory.NewClothing("C1", "Socks", 0.2, 1, "M", "cotton"))

	want := decimal.RequireFromString("5000.5")
	if got := inv.TotalValue(); !got.Equal(want) {
		t.Fatalf("total=%s want %s", got, want)
	}

	inv.RemoveExpired()
	want = want.Sub(decimal.RequireFromString("0.3"))
	if got := inv.TotalValue(); !got.Equal(want) {
		t.Fatalf("total after expiry=%s want %s", got, want)
	}
}

func TestProduct_String(t *testing.T) {
	tests := []struct {
		p    inventory.Product
		want string
	}{
		{phone(), "Phone (ID: E1) - $500 x 10"},
		{inventory.NewGrocery("G1", "Milk", 1.25, 3, "2026-01-01"), "Milk (ID: G1) - $1.25 x 3"},
		{inventory.NewClothing("C1", "Shirt", 19.99, 0, "M", "cotton"), "Shirt (ID: C1) - $19.99 x 0"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Fatalf("String()=%q want %q", got, tt.want)
		}
	}
}
