package inventory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type Kind string

const (
	KindElectronics Kind = "Electronics"
	KindGrocery     Kind = "Grocery"
	KindClothing    Kind = "Clothing"
)

// DateLayout is the ISO calendar date used for grocery expiry dates.
const DateLayout = "2006-01-02"

func (k Kind) Valid() bool {
	switch k {
	case KindElectronics, KindGrocery, KindClothing:
		return true
	}
	return false
}

// Product is a tagged union over the product kinds. Common fields live on the
// struct; exactly one of the variant payloads is set, matching Kind.
type Product struct {
	Kind     Kind
	ID       string
	Name     string
	Price    float64
	Quantity int

	Electronics *Electronics
	Grocery     *Grocery
	Clothing    *Clothing
}

type Electronics struct {
	Brand         string
	WarrantyYears int
}

type Grocery struct {
	ExpiryDate string
}

type Clothing struct {
	Size     string
	Material string
}

func NewElectronics(id, name string, price float64, qty int, brand string, warrantyYears int) Product {
	return Product{
		Kind: KindElectronics, ID: id, Name: name, Price: price, Quantity: qty,
		Electronics: &Electronics{Brand: brand, WarrantyYears: warrantyYears},
	}
}

func NewGrocery(id, name string, price float64, qty int, expiryDate string) Product {
	return Product{
		Kind: KindGrocery, ID: id, Name: name, Price: price, Quantity: qty,
		Grocery: &Grocery{ExpiryDate: expiryDate},
	}
}

func NewClothing(id, name string, price float64, qty int, size, material string) Product {
	return Product{
		Kind: KindClothing, ID: id, Name: name, Price: price, Quantity: qty,
		Clothing: &Clothing{Size: size, Material: material},
	}
}

// Expiry parses the grocery expiry date. ok is false for other kinds.
func (p Product) Expiry() (t time.Time, ok bool, err error) {
	if p.Kind != KindGrocery || p.Grocery == nil {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(DateLayout, p.Grocery.ExpiryDate)
	if err != nil {
		return time.Time{}, true, err
	}
	return t, true, nil
}

func (p Product) String() string {
	return fmt.Sprintf("%s (ID: %s) - $%s x %d",
		p.Name, p.ID, strconv.FormatFloat(p.Price, 'f', -1, 64), p.Quantity)
}

// clone returns a copy that shares no variant payload with p.
func (p Product) clone() Product {
	if p.Electronics != nil {
		e := *p.Electronics
		p.Electronics = &e
	}
	if p.Grocery != nil {
		g := *p.Grocery
		p.Grocery = &g
	}
	if p.Clothing != nil {
		c := *p.Clothing
		p.Clothing = &c
	}
	return p
}

// Record field order is the persisted key order.
type electronicsRecord struct {
	Type          Kind    `json:"type"`
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Brand         string  `json:"brand"`
	WarrantyYears int     `json:"warranty_years"`
}

type groceryRecord struct {
	Type       Kind    `json:"type"`
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	ExpiryDate string  `json:"expiry_date"`
}

type clothingRecord struct {
	Type      Kind    `json:"type"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Material  string  `json:"material"`
}

// Record returns the ordered, tagged representation of p used for display
// and persistence.
func (p Product) Record() any {
	switch p.Kind {
	case KindElectronics:
		var e Electronics
		if p.Electronics != nil {
			e = *p.Electronics
		}
		return electronicsRecord{p.Kind, p.ID, p.Name, p.Price, p.Quantity, e.Brand, e.WarrantyYears}
	case KindGrocery:
		var g Grocery
		if p.Grocery != nil {
			g = *p.Grocery
		}
		return groceryRecord{p.Kind, p.ID, p.Name, p.Price, p.Quantity, g.ExpiryDate}
	case KindClothing:
		var c Clothing
		if p.Clothing != nil {
			c = *p.Clothing
		}
		return clothingRecord{p.Kind, p.ID, p.Name, p.Price, p.Quantity, c.Size, c.Material}
	}
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	rec := p.Record()
	if rec == nil {
		return nil, fmt.Errorf("unknown product kind %q", p.Kind)
	}
	return json.Marshal(rec)
}

// UnmarshalJSON decodes a tagged record. An unrecognised tag yields
// errUnknownKind so callers can skip the record. The product_id key must be
// present; an empty id is accepted.
func (p *Product) UnmarshalJSON(b []byte) error {
	var head struct {
		Type      Kind    `json:"type"`
		ProductID *string `json:"product_id"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	if head.Type.Valid() && head.ProductID == nil {
		return fmt.Errorf("%s record without product_id", head.Type)
	}

	switch head.Type {
	case KindElectronics:
		var r electronicsRecord
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		*p = NewElectronics(r.ProductID, r.Name, r.Price, r.Quantity, r.Brand, r.WarrantyYears)
	case KindGrocery:
		var r groceryRecord
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		*p = NewGrocery(r.ProductID, r.Name, r.Price, r.Quantity, r.ExpiryDate)
	case KindClothing:
		var r clothingRecord
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		*p = NewClothing(r.ProductID, r.Name, r.Price, r.Quantity, r.Size, r.Material)
	default:
		return fmt.Errorf("%w: %q", errUnknownKind, head.Type)
	}
	return nil
}
