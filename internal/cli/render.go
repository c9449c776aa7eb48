package cli

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"InventoryStore/internal/inventory"
)

func renderProducts(w io.Writer, ps []inventory.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Type", "Name", "Price", "Qty", "Details"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, p := range ps {
		t.AppendRow(table.Row{
			p.ID,
			string(p.Kind),
			p.Name,
			"$" + strconv.FormatFloat(p.Price, 'f', -1, 64),
			p.Quantity,
			details(p),
		})
	}
	t.Render()
}

func details(p inventory.Product) string {
	switch {
	case p.Electronics != nil:
		return p.Electronics.Brand + ", " + strconv.Itoa(p.Electronics.WarrantyYears) + "y warranty"
	case p.Grocery != nil:
		return "expires " + p.Grocery.ExpiryDate
	case p.Clothing != nil:
		return p.Clothing.Size + ", " + p.Clothing.Material
	}
	return ""
}
