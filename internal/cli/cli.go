// Package cli is the terminal front end of the inventory: a cobra command
// tree usable one-shot from the shell or line by line from an interactive
// session.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"InventoryStore/internal/inventory"
	"InventoryStore/pkg/kit"
)

const (
	mutatesAnnotation = "mutates"
	offlineAnnotation = "offline"
)

// App is the state shared by every command of one process.
type App struct {
	Inventory *inventory.Inventory
	Out       io.Writer
	Log       *zap.Logger

	file        string
	interactive bool
	loaded      bool
}

func NewApp(out io.Writer, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		Inventory: inventory.New(),
		Out:       out,
		Log:       log,
	}
}

// NewRootCmd builds a fresh command tree bound to app. A new tree is built
// for every shell line so flag values never leak between commands.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "inventoryctl",
		Short:         "Manage electronics, grocery and clothing stock",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[offlineAnnotation] != "" {
				return nil
			}
			return app.ensureLoaded()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if app.interactive || cmd.Annotations[mutatesAnnotation] == "" {
				return nil
			}
			return app.persist()
		},
	}

	if !app.interactive {
		root.PersistentFlags().StringVarP(&app.file, "file", "f", "data.json", "inventory file")
	}

	root.AddCommand(
		newAddCmd(app),
		newAdjustCmd(app, "sell", -1),
		newAdjustCmd(app, "restock", 1),
		newListCmd(app),
		newSearchCmd(app),
		newExpireCmd(app),
		newValueCmd(app),
		newSaveCmd(app),
		newLoadCmd(app),
		newTokenCmd(app),
	)
	if !app.interactive {
		root.AddCommand(newShellCmd(app))
	}
	return root
}

// ensureLoaded reads the inventory file once per process. A missing file
// means an empty inventory.
func (app *App) ensureLoaded() error {
	if app.loaded {
		return nil
	}
	app.loaded = true

	err := app.Inventory.LoadFromFile(app.file)
	if errors.Is(err, fs.ErrNotExist) {
		app.Log.Debug("inventory file missing, starting empty", zap.String("file", app.file))
		return nil
	}
	if err != nil {
		return err
	}
	app.Log.Debug("inventory loaded", zap.String("file", app.file), zap.Int("products", app.Inventory.Len()))
	return nil
}

func (app *App) persist() error {
	if err := app.Inventory.SaveToFile(app.file); err != nil {
		return err
	}
	app.Log.Debug("inventory saved", zap.String("file", app.file))
	return nil
}

func (app *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(app.Out, format, args...)
}

func newAddCmd(app *App) *cobra.Command {
	var (
		id, name   string
		price      float64
		qty        int
		brand      string
		warranty   int
		expiry     string
		size, mat  string
		annotation = map[string]string{mutatesAnnotation: "true"}
	)

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
	}
	add.PersistentFlags().StringVar(&id, "id", "", "product id")
	add.PersistentFlags().StringVar(&name, "name", "", "product name")
	add.PersistentFlags().Float64Var(&price, "price", 0, "unit price")
	add.PersistentFlags().IntVar(&qty, "qty", 0, "quantity in stock")
	_ = add.MarkPersistentFlagRequired("id")

	insert := func(p inventory.Product) error {
		if price < 0 || qty < 0 {
			return errors.New("price and quantity must not be negative")
		}
		if err := app.Inventory.Add(p); err != nil {
			return err
		}
		app.printf("%s product added: %s\n", p.Kind, p)
		return nil
	}

	electronics := &cobra.Command{
		Use:         "electronics",
		Short:       "Add an electronics product",
		Args:        cobra.NoArgs,
		Annotations: annotation,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if warranty < 0 {
				return errors.New("warranty years must not be negative")
			}
			return insert(inventory.NewElectronics(id, name, price, qty, brand, warranty))
		},
	}
	electronics.Flags().StringVar(&brand, "brand", "", "brand")
	electronics.Flags().IntVar(&warranty, "warranty", 0, "warranty in years")

	grocery := &cobra.Command{
		Use:         "grocery",
		Short:       "Add a grocery product",
		Args:        cobra.NoArgs,
		Annotations: annotation,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := time.Parse(inventory.DateLayout, expiry); err != nil {
				return fmt.Errorf("expiry must be YYYY-MM-DD: %q", expiry)
			}
			return insert(inventory.NewGrocery(id, name, price, qty, expiry))
		},
	}
	grocery.Flags().StringVar(&expiry, "expiry", time.Now().Format(inventory.DateLayout), "expiry date (YYYY-MM-DD)")

	clothing := &cobra.Command{
		Use:         "clothing",
		Short:       "Add a clothing product",
		Args:        cobra.NoArgs,
		Annotations: annotation,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return insert(inventory.NewClothing(id, name, price, qty, size, mat))
		},
	}
	clothing.Flags().StringVar(&size, "size", "", "size")
	clothing.Flags().StringVar(&mat, "material", "", "material")

	add.AddCommand(electronics, grocery, clothing)
	return add
}

// newAdjustCmd builds sell (sign -1) and restock (sign 1).
func newAdjustCmd(app *App, verb string, sign int) *cobra.Command {
	return &cobra.Command{
		Use:         verb + " ID QUANTITY",
		Short:       verb + " stock of a product",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{mutatesAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("quantity must be a non-negative integer: %q", args[1])
			}
			if err := app.Inventory.UpdateQuantity(args[0], sign*n); err != nil {
				return err
			}
			p, _ := app.Inventory.Get(args[0])
			app.printf("%s\n", p)
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps := app.Inventory.List()
			if len(ps) == 0 {
				app.printf("No products found.\n")
				return nil
			}
			renderProducts(app.Out, ps)
			return nil
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search KEYWORD",
		Short: "Search products by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps := app.Inventory.Search(args[0])
			if len(ps) == 0 {
				app.printf("No matching product found.\n")
				return nil
			}
			renderProducts(app.Out, ps)
			return nil
		},
	}
}

func newExpireCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "expire",
		Short:       "Remove expired grocery products",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{mutatesAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed := app.Inventory.RemoveExpired()
			app.printf("Expired groceries removed: %d\n", len(removed))
			for _, id := range removed {
				app.printf("  %s\n", id)
			}
			return nil
		},
	}
}

func newValueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "value",
		Short: "Show the total inventory value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.printf("Total Inventory Value: $%s\n", app.Inventory.TotalValue().StringFixed(2))
			return nil
		},
	}
}

func newSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save [PATH]",
		Short: "Save the inventory to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.file
			if len(args) == 1 {
				path = args[0]
			}
			if err := app.Inventory.SaveToFile(path); err != nil {
				return err
			}
			app.printf("Inventory saved to %s.\n", path)
			return nil
		},
	}
}

func newLoadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "load [PATH]",
		Short:       "Merge products from a file into the inventory",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{mutatesAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.file
			if len(args) == 1 {
				path = args[0]
			}
			if err := app.Inventory.LoadFromFile(path); err != nil {
				return err
			}
			app.printf("Inventory loaded from %s.\n", path)
			return nil
		},
	}
}

func newTokenCmd(app *App) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Mint a bearer token for the HTTP service (uses JWT_SECRET)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			tok, err := kit.NewTokenMaker(secret).New(subject, role, ttl)
			if err != nil {
				return err
			}
			app.printf("%s\n", tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "inventoryctl", "token subject")
	cmd.Flags().StringVar(&role, "role", "clerk", "token role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

// Describe turns a command error into the message shown to the user.
func Describe(err error) string {
	var se *inventory.StockError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("Not enough stock for %s: %d available, %d requested.", se.ID, se.Available, -se.Delta)
	case errors.Is(err, inventory.ErrDuplicateProductID):
		return "Product ID already exists!"
	case errors.Is(err, inventory.ErrQuantityOverflow):
		return "Quantity too large."
	case errors.Is(err, inventory.ErrNotFound):
		return "Product not found."
	case errors.Is(err, inventory.ErrParse):
		return "Inventory file is malformed: " + err.Error()
	case errors.Is(err, inventory.ErrEncode):
		return "Inventory cannot be saved: " + err.Error()
	case errors.Is(err, inventory.ErrIO):
		return "Cannot access inventory file: " + err.Error()
	}
	return "Error: " + err.Error()
}
