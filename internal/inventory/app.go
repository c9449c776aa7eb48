package inventory

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"InventoryStore/pkg/kit"
)

type Server struct {
	Inventory *Inventory
	Snapshot  Snapshotter
	Log       *zap.Logger
}

type createReq struct {
	Type          Kind    `json:"type"`
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Brand         string  `json:"brand"`
	WarrantyYears int     `json:"warranty_years"`
	ExpiryDate    string  `json:"expiry_date"`
	Size          string  `json:"size"`
	Material      string  `json:"material"`
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

var errBadProduct = errors.New("bad product")

// Routes registers the read-only routes on r and the mutating ones on mut.
func (s *Server) Routes(r, mut chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)
	r.Get("/inventory/value", s.value)

	mut.Post("/products", s.create)
	mut.Post("/products/{id}/sell", s.adjust(-1))
	mut.Post("/products/{id}/restock", s.adjust(1))
	mut.Post("/products/expired/remove", s.removeExpired)
	mut.Post("/inventory/save", s.save)
	mut.Post("/inventory/load", s.load)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.Snapshot == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Snapshot.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if qs := r.URL.Query(); qs.Has("q") {
		kit.WriteJSON(w, http.StatusOK, s.Inventory.Search(qs.Get("q")))
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Inventory.List())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.Inventory.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) value(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"total_value": s.Inventory.TotalValue().StringFixed(2),
		"products":    s.Inventory.Len(),
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	p, err := req.product()
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.Inventory.Add(p); err != nil {
		s.writeInventoryError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

// adjust handles sell (sign -1) and restock (sign 1). The request quantity
// itself must not be negative.
func (s *Server) adjust(sign int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req quantityReq
		if err := kit.DecodeJSON(w, r, &req); err != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
			return
		}
		if req.Quantity < 0 {
			kit.WriteError(w, r, http.StatusBadRequest, "quantity must not be negative", nil)
			return
		}

		if err := s.Inventory.UpdateQuantity(id, sign*req.Quantity); err != nil {
			s.writeInventoryError(w, r, err)
			return
		}

		p, _ := s.Inventory.Get(id)
		kit.WriteJSON(w, http.StatusOK, p)
	}
}

func (s *Server) removeExpired(w http.ResponseWriter, _ *http.Request) {
	removed := s.Inventory.RemoveExpired()
	if removed == nil {
		removed = []string{}
	}
	if len(removed) > 0 {
		s.logger().Info("expired products removed", zap.Strings("ids", removed))
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	if s.Snapshot == nil {
		kit.WriteError(w, r, http.StatusNotImplemented, "no snapshot backend", nil)
		return
	}
	if err := s.Inventory.Save(r.Context(), s.Snapshot); err != nil {
		s.writeInventoryError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"saved": s.Inventory.Len()})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) {
	if s.Snapshot == nil {
		kit.WriteError(w, r, http.StatusNotImplemented, "no snapshot backend", nil)
		return
	}
	if err := s.Inventory.Load(r.Context(), s.Snapshot); err != nil {
		s.writeInventoryError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"products": s.Inventory.Len()})
}

func (s *Server) writeInventoryError(w http.ResponseWriter, r *http.Request, err error) {
	var se *StockError

	switch {
	case errors.As(err, &se):
		kit.WriteError(w, r, http.StatusConflict, "insufficient stock", map[string]any{
			"id": se.ID, "delta": se.Delta, "available": se.Available,
		})
	case errors.Is(err, ErrDuplicateProductID):
		kit.WriteError(w, r, http.StatusConflict, "product id already exists", nil)
	case errors.Is(err, ErrQuantityOverflow):
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "quantity out of range", map[string]any{"id": chi.URLParam(r, "id")})
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": chi.URLParam(r, "id")})
	case errors.Is(err, ErrParse):
		s.logger().Warn("snapshot malformed", zap.Error(err))
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "malformed snapshot", nil)
	case errors.Is(err, ErrEncode):
		s.logger().Warn("snapshot not encodable", zap.Error(err))
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "inventory cannot be encoded", nil)
	case errors.Is(err, ErrIO):
		s.logger().Error("snapshot io failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "storage unavailable", nil)
	default:
		s.logger().Error("inventory request failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (req createReq) product() (Product, error) {
	if !req.Type.Valid() {
		return Product{}, errors.New("type must be Electronics, Grocery or Clothing")
	}
	if req.Price < 0 || req.Quantity < 0 || req.WarrantyYears < 0 {
		return Product{}, errors.New("price, quantity and warranty_years must not be negative")
	}

	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		id = "p_" + uuid.NewString()
	}

	switch req.Type {
	case KindElectronics:
		return NewElectronics(id, req.Name, req.Price, req.Quantity, req.Brand, req.WarrantyYears), nil
	case KindGrocery:
		if _, err := time.Parse(DateLayout, req.ExpiryDate); err != nil {
			return Product{}, errors.New("expiry_date must be YYYY-MM-DD")
		}
		return NewGrocery(id, req.Name, req.Price, req.Quantity, req.ExpiryDate), nil
	case KindClothing:
		return NewClothing(id, req.Name, req.Price, req.Quantity, req.Size, req.Material), nil
	}
	return Product{}, errBadProduct
}
