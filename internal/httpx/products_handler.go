package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrvelez/pedidos/internal/catalog"
	"github.com/jrvelez/pedidos/internal/redisx"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type ProductsHandler struct {
	Service *catalog.Service
	Cache   redisx.Cache

	listGroup singleflight.Group
}

type productResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createProductReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type updateProductReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

type updateStockReq struct {
	Stock int `json:"stock"`
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Put("/products/{id}/stock", h.updateStock)
	r.Delete("/products/{id}", h.deactivate)
}

// list serves the active catalog cache-aside; singleflight collapses
// concurrent misses into one store read.
func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err, _ := h.listGroup.Do(redisx.KeyProductList, func() (any, error) {
		if s, ok, err := h.Cache.Get(ctx, redisx.KeyProductList); err == nil && ok {
			return []byte(s), nil
		}
		ps, err := h.Service.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]productResponse, 0, len(ps))
		for _, p := range ps {
			out = append(out, toProductResponse(p))
		}
		b, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		_ = h.Cache.Set(ctx, redisx.KeyProductList, string(b), redisx.TTLProductCache)
		return b, nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(v.([]byte))
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeErrorBody(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorBody(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Service.Create(ctx, req.Name, req.Description, req.Price, req.Stock)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.invalidateList(ctx)
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorBody(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Service.Update(ctx, chi.URLParam(r, "id"), req.Name, req.Description, req.Price)
	if err != nil {
		h.writeAdminError(w, err)
		return
	}
	h.invalidateList(ctx)
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *ProductsHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorBody(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Service.UpdateStock(ctx, chi.URLParam(r, "id"), req.Stock)
	if err != nil {
		h.writeAdminError(w, err)
		return
	}
	h.invalidateList(ctx)
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *ProductsHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.Service.Deactivate(ctx, chi.URLParam(r, "id")); err != nil {
		h.writeAdminError(w, err)
		return
	}
	h.invalidateList(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// writeAdminError: on the administration surface a missing product is a
// plain 404, unlike inside order placement.
func (h *ProductsHandler) writeAdminError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeErrorBody(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
		return
	}
	writeDomainError(w, err)
}

func (h *ProductsHandler) invalidateList(ctx context.Context) {
	_ = h.Cache.Del(ctx, redisx.KeyProductList)
}
