package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/api/responses"
	"github.com/padistore/padistore-backend/api/validators"
	product "github.com/padistore/padistore-backend/internal/products"
	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	"github.com/padistore/padistore-backend/pkg/pagination"
)

// ProductList returns one catalog page, optionally narrowed by category or
// search term.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := product.ListFilter{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		}

		result, err := svc.List(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]productResponse, 0, len(result.Products))
		for i := range result.Products {
			items = append(items, newProductResponse(&result.Products[i]))
		}

		responses.WriteSuccess(w, productListResponse{
			Products:   items,
			NextCursor: result.NextCursor,
		})
	}
}

// ProductDetail returns one active catalog listing by ID.
func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(record))
	}
}

// ProductBySlug returns one active catalog listing by its slug.
func ProductBySlug(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		record, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(record))
	}
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type productResponse struct {
	ID            uuid.UUID           `json:"id"`
	Slug          string              `json:"slug"`
	Name          string              `json:"name"`
	Description   *string             `json:"description,omitempty"`
	Category      string              `json:"category"`
	Price         decimal.Decimal     `json:"price"`
	StockQty      int                 `json:"stock_qty"`
	IsVariable    bool                `json:"is_variable"`
	FeaturedImage *string             `json:"featured_image,omitempty"`
	Variations    []variationResponse `json:"variations,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type variationResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	StockQty int             `json:"stock_qty"`
}

func newProductResponse(record *models.Product) productResponse {
	variations := make([]variationResponse, 0, len(record.Variations))
	for _, v := range record.Variations {
		variations = append(variations, variationResponse{
			ID:       v.ID,
			Name:     v.Name,
			Price:    v.Price,
			StockQty: v.StockQty,
		})
	}

	return productResponse{
		ID:            record.ID,
		Slug:          record.Slug,
		Name:          record.Name,
		Description:   record.Description,
		Category:      record.Category,
		Price:         record.Price,
		StockQty:      record.StockQty,
		IsVariable:    record.IsVariable,
		FeaturedImage: record.FeaturedImage,
		Variations:    variations,
		CreatedAt:     record.CreatedAt,
	}
}
