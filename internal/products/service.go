package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/pagination"
)

type catalogRepo interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListActive(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Product, error)
}

// ListResult is one catalog page plus the cursor for the next one.
type ListResult struct {
	Products   []models.Product
	NextCursor string
}

// Service exposes catalog browsing.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type service struct {
	repo catalogRepo
}

// NewService builds the catalog service.
func NewService(repo catalogRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// List returns a page of active products. One extra row is fetched to decide
// whether a next cursor exists.
func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	products, err := s.repo.ListActive(ctx, filter, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &ListResult{Products: products}
	if len(products) > limit {
		result.Products = products[:limit]
		last := result.Products[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// GetByID loads an active product with variations.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.repo.FindActiveByID(ctx, id)
}

// GetBySlug loads an active product with variations by its URL slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	return s.repo.FindActiveBySlug(ctx, slug)
}
