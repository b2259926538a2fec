package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/pagination"
)

type stubCatalog struct {
	products   []models.Product
	lastLimit  int
	lastCursor *pagination.Cursor
	lastFilter ListFilter
}

func (s *stubCatalog) FindActiveByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalog) FindActiveBySlug(_ context.Context, slug string) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].Slug == slug {
			return &s.products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalog) ListActive(_ context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	s.lastFilter = filter
	s.lastCursor = cursor
	s.lastLimit = limit
	if limit > len(s.products) {
		limit = len(s.products)
	}
	return s.products[:limit], nil
}

func seedProducts(n int) []models.Product {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	products := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, models.Product{
			ID:        uuid.New(),
			Slug:      uuid.NewString(),
			Name:      "Item",
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return products
}

func TestList_PagesWithNextCursor(t *testing.T) {
	repo := &stubCatalog{products: seedProducts(4)}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.List(context.Background(), ListFilter{}, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastLimit != 4 {
		t.Fatalf("expected buffered limit 4, got %d", repo.lastLimit)
	}
	if len(result.Products) != 3 {
		t.Fatalf("expected 3 products in page, got %d", len(result.Products))
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor for full page")
	}

	cursor, err := pagination.ParseCursor(result.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor.ID != result.Products[2].ID {
		t.Fatal("cursor should point at the last returned row")
	}
}

func TestList_LastPageHasNoCursor(t *testing.T) {
	repo := &stubCatalog{products: seedProducts(2)}
	svc, _ := NewService(repo)

	result, err := svc.List(context.Background(), ListFilter{}, pagination.Params{Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.NextCursor != "" {
		t.Fatalf("expected empty cursor, got %q", result.NextCursor)
	}
}

func TestList_RejectsGarbageCursor(t *testing.T) {
	svc, _ := NewService(&stubCatalog{})
	_, err := svc.List(context.Background(), ListFilter{}, pagination.Params{Cursor: "!!not-base64!!"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetBySlug(t *testing.T) {
	products := seedProducts(1)
	products[0].Slug = "ankara-tote"
	svc, _ := NewService(&stubCatalog{products: products})

	got, err := svc.GetBySlug(context.Background(), "ankara-tote")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != products[0].ID {
		t.Fatal("wrong product returned")
	}

	if _, err := svc.GetBySlug(context.Background(), "  "); err == nil {
		t.Fatal("expected validation error for blank slug")
	}
}

func TestGetByID_RequiresID(t *testing.T) {
	svc, _ := NewService(&stubCatalog{})
	if _, err := svc.GetByID(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected validation error for nil id")
	}
}
