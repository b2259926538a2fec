package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/padistore/padistore-backend/pkg/db/models"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
	"github.com/padistore/padistore-backend/pkg/logger"
	pkgredis "github.com/padistore/padistore-backend/pkg/redis"
)

type stateStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(customerID string) string
}

type productLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service owns the persisted cart for each customer. All writes go through it
// so there is a single authority for cart state.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*Cart, error)
	SetQuantity(ctx context.Context, customerID uuid.UUID, productID uuid.UUID, variationID *uuid.UUID, qty int) (*Cart, error)
	RemoveItem(ctx context.Context, customerID uuid.UUID, productID uuid.UUID, variationID *uuid.UUID) (*Cart, error)
	RemoveAllForProduct(ctx context.Context, customerID uuid.UUID, productID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type service struct {
	store    stateStore
	products productLoader
	logger   *logger.Logger
	ttl      time.Duration
}

// NewService builds a cart service backed by the provided state store.
func NewService(store stateStore, products productLoader, logg *logger.Logger, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("state store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &service{
		store:    store,
		products: products,
		logger:   logg,
		ttl:      ttl,
	}, nil
}

// AddItemInput identifies what to add and how many.
type AddItemInput struct {
	ProductID   uuid.UUID
	VariationID *uuid.UUID
	Qty         int
}

// Get loads the customer cart, returning an empty cart when nothing is stored
// or the stored payload cannot be decoded.
func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	return s.load(ctx, customerID)
}

// AddItem snapshots the product price and merges the line into the cart. A
// line with the same product and variation absorbs the quantity instead of
// producing a duplicate.
func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	qty := input.Qty
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	line, err := s.buildLine(ctx, input.ProductID, input.VariationID, qty)
	if err != nil {
		return nil, err
	}

	current, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if idx := current.findLine(input.ProductID, input.VariationID); idx >= 0 {
		current.Items[idx].Qty += qty
	} else {
		current.Items = append(current.Items, *line)
	}

	if err := s.save(ctx, customerID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// SetQuantity replaces the quantity of an existing line.
func (s *service) SetQuantity(ctx context.Context, customerID uuid.UUID, productID uuid.UUID, variationID *uuid.UUID, qty int) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	current, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	idx := current.findLine(productID, variationID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	current.Items[idx].Qty = qty

	if err := s.save(ctx, customerID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// RemoveItem drops the line with the given identity. Removing an absent line
// is a no-op.
func (s *service) RemoveItem(ctx context.Context, customerID uuid.UUID, productID uuid.UUID, variationID *uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	current, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	idx := current.findLine(productID, variationID)
	if idx < 0 {
		return current, nil
	}
	current.Items = append(current.Items[:idx], current.Items[idx+1:]...)

	if err := s.save(ctx, customerID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// RemoveAllForProduct drops every line of the product, across all variations.
func (s *service) RemoveAllForProduct(ctx context.Context, customerID uuid.UUID, productID uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	current, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	kept := current.Items[:0]
	for _, item := range current.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	current.Items = kept

	if err := s.save(ctx, customerID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Clear deletes the stored cart outright.
func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if err := s.store.Del(ctx, s.store.CartKey(customerID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// buildLine resolves the catalog data for the line and snapshots the price.
func (s *service) buildLine(ctx context.Context, productID uuid.UUID, variationID *uuid.UUID, qty int) (*LineItem, error) {
	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	line := &LineItem{
		ProductID: productID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Qty:       qty,
		Image:     product.FeaturedImage,
	}

	if product.IsVariable {
		if variationID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation is required for this product")
		}
		variation := findVariation(product, *variationID)
		if variation == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variation not found")
		}
		line.VariationID = variationID
		line.VariationName = &variation.Name
		line.UnitPrice = variation.Price
	} else if variationID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no variations")
	}

	return line, nil
}

func findVariation(product *models.Product, variationID uuid.UUID) *models.ProductVariation {
	for i := range product.Variations {
		if product.Variations[i].ID == variationID {
			return &product.Variations[i]
		}
	}
	return nil
}

func (s *service) load(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	key := s.store.CartKey(customerID.String())
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if pkgredis.IsNil(err) {
			return &Cart{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		s.logger.Warn(s.logger.WithCustomerID(ctx, customerID.String()), "stored cart is unreadable, starting fresh")
		return &Cart{}, nil
	}
	return &cart, nil
}

func (s *service) save(ctx context.Context, customerID uuid.UUID, cart *Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, s.store.CartKey(customerID.String()), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}
