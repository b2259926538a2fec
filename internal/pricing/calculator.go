package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/config"
	"github.com/padistore/padistore-backend/pkg/enums"
	pkgerrors "github.com/padistore/padistore-backend/pkg/errors"
)

// Line is one priced cart row.
type Line struct {
	UnitPrice decimal.Decimal
	Qty       int
}

// Coupon is the discount input resolved from an applied coupon code.
type Coupon struct {
	Kind  enums.CouponKind
	Value decimal.Decimal
}

// Input carries everything the calculator needs for one quote.
type Input struct {
	Lines       []Line
	Coupon      *Coupon
	PadiCode    bool
	DeliveryFee decimal.Decimal
}

// Quote is the fully derived price breakdown. Every amount is rounded to two
// decimal places and non-negative.
type Quote struct {
	Subtotal       decimal.Decimal
	CouponDiscount decimal.Decimal
	PadiDiscount   decimal.Decimal
	Discount       decimal.Decimal
	DeliveryFee    decimal.Decimal
	Total          decimal.Decimal
	FreeShipping   bool
	PadiApplied    bool
}

// Calculator derives order totals from cart lines, the applied coupon, the
// Padi code flag, and the selected delivery zone fee. Discounts compose in a
// fixed order: coupon first, then the Padi percentage on the remainder. The
// delivery fee is waived once the subtotal reaches the free shipping
// threshold.
type Calculator struct {
	freeShippingThreshold decimal.Decimal
	padiThreshold         decimal.Decimal
	padiPercent           decimal.Decimal
}

// NewCalculator parses the configured thresholds and validates them.
func NewCalculator(cfg config.PricingConfig) (*Calculator, error) {
	freeShipping, err := decimal.NewFromString(cfg.FreeShippingThreshold)
	if err != nil {
		return nil, fmt.Errorf("parse free shipping threshold: %w", err)
	}
	padiThreshold, err := decimal.NewFromString(cfg.PadiCodeThreshold)
	if err != nil {
		return nil, fmt.Errorf("parse padi code threshold: %w", err)
	}
	padiPercent, err := decimal.NewFromString(cfg.PadiCodePercent)
	if err != nil {
		return nil, fmt.Errorf("parse padi code percent: %w", err)
	}
	if freeShipping.IsNegative() || padiThreshold.IsNegative() {
		return nil, fmt.Errorf("pricing thresholds must be non-negative")
	}
	if padiPercent.IsNegative() || padiPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("padi code percent must be in [0,100]")
	}
	return &Calculator{
		freeShippingThreshold: freeShipping,
		padiThreshold:         padiThreshold,
		padiPercent:           padiPercent,
	}, nil
}

// Quote computes the price breakdown for the given input. The result depends
// only on the input, so the same cart always prices the same.
func (c *Calculator) Quote(input Input) (*Quote, error) {
	subtotal := decimal.Zero
	for _, line := range input.Lines {
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line unit price must be non-negative")
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	subtotal = subtotal.Round(2)

	couponDiscount, err := c.couponDiscount(input.Coupon, subtotal)
	if err != nil {
		return nil, err
	}

	remaining := subtotal.Sub(couponDiscount)

	padiDiscount := decimal.Zero
	padiApplied := false
	if input.PadiCode && subtotal.GreaterThanOrEqual(c.padiThreshold) {
		padiDiscount = remaining.Mul(c.padiPercent).Div(decimal.NewFromInt(100)).Round(2)
		padiApplied = true
	}

	freeShipping := subtotal.GreaterThanOrEqual(c.freeShippingThreshold)
	deliveryFee := input.DeliveryFee.Round(2)
	if deliveryFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee must be non-negative")
	}
	if freeShipping {
		deliveryFee = decimal.Zero
	}

	discount := couponDiscount.Add(padiDiscount)
	total := subtotal.Sub(discount).Add(deliveryFee)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &Quote{
		Subtotal:       subtotal,
		CouponDiscount: couponDiscount,
		PadiDiscount:   padiDiscount,
		Discount:       discount,
		DeliveryFee:    deliveryFee,
		Total:          total,
		FreeShipping:   freeShipping,
		PadiApplied:    padiApplied,
	}, nil
}

// couponDiscount resolves the coupon to a currency amount. Percentage coupons
// take a share of the subtotal; fixed coupons are clamped so the discount can
// never exceed what is being discounted.
func (c *Calculator) couponDiscount(coupon *Coupon, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if coupon == nil {
		return decimal.Zero, nil
	}
	if coupon.Value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be non-negative")
	}
	switch coupon.Kind {
	case enums.CouponKindPercentage:
		if coupon.Value.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "percentage coupon value must be in [0,100]")
		}
		return subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100)).Round(2), nil
	case enums.CouponKindFixed:
		discount := coupon.Value.Round(2)
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
		return discount, nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown coupon kind %q", coupon.Kind))
	}
}
