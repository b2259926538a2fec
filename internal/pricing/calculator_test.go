package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/padistore/padistore-backend/pkg/config"
	"github.com/padistore/padistore-backend/pkg/enums"
)

func testCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(config.PricingConfig{
		FreeShippingThreshold: "53000",
		PadiCodeThreshold:     "100000",
		PadiCodePercent:       "2",
	})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}

func TestQuote_SubtotalAndTotal(t *testing.T) {
	calc := testCalculator(t)
	quote, err := calc.Quote(Input{
		Lines: []Line{
			{UnitPrice: dec(t, "2500"), Qty: 3},
			{UnitPrice: dec(t, "1200.50"), Qty: 2},
		},
		DeliveryFee: dec(t, "1500"),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.Subtotal.Equal(dec(t, "9901")) {
		t.Fatalf("subtotal = %s, want 9901", quote.Subtotal)
	}
	if !quote.Total.Equal(dec(t, "11401")) {
		t.Fatalf("total = %s, want 11401", quote.Total)
	}
}

func TestQuote_Deterministic(t *testing.T) {
	calc := testCalculator(t)
	input := Input{
		Lines: []Line{
			{UnitPrice: dec(t, "4999.99"), Qty: 7},
			{UnitPrice: dec(t, "350"), Qty: 1},
		},
		Coupon:      &Coupon{Kind: enums.CouponKindPercentage, Value: dec(t, "15")},
		PadiCode:    true,
		DeliveryFee: dec(t, "2000"),
	}
	first, err := calc.Quote(input)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	second, err := calc.Quote(input)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !first.Total.Equal(second.Total) || !first.Discount.Equal(second.Discount) {
		t.Fatalf("same input priced differently: %s vs %s", first.Total, second.Total)
	}
}

func TestQuote_FreeShippingBoundary(t *testing.T) {
	calc := testCalculator(t)
	tests := []struct {
		name     string
		subtotal string
		wantFee  string
		wantFree bool
	}{
		{"at threshold", "53000", "0", true},
		{"just below threshold", "52999", "1500", false},
		{"above threshold", "90000", "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.Quote(Input{
				Lines:       []Line{{UnitPrice: dec(t, tt.subtotal), Qty: 1}},
				DeliveryFee: dec(t, "1500"),
			})
			if err != nil {
				t.Fatalf("quote: %v", err)
			}
			if !quote.DeliveryFee.Equal(dec(t, tt.wantFee)) {
				t.Fatalf("delivery fee = %s, want %s", quote.DeliveryFee, tt.wantFee)
			}
			if quote.FreeShipping != tt.wantFree {
				t.Fatalf("free shipping = %v, want %v", quote.FreeShipping, tt.wantFree)
			}
		})
	}
}

func TestQuote_PercentageCoupon(t *testing.T) {
	calc := testCalculator(t)
	quote, err := calc.Quote(Input{
		Lines:  []Line{{UnitPrice: dec(t, "10000"), Qty: 1}},
		Coupon: &Coupon{Kind: enums.CouponKindPercentage, Value: dec(t, "10")},
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.CouponDiscount.Equal(dec(t, "1000")) {
		t.Fatalf("coupon discount = %s, want 1000", quote.CouponDiscount)
	}
	if !quote.Total.Equal(dec(t, "9000")) {
		t.Fatalf("total = %s, want 9000", quote.Total)
	}
}

func TestQuote_FixedCouponClampedToSubtotal(t *testing.T) {
	calc := testCalculator(t)
	quote, err := calc.Quote(Input{
		Lines:  []Line{{UnitPrice: dec(t, "3000"), Qty: 1}},
		Coupon: &Coupon{Kind: enums.CouponKindFixed, Value: dec(t, "5000")},
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.CouponDiscount.Equal(dec(t, "3000")) {
		t.Fatalf("coupon discount = %s, want clamp to 3000", quote.CouponDiscount)
	}
	if !quote.Total.Equal(dec(t, "0")) {
		t.Fatalf("total = %s, want 0", quote.Total)
	}
}

func TestQuote_PadiCode(t *testing.T) {
	calc := testCalculator(t)

	// Below the threshold the code has no effect.
	below, err := calc.Quote(Input{
		Lines:    []Line{{UnitPrice: dec(t, "99999"), Qty: 1}},
		PadiCode: true,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if below.PadiApplied || !below.PadiDiscount.IsZero() {
		t.Fatalf("padi applied below threshold: %s", below.PadiDiscount)
	}

	// At the threshold the 2 percent kicks in.
	at, err := calc.Quote(Input{
		Lines:    []Line{{UnitPrice: dec(t, "100000"), Qty: 1}},
		PadiCode: true,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !at.PadiApplied || !at.PadiDiscount.Equal(dec(t, "2000")) {
		t.Fatalf("padi discount = %s, want 2000", at.PadiDiscount)
	}
}

func TestQuote_PadiComposesAfterCoupon(t *testing.T) {
	calc := testCalculator(t)
	quote, err := calc.Quote(Input{
		Lines:    []Line{{UnitPrice: dec(t, "100000"), Qty: 1}},
		Coupon:   &Coupon{Kind: enums.CouponKindPercentage, Value: dec(t, "10")},
		PadiCode: true,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// 2 percent of the 90,000 remaining after the coupon.
	if !quote.PadiDiscount.Equal(dec(t, "1800")) {
		t.Fatalf("padi discount = %s, want 1800", quote.PadiDiscount)
	}
	if !quote.Total.Equal(dec(t, "88200")) {
		t.Fatalf("total = %s, want 88200", quote.Total)
	}
}

func TestQuote_RejectsInvalidLines(t *testing.T) {
	calc := testCalculator(t)
	if _, err := calc.Quote(Input{Lines: []Line{{UnitPrice: dec(t, "100"), Qty: 0}}}); err == nil {
		t.Fatal("expected error for zero quantity")
	}
	if _, err := calc.Quote(Input{Lines: []Line{{UnitPrice: dec(t, "-1"), Qty: 1}}}); err == nil {
		t.Fatal("expected error for negative unit price")
	}
}

func TestQuote_RejectsInvalidCoupon(t *testing.T) {
	calc := testCalculator(t)
	if _, err := calc.Quote(Input{
		Lines:  []Line{{UnitPrice: dec(t, "100"), Qty: 1}},
		Coupon: &Coupon{Kind: enums.CouponKindPercentage, Value: dec(t, "150")},
	}); err == nil {
		t.Fatal("expected error for percentage above 100")
	}
	if _, err := calc.Quote(Input{
		Lines:  []Line{{UnitPrice: dec(t, "100"), Qty: 1}},
		Coupon: &Coupon{Kind: "bogus", Value: dec(t, "5")},
	}); err == nil {
		t.Fatal("expected error for unknown coupon kind")
	}
}

func TestNewCalculator_RejectsBadConfig(t *testing.T) {
	if _, err := NewCalculator(config.PricingConfig{FreeShippingThreshold: "oops", PadiCodeThreshold: "1", PadiCodePercent: "2"}); err == nil {
		t.Fatal("expected error for unparseable threshold")
	}
	if _, err := NewCalculator(config.PricingConfig{FreeShippingThreshold: "1", PadiCodeThreshold: "1", PadiCodePercent: "101"}); err == nil {
		t.Fatal("expected error for percent above 100")
	}
}
