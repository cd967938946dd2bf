package models

import (
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }

func TestHasDiscount(t *testing.T) {
	p := Product{Price: 100.00}
	if p.HasDiscount() {
		t.Error("expected no discount without compare_at_price")
	}

	p.CompareAtPrice = floatPtr(90.00)
	if p.HasDiscount() {
		t.Error("expected no discount when compare_at_price is below price")
	}

	p.CompareAtPrice = floatPtr(150.00)
	if !p.HasDiscount() {
		t.Error("expected discount when compare_at_price exceeds price")
	}
}

func TestDiscountPercentage(t *testing.T) {
	p := Product{Price: 100.00, CompareAtPrice: floatPtr(150.00)}

	pct := p.DiscountPercentage()
	if pct == nil {
		t.Fatal("expected a discount percentage")
	}
	if *pct != 33.3 {
		t.Errorf("expected 33.3, got %v", *pct)
	}

	p.CompareAtPrice = nil
	if p.DiscountPercentage() != nil {
		t.Error("expected nil percentage without compare_at_price")
	}
}

func TestIsInStock(t *testing.T) {
	p := Product{TrackInventory: true, StockQuantity: 0}
	if p.IsInStock() {
		t.Error("expected out of stock")
	}

	p.StockQuantity = 3
	if !p.IsInStock() {
		t.Error("expected in stock")
	}

	// Untracked inventory is always in stock
	p = Product{TrackInventory: false, StockQuantity: 0}
	if !p.IsInStock() {
		t.Error("expected untracked product to be in stock")
	}
}

func TestIsLowStock(t *testing.T) {
	p := Product{TrackInventory: true, StockQuantity: 2, LowStockThreshold: 5}
	if !p.IsLowStock() {
		t.Error("expected low stock")
	}

	p.StockQuantity = 10
	if p.IsLowStock() {
		t.Error("expected not low stock")
	}

	p = Product{TrackInventory: false, StockQuantity: 0, LowStockThreshold: 5}
	if p.IsLowStock() {
		t.Error("untracked inventory is never low stock")
	}
}

func TestIsAvailableWindow(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	p := Product{IsActive: true, Visibility: VisibilityPublic}
	if !p.IsAvailable() {
		t.Error("expected available without a window")
	}

	p.AvailableFrom = &future
	if p.IsAvailable() {
		t.Error("expected unavailable before the window opens")
	}

	p.AvailableFrom = &past
	p.AvailableUntil = &past
	if p.IsAvailable() {
		t.Error("expected unavailable after the window closes")
	}

	p.AvailableUntil = &future
	if !p.IsAvailable() {
		t.Error("expected available inside the window")
	}

	p.Visibility = VisibilityHidden
	if p.IsAvailable() {
		t.Error("hidden products are never available")
	}
}

func TestCanBeOrdered(t *testing.T) {
	p := Product{
		IsActive:       true,
		Visibility:     VisibilityPublic,
		TrackInventory: true,
		StockQuantity:  0,
	}
	if p.CanBeOrdered() {
		t.Error("expected not orderable when out of stock")
	}

	p.AllowBackorder = true
	if !p.CanBeOrdered() {
		t.Error("expected orderable with backorders allowed")
	}
}

func TestTenantIsActive(t *testing.T) {
	tn := Tenant{Status: "active"}
	if !tn.IsActive() {
		t.Error("expected active tenant")
	}

	expired := time.Now().Add(-time.Hour)
	tn.ExpiresAt = &expired
	if tn.IsActive() {
		t.Error("expected expired tenant to be inactive")
	}

	tn = Tenant{Status: "suspended"}
	if tn.IsActive() {
		t.Error("expected suspended tenant to be inactive")
	}
}

func TestVariantFinalPrice(t *testing.T) {
	v := ProductVariant{PriceModifier: 2.5}
	if got := v.FinalPrice(20); got != 22.5 {
		t.Errorf("expected 22.5, got %v", got)
	}

	v.PriceModifier = -5
	if got := v.FinalPrice(20); got != 15 {
		t.Errorf("expected a negative modifier applied, got %v", got)
	}
}

func TestVariantIsInStock(t *testing.T) {
	v := ProductVariant{StockQuantity: 1}
	if !v.IsInStock() {
		t.Error("expected in stock with quantity 1")
	}
	v.StockQuantity = 0
	if v.IsInStock() {
		t.Error("expected out of stock at zero")
	}
}

func TestActiveOptionValues(t *testing.T) {
	attr := CategoryAttribute{
		Options: []AttributeOption{
			{Value: "8", IsActive: true},
			{Value: "16", IsActive: true},
			{Value: "32", IsActive: false},
		},
	}

	values := attr.ActiveOptionValues()
	if len(values) != 2 {
		t.Fatalf("expected 2 active values, got %d", len(values))
	}
	if values[0] != "8" || values[1] != "16" {
		t.Errorf("unexpected values: %v", values)
	}
}
