package checkoutControllers

import (
	"testing"

	"github.com/John-Gaitho/branded-in-grace-api/config"
	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/stretchr/testify/assert"
)

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		FreeShippingThreshold: 10000,
		ShippingFlatFee:       500,
		TaxRate:               0.16,
	}
}

func item(id uint, price float64, qty int) models.CartItem {
	return models.CartItem{
		ProductID: id,
		Product:   models.Product{ID: id, Price: price},
		Quantity:  qty,
	}
}

func TestComputeTotals(t *testing.T) {
	// 2x500 + 1x1500 = 2500, under the free-shipping threshold.
	items := []models.CartItem{
		item(1, 500, 2),
		item(2, 1500, 1),
	}

	b := ComputeTotals(items, testCheckoutConfig())

	assert.Equal(t, 2500.0, b.Subtotal)
	assert.Equal(t, 500.0, b.Shipping)
	assert.InDelta(t, 400.0, b.Tax, 0.001)
	assert.InDelta(t, 3400.0, b.Total, 0.001)
}

func TestComputeTotalsFreeShippingAboveThreshold(t *testing.T) {
	items := []models.CartItem{item(1, 10001, 1)}

	b := ComputeTotals(items, testCheckoutConfig())

	assert.Equal(t, 0.0, b.Shipping)
	assert.InDelta(t, 10001*1.16, b.Total, 0.001)
}

func TestComputeTotalsChargesShippingAtExactThreshold(t *testing.T) {
	items := []models.CartItem{item(1, 10000, 1)}

	b := ComputeTotals(items, testCheckoutConfig())

	assert.Equal(t, 500.0, b.Shipping)
}

func TestComputeTotalsTaxIgnoresShipping(t *testing.T) {
	items := []models.CartItem{item(1, 100, 1)}

	b := ComputeTotals(items, testCheckoutConfig())

	assert.InDelta(t, 16.0, b.Tax, 0.001)
	assert.InDelta(t, 616.0, b.Total, 0.001)
}

func TestComputeTotalsSkipsUnresolvedItems(t *testing.T) {
	items := []models.CartItem{
		item(1, 1000, 1),
		{ProductID: 99, Quantity: 3}, // product deleted, zero-value Product
	}

	b := ComputeTotals(items, testCheckoutConfig())

	assert.Equal(t, 1000.0, b.Subtotal)
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	b := ComputeTotals(nil, testCheckoutConfig())

	assert.Equal(t, 0.0, b.Subtotal)
	assert.Equal(t, 500.0, b.Shipping, "the flat fee applies until the threshold is crossed")
	assert.Equal(t, 0.0, b.Tax)
}
