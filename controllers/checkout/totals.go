package checkoutControllers

import (
	"github.com/John-Gaitho/branded-in-grace-api/config"
	cartControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/cart"
	"github.com/John-Gaitho/branded-in-grace-api/models"
)

// Breakdown is the price summary shown on the checkout page and charged
// to the gateway. All figures are KES major units.
type Breakdown struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives the breakdown from the cart. Shipping is free
// strictly above the threshold; at exactly the threshold the flat fee
// still applies. Tax is charged on the subtotal only.
func ComputeTotals(items []models.CartItem, cfg config.CheckoutConfig) Breakdown {
	subtotal := cartControllers.Total(items)

	shipping := cfg.ShippingFlatFee
	if subtotal > cfg.FreeShippingThreshold {
		shipping = 0
	}

	tax := subtotal * cfg.TaxRate

	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
