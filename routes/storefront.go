package routes

import (
	contactControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/contact"
	productControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/product"
	reviewControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/review"
	"github.com/gin-gonic/gin"
)

// SetupStorefrontRoutes registers the endpoints the storefront calls
// without a signed-in user: browsing, reviews, the contact form, and
// the gateway's payment callback.
func SetupStorefrontRoutes(r *gin.Engine, d Deps) {
	products := r.Group("/api/products")
	{
		products.GET("/", productControllers.GetProducts(d.DB, d.Cache))
		products.GET("/:slug", productControllers.GetProductBySlug(d.DB))
	}

	r.GET("/api/reviews/product/:productID", reviewControllers.ListByProduct(d.DB))
	r.POST("/api/contact/", contactControllers.Create(d.DB, d.Log))

	// The gateway posts terminal payment results here; it carries no
	// bearer token.
	r.POST("/api/mpesa/callback", d.Mpesa.Callback())
}
