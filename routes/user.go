package routes

import (
	orderControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/order"
	reviewControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/review"
	"github.com/John-Gaitho/branded-in-grace-api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers the JWT-protected storefront endpoints:
// cart, checkout, orders, reviews, and payment status lookups.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api")
	api.Use(middleware.ValidateToken(d.Cfg.JWTSecret))
	{
		cart := api.Group("/cart")
		{
			cart.GET("/", d.Carts.Get())
			cart.POST("/add", d.Carts.Add())
			cart.POST("/update", d.Carts.Update())
			cart.DELETE("/:id", d.Carts.Remove())
			cart.DELETE("/", d.Carts.ClearHandler())
		}

		api.POST("/checkout", d.Checkout.Submit())

		orders := api.Group("/orders")
		{
			orders.GET("/", orderControllers.ListOrders(d.DB))
			orders.GET("/:orderID", orderControllers.GetOrder(d.DB))
			orders.POST("/", orderControllers.CreateOrder(d.DB, d.Log))

			// Same paths the storefront admin screens call; gated on
			// the role claim rather than a separate prefix.
			orders.PUT("/:orderID",
				middleware.RequireAdmin(),
				orderControllers.UpdateOrderStatus(d.DB, d.Hub, d.Log),
			)
			orders.DELETE("/:orderID",
				middleware.RequireAdmin(),
				orderControllers.DeleteOrder(d.DB, d.Log),
			)
		}

		mpesa := api.Group("/mpesa")
		{
			mpesa.POST("/stkpush", d.Mpesa.StkPush())
			mpesa.GET("/transactions", d.Mpesa.ListTransactions())
			mpesa.GET("/status/:checkoutRequestID", d.Mpesa.Status())
		}

		api.POST("/reviews/", reviewControllers.Create(d.DB, d.Log))
	}
}
