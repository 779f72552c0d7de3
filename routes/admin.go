package routes

import (
	contactControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/contact"
	orderControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/order"
	productControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/product"
	uploadControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/upload"
	"github.com/John-Gaitho/branded-in-grace-api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers catalog management and back-office
// endpoints. Everything here needs a token with the admin role.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	authed := middleware.ValidateToken(d.Cfg.JWTSecret)
	admin := middleware.RequireAdmin()

	products := r.Group("/api/products", authed, admin)
	{
		products.POST("/", productControllers.CreateProduct(d.DB, d.Cache, d.Log))
		products.PUT("/:slug", productControllers.UpdateProduct(d.DB, d.Cache, d.Log))
		products.DELETE("/:slug", productControllers.DeleteProduct(d.DB, d.Cache, d.Log))
	}

	adminGroup := r.Group("/api/admin", authed, admin)
	{
		adminGroup.GET("/orders/export", orderControllers.ExportOrdersToExcel(d.DB))
		adminGroup.GET("/products/export", productControllers.ExportProductsToExcel(d.DB))
		adminGroup.GET("/orders/ws", d.Hub.Handler())
		adminGroup.GET("/contact", contactControllers.List(d.DB))
	}

	r.POST("/api/upload/product-image", authed, admin,
		uploadControllers.ProductImage(d.Cfg.UploadsDir, d.Log))
}
