package routes

import (
	"github.com/John-Gaitho/branded-in-grace-api/cache"
	"github.com/John-Gaitho/branded-in-grace-api/config"
	cartControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/cart"
	checkoutControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/checkout"
	mpesaControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/mpesa"
	orderControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/order"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries the shared services the route groups wire handlers to.
type Deps struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *zap.Logger
	Cache    *cache.Cache
	Carts    *cartControllers.Store
	Mpesa    *mpesaControllers.Handler
	Checkout *checkoutControllers.Flow
	Hub      *orderControllers.Hub
}

// SetupRoutes is the single entry point that wires up the public,
// authenticated, and admin route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	SetupAuthRoutes(r, d)
	SetupStorefrontRoutes(r, d)
	SetupUserRoutes(r, d)
	SetupAdminRoutes(r, d)
}
