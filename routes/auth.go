package routes

import (
	authControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/auth"
	"github.com/John-Gaitho/branded-in-grace-api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers the "/api/auth/*" endpoints. Rate limited
// as a unit; only /me needs a valid token.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.RateLimit())
	{
		authGroup.POST("/register", authControllers.Register(d.DB, d.Cfg.JWTSecret, d.Log))
		authGroup.POST("/login", authControllers.Login(d.DB, d.Cfg.JWTSecret, d.Log))
		authGroup.POST("/logout", authControllers.Logout())

		authGroup.GET("/me",
			middleware.ValidateToken(d.Cfg.JWTSecret),
			authControllers.Me(d.DB),
		)
	}
}
