package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/John-Gaitho/branded-in-grace-api/cache"
	"github.com/John-Gaitho/branded-in-grace-api/config"
	cartControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/cart"
	checkoutControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/checkout"
	mpesaControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/mpesa"
	orderControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/order"
	"github.com/John-Gaitho/branded-in-grace-api/logger"
	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/John-Gaitho/branded-in-grace-api/payment"
	"github.com/John-Gaitho/branded-in-grace-api/routes"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	db := initDatabase(cfg, zlog)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.ContactMessage{},
		&models.MpesaTransaction{},
	); err != nil {
		zlog.Fatal("automigrate failed", zap.Error(err))
	}

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/uploads", cfg.UploadsDir)

	productCache := cache.New(cfg.RedisAddr, zlog)
	carts := cartControllers.NewStore(db, zlog)
	hub := orderControllers.NewHub(zlog)

	if !cfg.Mpesa.Configured() {
		zlog.Warn("mpesa credentials not configured, payments will fail")
	}
	gateway := payment.NewDarajaClient(cfg.Mpesa, zlog)
	mpesa := mpesaControllers.NewHandler(db, gateway, zlog)
	checkout := checkoutControllers.NewFlow(
		db, carts, mpesa,
		mpesaControllers.DBStatusSource{DB: db},
		cfg.Checkout, cfg.Mpesa,
		zlog, hub.Broadcast,
	)

	routes.SetupRoutes(r, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Log:      zlog,
		Cache:    productCache,
		Carts:    carts,
		Mpesa:    mpesa,
		Checkout: checkout,
		Hub:      hub,
	})

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}

func initDatabase(cfg *config.Config, zlog *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		zlog.Fatal("db connection failed", zap.Error(err))
	}
	return db
}
