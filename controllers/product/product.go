package productControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/John-Gaitho/branded-in-grace-api/cache"
	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	listCacheKey = "products:all"
	listCacheTTL = 5 * time.Minute
)

type ProductInput struct {
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description"`
	Price          float64           `json:"price" binding:"required,gt=0"`
	Image          string            `json:"image_url"`
	Category       string            `json:"category"`
	Stock          int               `json:"stock_quantity" binding:"min=0"`
	Featured       bool              `json:"featured"`
	Specifications map[string]string `json:"specifications"`
}

// GET /api/products/
func GetProducts(db *gorm.DB, c2 *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if c2.Get(c.Request.Context(), listCacheKey, &products) {
			c.JSON(http.StatusOK, products)
			return
		}

		if err := db.Order("created_at DESC").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c2.Set(c.Request.Context(), listCacheKey, products, listCacheTTL)
		c.JSON(http.StatusOK, products)
	}
}

// GET /api/products/:slug
func GetProductBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		var product models.Product
		if err := db.Where("slug = ?", slug).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// POST /api/products/ (admin)
func CreateProduct(db *gorm.DB, c2 *cache.Cache, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		slug, err := uniqueSlug(db, Slugify(input.Name))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive slug"})
			return
		}

		product := models.Product{
			Name:           input.Name,
			Description:    input.Description,
			Price:          input.Price,
			Image:          input.Image,
			Category:       input.Category,
			Stock:          input.Stock,
			Slug:           slug,
			Featured:       input.Featured,
			Specifications: input.Specifications,
		}
		if err := db.Create(&product).Error; err != nil {
			log.Error("create product failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		c2.Invalidate(c.Request.Context(), listCacheKey)
		log.Info("product created", zap.Uint("product_id", product.ID), zap.String("slug", slug))
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /api/products/:slug (admin)
func UpdateProduct(db *gorm.DB, c2 *cache.Cache, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		var product models.Product
		if err := db.Where("slug = ?", slug).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product.Name = input.Name
		product.Description = input.Description
		product.Price = input.Price
		product.Image = input.Image
		product.Category = input.Category
		product.Stock = input.Stock
		product.Featured = input.Featured
		product.Specifications = input.Specifications

		if err := db.Save(&product).Error; err != nil {
			log.Error("update product failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		c2.Invalidate(c.Request.Context(), listCacheKey)
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /api/products/:slug (admin)
func DeleteProduct(db *gorm.DB, c2 *cache.Cache, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		result := db.Where("slug = ?", slug).Delete(&models.Product{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		c2.Invalidate(c.Request.Context(), listCacheKey)
		log.Info("product deleted", zap.String("slug", slug))
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
