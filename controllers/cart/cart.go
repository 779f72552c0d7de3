package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/John-Gaitho/branded-in-grace-api/middleware"
	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store owns the cart rows for signed-in users and the aggregates
// derived from them. Handlers below are thin wrappers over it.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

var ErrProductNotFound = errors.New("product does not exist")

// cartFor fetches the user's cart, creating it for accounts that
// predate cart-at-registration.
func (s *Store) cartFor(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		err = s.db.Create(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem increments the quantity for an existing (cart, product) row
// or inserts a new one. The upsert rides the composite unique index, so
// two concurrent adds for a new product collapse into a single row with
// the summed quantity instead of two rows.
func (s *Store) AddItem(userID string, productID uint, quantity int) (*models.CartItem, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	cart, err := s.cartFor(userID)
	if err != nil {
		return nil, err
	}

	item := models.CartItem{CartID: cart.CartID, ProductID: productID, Quantity: quantity}
	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}

	var saved models.CartItem
	if err := s.db.Preload("Product").
		Where("cart_id = ? AND product_id = ?", cart.CartID, productID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// SetQuantity overwrites the quantity of one cart item. Clamping to
// stock happens at the storefront; the store only enforces >= 1.
func (s *Store) SetQuantity(userID string, itemID uint, quantity int) (*models.CartItem, error) {
	cart, err := s.cartFor(userID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	if err := s.db.Where("id = ? AND cart_id = ?", itemID, cart.CartID).First(&item).Error; err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes one cart item. Removing an id that is already gone
// leaves the cart unchanged; the bool reports whether a row went away.
func (s *Store) RemoveItem(userID string, itemID uint) (bool, error) {
	cart, err := s.cartFor(userID)
	if err != nil {
		return false, err
	}

	result := s.db.Where("id = ? AND cart_id = ?", itemID, cart.CartID).Delete(&models.CartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Clear removes every item in the user's cart in one statement.
func (s *Store) Clear(userID string) error {
	cart, err := s.cartFor(userID)
	if err != nil {
		return err
	}
	return s.db.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error
}

// Items returns the cart rows with products resolved where possible.
func (s *Store) Items(userID string) ([]models.CartItem, error) {
	cart, err := s.cartFor(userID)
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := s.db.Preload("Product").
		Where("cart_id = ?", cart.CartID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Total sums price × quantity over resolvable items. Items whose
// product no longer exists are excluded from both total and count so
// the two aggregates stay consistent.
func Total(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		if !item.Resolved() {
			continue
		}
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// Count sums quantities over resolvable items.
func Count(items []models.CartItem) int {
	var count int
	for _, item := range items {
		if !item.Resolved() {
			continue
		}
		count += item.Quantity
	}
	return count
}

// -------- Handlers --------

type addInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,min=1"`
}

type updateInput struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// GET /api/cart/
func (s *Store) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		items, err := s.Items(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"total": Total(items),
			"count": Count(items),
		})
	}
}

// POST /api/cart/add
func (s *Store) Add() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input addInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}

		item, err := s.AddItem(userID, input.ProductID, input.Quantity)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
				return
			}
			s.log.Error("add to cart failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// POST /api/cart/update
func (s *Store) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input updateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		item, err := s.SetQuantity(userID, input.ItemID, input.Quantity)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /api/cart/:id
func (s *Store) Remove() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}

		removed, err := s.RemoveItem(userID, uint(itemID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /api/cart/
func (s *Store) ClearHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := s.Clear(userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
