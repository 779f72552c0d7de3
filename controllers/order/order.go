package orderControllers

import (
	"errors"
	"net/http"

	"github.com/John-Gaitho/branded-in-grace-api/middleware"
	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type createOrderInput struct {
	Email           string `json:"email" binding:"omitempty,email"`
	ShippingAddress string `json:"shipping_address"`
	Items           []struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

type updateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get(middleware.ContextRole)
	return role == "admin"
}

// GET /api/orders/ returns the user's own orders; admins see everything.
func ListOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		query := db.Preload("Items").Order("created_at DESC")
		if !isAdmin(c) {
			query = query.Where("user_id = ?", userID)
		}

		var orders []models.Order
		if err := query.Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/:orderID
func GetOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		query := db.Preload("Items").Where("id = ?", c.Param("orderID"))
		if !isAdmin(c) {
			query = query.Where("user_id = ?", userID)
		}

		var order models.Order
		if err := query.First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /api/orders/ creates an order with server-side price snapshots.
// The checkout flow is the usual writer; this endpoint covers the
// direct create in the storefront contract.
func CreateOrder(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input createOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var order models.Order
		err := db.Transaction(func(tx *gorm.DB) error {
			var total float64
			var orderItems []models.OrderItem

			for _, line := range input.Items {
				var product models.Product
				if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
					return err
				}
				total += product.Price * float64(line.Quantity)
				orderItems = append(orderItems, models.OrderItem{
					ProductID:   product.ID,
					ProductName: product.Name,
					Price:       product.Price,
					Quantity:    line.Quantity,
				})
			}

			order = models.Order{
				UserID:          &userID,
				Email:           input.Email,
				Items:           orderItems,
				TotalAmount:     total,
				Status:          models.OrderStatusPending,
				ShippingAddress: input.ShippingAddress,
			}
			return tx.Create(&order).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
				return
			}
			log.Error("create order failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
			return
		}

		c.JSON(http.StatusCreated, order)
	}
}

// PUT /api/orders/:orderID (admin). Status is the only mutable field.
func UpdateOrderStatus(db *gorm.DB, hub *Hub, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input updateStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		status, err := models.ParseOrderStatus(input.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", c.Param("orderID")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		if err := db.Model(&order).Update("status", status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			return
		}
		order.Status = status

		hub.Broadcast(order)
		log.Info("order status updated",
			zap.Uint("order_id", order.ID), zap.String("status", string(status)))
		c.JSON(http.StatusOK, order)
	}
}

// DELETE /api/orders/:orderID (admin)
func DeleteOrder(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			result := tx.Where("id = ?", orderID).Delete(&models.Order{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			log.Error("delete order failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
	}
}
