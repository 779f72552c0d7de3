package models

import (
	"errors"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // placed, payment not yet confirmed
	OrderStatusProcessing OrderStatus = "processing" // paid, being prepared
	OrderStatusCompleted  OrderStatus = "completed"  // delivered
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed" // payment failed
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

// ParseOrderStatus maps a request string onto the status enum. Any
// string outside the enum is rejected rather than written through.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(s)) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusCompleted:
		return OrderStatusCompleted, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	case OrderStatusFailed:
		return OrderStatusFailed, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	UserID            *string     `gorm:"type:uuid;index" json:"user_id"` // nullable: guest checkout rows
	Email             string      `json:"email"`
	Items             []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount       float64     `json:"total_amount"`
	Status            OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	ShippingAddress   string      `json:"shipping_address"`
	CheckoutRequestID string      `gorm:"index" json:"checkout_request_id"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// OrderItem snapshots name and price at order time so later product
// edits don't rewrite order history.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index" json:"order_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
