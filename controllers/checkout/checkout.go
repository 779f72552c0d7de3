package checkoutControllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/John-Gaitho/branded-in-grace-api/config"
	cartControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/cart"
	mpesaControllers "github.com/John-Gaitho/branded-in-grace-api/controllers/mpesa"
	"github.com/John-Gaitho/branded-in-grace-api/middleware"
	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/John-Gaitho/branded-in-grace-api/payment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Flow wires the cart, the price breakdown, and the payment coordinator
// into the single submit operation behind POST /api/checkout.
type Flow struct {
	db       *gorm.DB
	carts    *cartControllers.Store
	payments *mpesaControllers.Handler
	source   payment.StatusSource
	cfg      config.CheckoutConfig
	interval time.Duration
	attempts int
	log      *zap.Logger

	// notify is called with every order that reaches a terminal
	// payment outcome; the admin websocket feed hangs off it.
	notify func(order models.Order)
}

func NewFlow(
	db *gorm.DB,
	carts *cartControllers.Store,
	payments *mpesaControllers.Handler,
	source payment.StatusSource,
	checkoutCfg config.CheckoutConfig,
	mpesaCfg config.MpesaConfig,
	log *zap.Logger,
	notify func(order models.Order),
) *Flow {
	if notify == nil {
		notify = func(models.Order) {}
	}
	return &Flow{
		db:       db,
		carts:    carts,
		payments: payments,
		source:   source,
		cfg:      checkoutCfg,
		interval: time.Duration(mpesaCfg.PollIntervalSeconds) * time.Second,
		attempts: mpesaCfg.PollMaxAttempts,
		log:      log,
		notify:   notify,
	}
}

// NewReference generates the account reference sent to the gateway.
// Time-based, so rapid repeated submissions can collide; the gateway's
// CheckoutRequestID is the identifier everything else keys on.
func NewReference(now time.Time) string {
	return fmt.Sprintf("BIG-%d", now.UnixMilli())
}

type submitInput struct {
	PhoneNumber     string `json:"phone_number" binding:"required"`
	Email           string `json:"email" binding:"omitempty,email"`
	ShippingAddress string `json:"shipping_address"`
}

// Submit handles POST /api/checkout: validate, price, push, poll.
func (f *Flow) Submit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input submitInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		// Phone is checked before anything touches the network.
		phone := payment.NormalizePhone(input.PhoneNumber)
		if !payment.ValidPhone(phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid Kenyan phone number (254XXXXXXXXX)"})
			return
		}

		items, err := f.carts.Items(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if cartControllers.Count(items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		email := input.Email
		if email == "" {
			if v, exists := c.Get(middleware.ContextEmail); exists {
				email, _ = v.(string)
			}
		}

		totals := ComputeTotals(items, f.cfg)
		reference := NewReference(time.Now())

		push, err := f.payments.InitiatePush(c.Request.Context(), phone, totals.Total, reference)
		if err != nil {
			f.log.Error("checkout payment initiation failed",
				zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to initiate payment: " + err.Error()})
			return
		}

		draft := orderDraft{
			userID:            userID,
			email:             email,
			shippingAddress:   input.ShippingAddress,
			checkoutRequestID: push.CheckoutRequestID,
			total:             totals.Total,
			items:             snapshotItems(items),
		}

		if !f.cfg.DeferOrder {
			if err := f.createOrder(&draft); err != nil {
				f.log.Error("failed to create order", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
				return
			}
		}

		// The watch outlives the request: navigating away must not
		// cancel the poll, so it runs on a background context.
		watcher := payment.NewCoordinator(f.source, &orderFinalizer{flow: f, draft: draft}, f.interval, f.attempts, f.log)
		go watcher.Watch(context.Background(), push.CheckoutRequestID)

		c.JSON(http.StatusOK, gin.H{
			"message":             "STK push sent. Confirm payment on your phone.",
			"checkout_request_id": push.CheckoutRequestID,
			"account_reference":   reference,
			"breakdown":           totals,
		})
	}
}

// orderDraft captures everything needed to build the order row, taken
// at submit time so the snapshot is immune to later cart edits.
type orderDraft struct {
	userID            string
	email             string
	shippingAddress   string
	checkoutRequestID string
	total             float64
	items             []models.OrderItem
}

func snapshotItems(items []models.CartItem) []models.OrderItem {
	var out []models.OrderItem
	for _, item := range items {
		if !item.Resolved() {
			continue
		}
		out = append(out, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Price:       item.Product.Price,
			Quantity:    item.Quantity,
		})
	}
	return out
}

func (f *Flow) createOrder(draft *orderDraft) error {
	userID := draft.userID
	order := models.Order{
		UserID:            &userID,
		Email:             draft.email,
		Items:             draft.items,
		TotalAmount:       draft.total,
		Status:            models.OrderStatusPending,
		ShippingAddress:   draft.shippingAddress,
		CheckoutRequestID: draft.checkoutRequestID,
	}
	return f.db.Create(&order).Error
}

// orderFinalizer applies the terminal payment outcome to the order and
// cart. It implements payment.Observer.
type orderFinalizer struct {
	flow  *Flow
	draft orderDraft
}

func (o *orderFinalizer) OnCompleted(ctx context.Context, checkoutRequestID string) {
	f := o.flow

	if f.cfg.DeferOrder {
		if err := f.createOrder(&o.draft); err != nil {
			f.log.Error("failed to create order after payment",
				zap.String("checkout_request_id", checkoutRequestID), zap.Error(err))
			return
		}
	}

	var order models.Order
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").
			Where("checkout_request_id = ?", checkoutRequestID).
			First(&order).Error; err != nil {
			return err
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusProcessing).Error; err != nil {
			return err
		}
		order.Status = models.OrderStatusProcessing

		// Stock comes off at payment confirmation, clamped at zero:
		// the money is already taken, so an oversell is logged rather
		// than blocking the order.
		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("GREATEST(stock - ?, 0)", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		f.log.Error("failed to finalise order",
			zap.String("checkout_request_id", checkoutRequestID), zap.Error(err))
		return
	}

	// Clearing the cart is a separate call, not part of the order
	// transaction; a failure here leaves a stale cart, not a broken
	// order.
	if err := f.carts.Clear(o.draft.userID); err != nil {
		f.log.Error("failed to clear cart after payment",
			zap.String("user_id", o.draft.userID), zap.Error(err))
	}

	f.notify(order)
	f.log.Info("order paid",
		zap.Uint("order_id", order.ID),
		zap.String("checkout_request_id", checkoutRequestID))
}

func (o *orderFinalizer) OnFailed(ctx context.Context, checkoutRequestID string) {
	f := o.flow

	// Cart is preserved for retry. In deferred mode there is no order
	// row to update.
	if f.cfg.DeferOrder {
		return
	}

	var order models.Order
	if err := f.db.Where("checkout_request_id = ?", checkoutRequestID).First(&order).Error; err != nil {
		f.log.Error("failed to load order for failed payment",
			zap.String("checkout_request_id", checkoutRequestID), zap.Error(err))
		return
	}
	if err := f.db.Model(&order).Update("status", models.OrderStatusFailed).Error; err != nil {
		f.log.Error("failed to mark order failed",
			zap.String("checkout_request_id", checkoutRequestID), zap.Error(err))
		return
	}
	order.Status = models.OrderStatusFailed
	f.notify(order)
}

func (o *orderFinalizer) OnTimedOut(ctx context.Context, checkoutRequestID string) {
	// No reconciliation path exists for a payment that completes after
	// the polling window; the order stays pending and support follows
	// up against the gateway record.
	o.flow.log.Warn("payment status unknown, order left pending",
		zap.String("checkout_request_id", checkoutRequestID),
		zap.String("user_id", o.draft.userID))
}
