package mpesaControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/John-Gaitho/branded-in-grace-api/payment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler exposes the gateway-facing endpoints: push initiation, the
// transaction read model the storefront polls, and the asynchronous
// callback the gateway posts terminal results to.
type Handler struct {
	db      *gorm.DB
	gateway payment.Gateway
	log     *zap.Logger
}

func NewHandler(db *gorm.DB, gateway payment.Gateway, log *zap.Logger) *Handler {
	return &Handler{db: db, gateway: gateway, log: log}
}

type stkPushInput struct {
	PhoneNumber      string  `json:"phone_number" binding:"required"`
	Amount           float64 `json:"amount" binding:"required,gt=0"`
	AccountReference string  `json:"account_reference"`
}

// InitiatePush sends the STK push and records the pending transaction.
// Shared by the direct endpoint and the checkout flow.
func (h *Handler) InitiatePush(ctx context.Context, phone string, amount float64, reference string) (*payment.STKPushResult, error) {
	phone = payment.NormalizePhone(phone)
	if !payment.ValidPhone(phone) {
		return nil, payment.ErrInvalidPhone
	}

	result, err := h.gateway.InitiateSTKPush(ctx, phone, amount, reference)
	if err != nil {
		return nil, err
	}

	tx := models.MpesaTransaction{
		CheckoutRequestID: result.CheckoutRequestID,
		MerchantRequestID: result.MerchantRequestID,
		AccountReference:  reference,
		PhoneNumber:       phone,
		Amount:            amount,
		Status:            models.TransactionPending,
	}
	if err := h.db.Create(&tx).Error; err != nil {
		// The push already went out; surface the tracking failure
		// loudly because polling depends on this row existing.
		h.log.Error("failed to store transaction",
			zap.String("checkout_request_id", result.CheckoutRequestID), zap.Error(err))
		return nil, fmt.Errorf("store transaction: %w", err)
	}
	return result, nil
}

// POST /api/mpesa/stkpush
func (h *Handler) StkPush() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input stkPushInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.AccountReference == "" {
			input.AccountReference = "Order Payment"
		}

		result, err := h.InitiatePush(c.Request.Context(), input.PhoneNumber, input.Amount, input.AccountReference)
		if err != nil {
			if errors.Is(err, payment.ErrInvalidPhone) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid Kenyan phone number (254XXXXXXXXX)"})
				return
			}
			h.log.Error("stk push failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":             true,
			"message":             "STK push sent successfully",
			"checkout_request_id": result.CheckoutRequestID,
			"customer_message":    result.CustomerMessage,
		})
	}
}

// GET /api/mpesa/transactions
func (h *Handler) ListTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		var txs []models.MpesaTransaction
		if err := h.db.Order("created_at DESC").Limit(100).Find(&txs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		c.JSON(http.StatusOK, txs)
	}
}

// GET /api/mpesa/status/:checkoutRequestID
func (h *Handler) Status() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("checkoutRequestID")

		var tx models.MpesaTransaction
		if err := h.db.Where("checkout_request_id = ?", id).First(&tx).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transaction"})
			return
		}
		c.JSON(http.StatusOK, tx)
	}
}

// stkCallback mirrors the gateway's result POST.
type stkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []struct {
			Name  string      `json:"Name"`
			Value interface{} `json:"Value"`
		} `json:"Item"`
	} `json:"CallbackMetadata"`
}

type stkCallbackBody struct {
	Body struct {
		StkCallback stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// callbackUpdates maps a gateway result onto the transaction columns.
// TransactionDate arrives as a JSON number, so the decoded value is a
// float64; it must be written back as the yyyymmddhhmmss digits, not
// the float's default notation.
func callbackUpdates(cb stkCallback) (models.TransactionStatus, map[string]interface{}) {
	status := models.TransactionFailed
	updates := map[string]interface{}{
		"result_code": cb.ResultCode,
		"result_desc": cb.ResultDesc,
	}

	if cb.ResultCode == 0 {
		status = models.TransactionCompleted
		for _, item := range cb.CallbackMetadata.Item {
			switch item.Name {
			case "MpesaReceiptNumber":
				if v, ok := item.Value.(string); ok {
					updates["mpesa_receipt_number"] = v
				}
			case "TransactionDate":
				switch v := item.Value.(type) {
				case string:
					updates["transaction_date"] = v
				case float64:
					updates["transaction_date"] = strconv.FormatFloat(v, 'f', 0, 64)
				}
			}
		}
	}
	updates["status"] = status
	return status, updates
}

// Callback is the gateway's asynchronous result hook. It always ACKs
// with ResultCode 0: a non-zero reply makes the gateway retry, and a
// malformed callback is not something a retry will fix.
func (h *Handler) Callback() gin.HandlerFunc {
	ack := gin.H{"ResultCode": 0, "ResultDesc": "Success"}

	return func(c *gin.Context) {
		var body stkCallbackBody
		if err := c.ShouldBindJSON(&body); err != nil {
			h.log.Warn("malformed gateway callback", zap.Error(err))
			c.JSON(http.StatusOK, ack)
			return
		}

		cb := body.Body.StkCallback
		if cb.CheckoutRequestID == "" {
			h.log.Warn("gateway callback missing CheckoutRequestID")
			c.JSON(http.StatusOK, ack)
			return
		}

		status, updates := callbackUpdates(cb)

		result := h.db.Model(&models.MpesaTransaction{}).
			Where("checkout_request_id = ?", cb.CheckoutRequestID).
			Updates(updates)
		if result.Error != nil {
			h.log.Error("failed to update transaction from callback",
				zap.String("checkout_request_id", cb.CheckoutRequestID), zap.Error(result.Error))
		} else if result.RowsAffected == 0 {
			h.log.Warn("callback for unknown transaction",
				zap.String("checkout_request_id", cb.CheckoutRequestID))
		} else {
			h.log.Info("transaction updated from callback",
				zap.String("checkout_request_id", cb.CheckoutRequestID),
				zap.String("status", string(status)))
		}

		c.JSON(http.StatusOK, ack)
	}
}

// DBStatusSource feeds the payment coordinator from the transaction
// rows the callback mutates.
type DBStatusSource struct {
	DB *gorm.DB
}

func (s DBStatusSource) Status(ctx context.Context, checkoutRequestID string) (models.TransactionStatus, error) {
	var tx models.MpesaTransaction
	if err := s.DB.WithContext(ctx).
		Where("checkout_request_id = ?", checkoutRequestID).
		First(&tx).Error; err != nil {
		return "", err
	}
	return tx.Status, nil
}
