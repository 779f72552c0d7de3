package models

import "time"

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Terminal reports whether no further state change is expected for the
// transaction.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionCompleted || s == TransactionFailed
}

// MpesaTransaction correlates our account reference with the gateway's
// CheckoutRequestID. The row is written as pending when the STK push is
// accepted and mutated only by the gateway callback.
type MpesaTransaction struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	CheckoutRequestID  string            `gorm:"uniqueIndex;not null" json:"checkout_request_id"`
	MerchantRequestID  string            `json:"merchant_request_id"`
	AccountReference   string            `gorm:"index" json:"account_reference"`
	PhoneNumber        string            `json:"phone_number"`
	Amount             float64           `json:"amount"`
	Status             TransactionStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	ResultCode         *int              `json:"result_code"`
	ResultDesc         string            `json:"result_desc"`
	MpesaReceiptNumber string            `json:"mpesa_receipt_number"`
	TransactionDate    string            `json:"transaction_date"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
