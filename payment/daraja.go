package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/John-Gaitho/branded-in-grace-api/config"
	"go.uber.org/zap"
)

// ErrInvalidPhone rejects a payment before any network call is made.
var ErrInvalidPhone = errors.New("invalid phone number")

// phonePattern is the Kenyan mobile format the gateway accepts:
// 254 followed by nine digits. Checked before any network call.
var phonePattern = regexp.MustCompile(`^254\d{9}$`)

// ValidPhone reports whether phone is an acceptable M-Pesa number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizePhone rewrites common local spellings (+254..., 07...) into
// the 254XXXXXXXXX form. The result still has to pass ValidPhone.
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "0") {
		p = "254" + p[1:]
	}
	return p
}

// STKPushResult is the accepted-push response from the gateway. The
// CheckoutRequestID is the correlation token everything downstream
// polls on.
type STKPushResult struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Gateway initiates mobile push payments. The Daraja client is the
// production implementation; tests substitute a fake.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, phone string, amount float64, reference string) (*STKPushResult, error)
}

// DarajaClient speaks the Safaricom Daraja REST API.
type DarajaClient struct {
	cfg    config.MpesaConfig
	client *http.Client
	log    *zap.Logger
}

func NewDarajaClient(cfg config.MpesaConfig, log *zap.Logger) *DarajaClient {
	return &DarajaClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Timestamp renders t the way Daraja wants it: yyyymmddhhmmss.
func Timestamp(t time.Time) string {
	return t.Format("20060102150405")
}

// Password derives the STK push password for the given timestamp:
// base64(shortcode + passkey + timestamp).
func Password(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

// accessToken fetches an OAuth client-credentials token.
func (d *DarajaClient) accessToken(ctx context.Context) (string, error) {
	url := d.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(d.cfg.ConsumerKey, d.cfg.ConsumerSecret)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway token request failed: %s", resp.Status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	return body.AccessToken, nil
}

// InitiateSTKPush asks the gateway to prompt the payer's phone for PIN
// confirmation. Amounts are KES major units; the API takes whole
// shillings, so this is the one place the float is rounded up.
func (d *DarajaClient) InitiateSTKPush(ctx context.Context, phone string, amount float64, reference string) (*STKPushResult, error) {
	if !ValidPhone(phone) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPhone, phone)
	}

	token, err := d.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := Timestamp(time.Now())
	payload := map[string]interface{}{
		"BusinessShortCode": d.cfg.Shortcode,
		"Password":          Password(d.cfg.Shortcode, d.cfg.Passkey, timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            int(math.Ceil(amount)),
		"PartyA":            phone,
		"PartyB":            d.cfg.Shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       d.cfg.CallbackURL,
		"AccountReference":  reference,
		"TransactionDesc":   "Payment for " + reference,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := d.cfg.BaseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error (%d): %s", resp.StatusCode, string(body))
	}

	var result STKPushResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if result.ResponseCode != "0" {
		return nil, fmt.Errorf("gateway rejected push: %s", result.ResponseDescription)
	}
	if result.CheckoutRequestID == "" {
		return nil, fmt.Errorf("gateway returned empty CheckoutRequestID")
	}

	d.log.Info("stk push accepted",
		zap.String("checkout_request_id", result.CheckoutRequestID),
		zap.String("reference", reference))
	return &result, nil
}
