package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/John-Gaitho/branded-in-grace-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"254712345678", true},
		{"254100000000", true},
		{"0712345678", false},    // not normalised
		{"+254712345678", false}, // plus sign not stripped
		{"25471234567", false},   // too short
		{"2547123456789", false}, // too long
		{"254712 45678", false},
		{"", false},
		{"notaphone", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidPhone(tt.phone), "phone %q", tt.phone)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{" 0712345678 ", "254712345678"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in))
	}
}

func TestPassword(t *testing.T) {
	got := Password("174379", "passkey", "20260830120000")
	decoded, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, "174379passkey20260830120000", string(decoded))
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2026, 8, 30, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, "20260830090507", Timestamp(ts))
}

func TestInitiateSTKPushRejectsInvalidPhoneBeforeNetwork(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewDarajaClient(config.MpesaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		BaseURL:        srv.URL,
	}, zap.NewNop())

	_, err := client.InitiateSTKPush(context.Background(), "0712345678", 100, "BIG-1")
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Zero(t, calls, "gateway must not be contacted for an invalid phone")
}

func TestInitiateSTKPush(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "254712345678", payload["PhoneNumber"])
		assert.Equal(t, "CustomerPayBillOnline", payload["TransactionType"])
		// 3400.00 KES goes out as whole shillings.
		assert.Equal(t, float64(3400), payload["Amount"])

		json.NewEncoder(w).Encode(STKPushResult{
			MerchantRequestID:   "m-1",
			CheckoutRequestID:   "ws_CO_1",
			ResponseCode:        "0",
			ResponseDescription: "Success",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewDarajaClient(config.MpesaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		BaseURL:        srv.URL,
	}, zap.NewNop())

	result, err := client.InitiateSTKPush(context.Background(), "254712345678", 3400, "BIG-1")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_1", result.CheckoutRequestID)
}

func TestInitiateSTKPushGatewayRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(STKPushResult{
			ResponseCode:        "1",
			ResponseDescription: "Insufficient funds on shortcode",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewDarajaClient(config.MpesaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		BaseURL:        srv.URL,
	}, zap.NewNop())

	_, err := client.InitiateSTKPush(context.Background(), "254712345678", 100, "BIG-1")
	assert.ErrorContains(t, err, "gateway rejected push")
}
