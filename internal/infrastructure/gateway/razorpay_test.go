package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	g := NewRazorpayGateway("key", "secret", "http://unused")

	assert.True(t, g.VerifySignature("order_1", "pay_1", sign("secret", "order_1", "pay_1")))
	assert.False(t, g.VerifySignature("order_1", "pay_1", sign("wrong", "order_1", "pay_1")))
	assert.False(t, g.VerifySignature("order_1", "pay_2", sign("secret", "order_1", "pay_1")))
	assert.False(t, g.VerifySignature("order_1", "pay_1", ""))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "/orders", r.URL.Path)
		w.Write([]byte(`{"id":"order_rzp_test_1","status":"created"}`))
	}))
	defer srv.Close()

	g := NewRazorpayGateway("key", "secret", srv.URL)
	id, err := g.CreateOrder(context.Background(), 45000, "INR", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "order_rzp_test_1", id)
}

func TestCreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"description":"bad key"}}`))
	}))
	defer srv.Close()

	g := NewRazorpayGateway("key", "secret", srv.URL)
	_, err := g.CreateOrder(context.Background(), 45000, "INR", "user-1")
	assert.Error(t, err)
}
