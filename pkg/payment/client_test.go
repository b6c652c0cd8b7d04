package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/poornima-canteen/canteen-backend/pkg/config"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
)

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		KeyID:        "rzp_test_key",
		KeySecret:    "test_secret",
		Currency:     "inr",
		MerchantName: "Poornima Canteen",
	}
}

func signTuple(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewClientValidatesCredentials(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(config.PaymentConfig{KeySecret: "x"}); err == nil {
		t.Fatal("expected error for missing key id")
	}
	if _, err := NewClient(config.PaymentConfig{KeyID: "x"}); err == nil {
		t.Fatal("expected error for missing key secret")
	}

	client, err := NewClient(testPaymentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Currency() != "INR" {
		t.Fatalf("expected normalized currency, got %q", client.Currency())
	}
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	client, err := NewClient(testPaymentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sig := signTuple("test_secret", "order_1", "pay_1")
	if err := client.VerifySignature("order_1", "pay_1", sig); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	if err := client.VerifySignature("order_1", "pay_2", sig); err == nil {
		t.Fatal("expected mismatch for altered payment id")
	}
	if err := client.VerifySignature("order_1", "pay_1", ""); err == nil {
		t.Fatal("expected error for missing signature")
	}
	if typed := pkgerrors.As(client.VerifySignature("order_1", "pay_2", sig)); typed == nil || typed.Code() != pkgerrors.CodePaymentFailed {
		t.Fatalf("expected payment failed code, got %v", typed)
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	client, err := NewClient(testPaymentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.CreateOrder(CreateOrderInput{AmountPaise: 0}); err == nil {
		t.Fatal("expected validation error for zero amount")
	}
}

func TestLoaderRetriesAfterFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	loader := &Loader{
		cfg: testPaymentConfig(),
		build: func(cfg config.PaymentConfig) (*Client, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("provider unreachable")
			}
			return NewClient(cfg)
		},
	}

	if _, err := loader.Load(); err == nil {
		t.Fatal("expected first load to fail")
	}
	client, err := loader.Load()
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	again, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != client {
		t.Fatal("expected cached client after success")
	}
	if attempts != 2 {
		t.Fatalf("expected exactly two build attempts, got %d", attempts)
	}
}
