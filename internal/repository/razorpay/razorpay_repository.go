package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Config struct {
	KeyID         string
	KeySecret     string
	BaseUrl       string
	WebhookSecret string
}

// RazorpayRepository talks to the Razorpay Orders API with basic auth.
type RazorpayRepository struct {
	cfg    Config
	client *http.Client
}

func NewRazorpayRepository(cfg Config) *RazorpayRepository {
	return &RazorpayRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Order is the gateway's order representation. Amount is in paise.
type Order struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// OrderPayment is one payment attempt against an order.
type OrderPayment struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	CreatedAt int64  `json:"created_at"`
}

func (r *RazorpayRepository) KeyID() string {
	return r.cfg.KeyID
}

// CreateOrder opens a new order for the given amount in paise.
func (r *RazorpayRepository) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (Order, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return Order{}, fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseUrl+"/orders", bytes.NewReader(payload))
	if err != nil {
		return Order{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.cfg.KeyID, r.cfg.KeySecret)

	res, err := r.client.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Order{}, fmt.Errorf("read order response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return Order{}, fmt.Errorf("create order: gateway returned %d: %s", res.StatusCode, body)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return Order{}, fmt.Errorf("decode order response: %w", err)
	}
	return order, nil
}

// FetchOrderPayments lists the payment attempts recorded against an order.
func (r *RazorpayRepository) FetchOrderPayments(ctx context.Context, orderID string) ([]OrderPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseUrl+"/orders/"+orderID+"/payments", nil)
	if err != nil {
		return nil, fmt.Errorf("build payments request: %w", err)
	}
	req.SetBasicAuth(r.cfg.KeyID, r.cfg.KeySecret)

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch order payments: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read payments response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch order payments: gateway returned %d: %s", res.StatusCode, body)
	}

	var wrapper struct {
		Items []OrderPayment `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("decode payments response: %w", err)
	}
	return wrapper.Items, nil
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw webhook body.
func (r *RazorpayRepository) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
