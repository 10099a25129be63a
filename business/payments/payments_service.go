package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"futureBridge/domain"
	"futureBridge/internal/repository/razorpay"
	"futureBridge/pkg/logger"
)

// Entitlements run on a trailing window: a paid order unlocks the product
// for this many days, counted in whole IST days.
const entitlementWindowDays = 365

type PaymentsRepository interface {
	InsertOrder(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	MarkPaid(ctx context.Context, orderID, razorpayPaymentID string, amount float64, currency string, completedAt time.Time) error
	MarkFailed(ctx context.Context, orderID string) error
	// FindByOrderID returns domain.ErrNotFound when the order is unknown.
	FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error)
	DeleteByUsername(ctx context.Context, username string) (bool, error)
	// LatestPaid returns the most recently completed paid order for the
	// product tag, or nil when none exists.
	LatestPaid(ctx context.Context, username, paymentFor string) (*domain.Payment, error)
	AcceptPaymentFlag(ctx context.Context) (bool, error)
}

type Gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (razorpay.Order, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]razorpay.OrderPayment, error)
	VerifyWebhookSignature(body []byte, signature string) bool
}

// InitiateRequest is the order-creation input.
type InitiateRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	FullName    string  `json:"full_name"`
	Contact     string  `json:"contact"`
	ProductType string  `json:"product_type" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}

// PaymentsService owns order lifecycle and entitlement checks. It is the
// single implementation behind the payment flags the recommendation flows
// attach to their groups.
type PaymentsService struct {
	paymentRepo PaymentsRepository
	gateway     Gateway
	location    *time.Location
}

func NewPaymentsService(paymentRepo PaymentsRepository, gateway Gateway) *PaymentsService {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// IST has a fixed offset; fall back to it when tzdata is missing.
		loc = time.FixedZone("IST", 5*3600+30*60)
	}
	return &PaymentsService{
		paymentRepo: paymentRepo,
		gateway:     gateway,
		location:    loc,
	}
}

// InitiatePayment opens a gateway order and records it as created.
func (s *PaymentsService) InitiatePayment(ctx context.Context, req InitiateRequest) (domain.PaymentWithLink, error) {
	if err := ctx.Err(); err != nil {
		return domain.PaymentWithLink{}, err
	}

	receipt := uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, int64(req.Amount*100), "INR", receipt)
	if err != nil {
		return domain.PaymentWithLink{}, fmt.Errorf("create gateway order: %w", err)
	}

	payment := domain.Payment{
		Username:   req.Email,
		OrderID:    order.ID,
		Status:     order.Status,
		PaymentFor: req.ProductType,
		Amount:     float64(order.Amount) / 100,
		Currency:   order.Currency,
	}
	stored, err := s.paymentRepo.InsertOrder(ctx, payment)
	if err != nil {
		return domain.PaymentWithLink{}, fmt.Errorf("record order: %w", err)
	}

	logger.Info("payment order created", "user", req.Email, "order_id", order.ID, "product", req.ProductType)
	return domain.PaymentWithLink{
		ID:         stored.ID,
		Username:   stored.Username,
		OrderID:    stored.OrderID,
		Status:     stored.Status,
		PaymentFor: stored.PaymentFor,
		Amount:     stored.Amount,
		Currency:   stored.Currency,
		KeyID:      s.gateway.KeyID(),
		CreatedAt:  stored.CreatedAt,
	}, nil
}

// VerifyAndSavePayment polls the gateway for the order's payment attempts
// and settles the stored order as paid or failed. The boolean reports
// whether the order ended up paid.
func (s *PaymentsService) VerifyAndSavePayment(ctx context.Context, orderID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	attempts, err := s.gateway.FetchOrderPayments(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("fetch payment attempts: %w", err)
	}

	for _, attempt := range attempts {
		if attempt.Status == "captured" {
			completedAt := time.Now().In(s.location)
			if err := s.paymentRepo.MarkPaid(ctx, orderID, attempt.ID, float64(attempt.Amount)/100, attempt.Currency, completedAt); err != nil {
				return false, fmt.Errorf("mark order paid: %w", err)
			}
			logger.Info("payment captured", "order_id", orderID, "payment_id", attempt.ID)
			return true, nil
		}
	}

	if err := s.paymentRepo.MarkFailed(ctx, orderID); err != nil {
		return false, fmt.Errorf("mark order failed: %w", err)
	}
	logger.Warn("payment not captured", "order_id", orderID)
	return false, nil
}

// webhookEvent is the subset of the gateway's webhook payload we act on.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID       string `json:"id"`
				OrderID  string `json:"order_id"`
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
				Status   string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

var ErrBadSignature = errors.New("webhook signature mismatch")

// HandleWebhook settles an order from a gateway callback. The signature is
// checked against the raw body before anything is trusted.
func (s *PaymentsService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return ErrBadSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook: %w", err)
	}

	entity := event.Payload.Payment.Entity
	switch event.Event {
	case "payment.captured":
		completedAt := time.Now().In(s.location)
		if err := s.paymentRepo.MarkPaid(ctx, entity.OrderID, entity.ID, float64(entity.Amount)/100, entity.Currency, completedAt); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		logger.Info("webhook settled order as paid", "order_id", entity.OrderID)
	case "payment.failed":
		if err := s.paymentRepo.MarkFailed(ctx, entity.OrderID); err != nil {
			return fmt.Errorf("mark order failed: %w", err)
		}
		logger.Warn("webhook settled order as failed", "order_id", entity.OrderID)
	default:
		logger.Debug("ignoring webhook event", "event", event.Event)
	}
	return nil
}

func (s *PaymentsService) FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	return s.paymentRepo.FindByOrderID(ctx, orderID)
}

func (s *PaymentsService) DropPaymentDetails(ctx context.Context, username string) (bool, error) {
	return s.paymentRepo.DeleteByUsername(ctx, username)
}

// IsPaid reports whether the user holds a live base-product entitlement.
func (s *PaymentsService) IsPaid(ctx context.Context, username string) (bool, error) {
	return s.hasLiveEntitlement(ctx, username, domain.PaymentProductBase)
}

// IsPaidDiploma reports whether the user holds a live diploma entitlement.
func (s *PaymentsService) IsPaidDiploma(ctx context.Context, username string) (bool, error) {
	return s.hasLiveEntitlement(ctx, username, domain.PaymentProductDiploma)
}

// IsPaidForExam reports whether the user holds a live entitlement for the
// exam-specific product.
func (s *PaymentsService) IsPaidForExam(ctx context.Context, username, examType string) (bool, error) {
	return s.hasLiveEntitlement(ctx, username, domain.PaymentProductForExam(examType))
}

func (s *PaymentsService) AcceptPaymentEnabled(ctx context.Context) (bool, error) {
	return s.paymentRepo.AcceptPaymentFlag(ctx)
}

// hasLiveEntitlement applies the trailing window to the newest paid order.
// Orders settled before the completion timestamp was recorded count as
// live; there is nothing to age them against.
func (s *PaymentsService) hasLiveEntitlement(ctx context.Context, username, paymentFor string) (bool, error) {
	payment, err := s.paymentRepo.LatestPaid(ctx, username, paymentFor)
	if err != nil {
		return false, fmt.Errorf("latest paid order: %w", err)
	}
	if payment == nil {
		return false, nil
	}
	if payment.PaymentCompletedAt == nil {
		return true, nil
	}

	today := dateOnly(time.Now().In(s.location))
	completed := dateOnly(payment.PaymentCompletedAt.In(s.location))
	return !completed.Before(today.AddDate(0, 0, -entitlementWindowDays)), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
