package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"futureBridge/domain"
	"futureBridge/internal/repository/razorpay"
)

type fakePaymentsRepo struct {
	inserted []domain.Payment
	paid     map[string]string
	failed   []string
	latest   map[string]*domain.Payment
	flag     bool
}

func newFakePaymentsRepo() *fakePaymentsRepo {
	return &fakePaymentsRepo{
		paid:   map[string]string{},
		latest: map[string]*domain.Payment{},
	}
}

func (f *fakePaymentsRepo) InsertOrder(_ context.Context, payment domain.Payment) (domain.Payment, error) {
	payment.ID = uint(len(f.inserted) + 1)
	f.inserted = append(f.inserted, payment)
	return payment, nil
}

func (f *fakePaymentsRepo) MarkPaid(_ context.Context, orderID, razorpayPaymentID string, _ float64, _ string, _ time.Time) error {
	f.paid[orderID] = razorpayPaymentID
	return nil
}

func (f *fakePaymentsRepo) MarkFailed(_ context.Context, orderID string) error {
	f.failed = append(f.failed, orderID)
	return nil
}

func (f *fakePaymentsRepo) FindByOrderID(_ context.Context, orderID string) (domain.Payment, error) {
	for _, p := range f.inserted {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return domain.Payment{}, domain.ErrNotFound
}

func (f *fakePaymentsRepo) DeleteByUsername(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (f *fakePaymentsRepo) LatestPaid(_ context.Context, username, paymentFor string) (*domain.Payment, error) {
	return f.latest[username+"|"+paymentFor], nil
}

func (f *fakePaymentsRepo) AcceptPaymentFlag(_ context.Context) (bool, error) {
	return f.flag, nil
}

type fakeGateway struct {
	order     razorpay.Order
	orderErr  error
	attempts  []razorpay.OrderPayment
	signature bool
	receipts  []string
}

func (f *fakeGateway) KeyID() string { return "rzp_test_key" }

func (f *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, currency, receipt string) (razorpay.Order, error) {
	f.receipts = append(f.receipts, receipt)
	if f.orderErr != nil {
		return razorpay.Order{}, f.orderErr
	}
	order := f.order
	order.Amount = amountPaise
	order.Currency = currency
	return order, nil
}

func (f *fakeGateway) FetchOrderPayments(_ context.Context, _ string) ([]razorpay.OrderPayment, error) {
	return f.attempts, nil
}

func (f *fakeGateway) VerifyWebhookSignature(_ []byte, _ string) bool {
	return f.signature
}

func TestInitiatePaymentRecordsOrder(t *testing.T) {
	repo := newFakePaymentsRepo()
	gateway := &fakeGateway{order: razorpay.Order{ID: "order_9", Status: domain.PaymentStatusCreated}}
	svc := NewPaymentsService(repo, gateway)

	link, err := svc.InitiatePayment(context.Background(), InitiateRequest{
		Email:       "asha@example.com",
		ProductType: domain.PaymentProductBase,
		Amount:      499,
	})
	require.NoError(t, err)

	require.Equal(t, "order_9", link.OrderID)
	require.Equal(t, "rzp_test_key", link.KeyID)
	require.Equal(t, 499.0, link.Amount)
	require.Equal(t, "INR", link.Currency)

	require.Len(t, repo.inserted, 1)
	require.Equal(t, "asha@example.com", repo.inserted[0].Username)
	require.Equal(t, domain.PaymentStatusCreated, repo.inserted[0].Status)
	require.Len(t, gateway.receipts, 1)
	_, err = uuid.Parse(gateway.receipts[0])
	require.NoError(t, err)
}

func TestInitiatePaymentGatewayError(t *testing.T) {
	repo := newFakePaymentsRepo()
	gateway := &fakeGateway{orderErr: errors.New("gateway down")}
	svc := NewPaymentsService(repo, gateway)

	_, err := svc.InitiatePayment(context.Background(), InitiateRequest{
		Email:       "asha@example.com",
		ProductType: domain.PaymentProductBase,
		Amount:      499,
	})
	require.Error(t, err)
	require.Empty(t, repo.inserted)
}

func TestVerifyMarksCapturedAttemptPaid(t *testing.T) {
	repo := newFakePaymentsRepo()
	gateway := &fakeGateway{attempts: []razorpay.OrderPayment{
		{ID: "pay_1", Status: "failed"},
		{ID: "pay_2", Status: "captured", Amount: 49900, Currency: "INR"},
	}}
	svc := NewPaymentsService(repo, gateway)

	paid, err := svc.VerifyAndSavePayment(context.Background(), "order_9")
	require.NoError(t, err)
	require.True(t, paid)
	require.Equal(t, "pay_2", repo.paid["order_9"])
	require.Empty(t, repo.failed)
}

func TestVerifyMarksFailedWhenNothingCaptured(t *testing.T) {
	repo := newFakePaymentsRepo()
	gateway := &fakeGateway{attempts: []razorpay.OrderPayment{{ID: "pay_1", Status: "failed"}}}
	svc := NewPaymentsService(repo, gateway)

	paid, err := svc.VerifyAndSavePayment(context.Background(), "order_9")
	require.NoError(t, err)
	require.False(t, paid)
	require.Equal(t, []string{"order_9"}, repo.failed)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	repo := newFakePaymentsRepo()
	svc := NewPaymentsService(repo, &fakeGateway{signature: false})

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "bogus")
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestWebhookSettlesCapturedPayment(t *testing.T) {
	repo := newFakePaymentsRepo()
	svc := NewPaymentsService(repo, &fakeGateway{signature: true})

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_7","order_id":"order_9","amount":49900,"currency":"INR","status":"captured"}}}}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))
	require.Equal(t, "pay_7", repo.paid["order_9"])
}

func TestWebhookSettlesFailedPayment(t *testing.T) {
	repo := newFakePaymentsRepo()
	svc := NewPaymentsService(repo, &fakeGateway{signature: true})

	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_7","order_id":"order_9"}}}}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), body, "sig"))
	require.Equal(t, []string{"order_9"}, repo.failed)
}

func TestEntitlementWindow(t *testing.T) {
	repo := newFakePaymentsRepo()
	svc := NewPaymentsService(repo, &fakeGateway{})

	recent := time.Now().AddDate(0, 0, -300)
	stale := time.Now().AddDate(0, 0, -366)

	repo.latest["live@example.com|"+domain.PaymentProductBase] = &domain.Payment{
		Username: "live@example.com", PaymentCompletedAt: &recent,
	}
	repo.latest["stale@example.com|"+domain.PaymentProductBase] = &domain.Payment{
		Username: "stale@example.com", PaymentCompletedAt: &stale,
	}
	repo.latest["legacy@example.com|"+domain.PaymentProductBase] = &domain.Payment{
		Username: "legacy@example.com",
	}

	paid, err := svc.IsPaid(context.Background(), "live@example.com")
	require.NoError(t, err)
	require.True(t, paid)

	paid, err = svc.IsPaid(context.Background(), "stale@example.com")
	require.NoError(t, err)
	require.False(t, paid)

	paid, err = svc.IsPaid(context.Background(), "legacy@example.com")
	require.NoError(t, err)
	require.True(t, paid)

	paid, err = svc.IsPaid(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.False(t, paid)
}

func TestEntitlementProductTags(t *testing.T) {
	repo := newFakePaymentsRepo()
	svc := NewPaymentsService(repo, &fakeGateway{})

	now := time.Now()
	repo.latest["asha@example.com|"+domain.PaymentProductDiploma] = &domain.Payment{
		Username: "asha@example.com", PaymentCompletedAt: &now,
	}
	repo.latest["asha@example.com|"+domain.PaymentProductForExam("MHT-CET")] = &domain.Payment{
		Username: "asha@example.com", PaymentCompletedAt: &now,
	}

	paid, err := svc.IsPaid(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.False(t, paid)

	paid, err = svc.IsPaidDiploma(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.True(t, paid)

	paid, err = svc.IsPaidForExam(context.Background(), "asha@example.com", "MHT-CET")
	require.NoError(t, err)
	require.True(t, paid)
}
