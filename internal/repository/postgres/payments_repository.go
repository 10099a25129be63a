package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"futureBridge/domain"
)

type PaymentsRepository struct {
	DB *gorm.DB
}

func NewPaymentsRepository(db *gorm.DB) *PaymentsRepository {
	return &PaymentsRepository{DB: db}
}

func (r *PaymentsRepository) InsertOrder(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	if err := r.DB.WithContext(ctx).Create(&payment).Error; err != nil {
		return domain.Payment{}, fmt.Errorf("insert order: %w", err)
	}
	return payment, nil
}

func (r *PaymentsRepository) MarkPaid(ctx context.Context, orderID, razorpayPaymentID string, amount float64, currency string, completedAt time.Time) error {
	row := r.DB.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"status":               domain.PaymentStatusPaid,
			"razorpay_payment_id":  razorpayPaymentID,
			"amount":               amount,
			"currency":             currency,
			"payment_completed_at": completedAt,
		})
	if row.Error != nil {
		return fmt.Errorf("mark paid: %w", row.Error)
	}
	if row.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PaymentsRepository) MarkFailed(ctx context.Context, orderID string) error {
	row := r.DB.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("order_id = ?", orderID).
		Update("status", domain.PaymentStatusFailed)
	if row.Error != nil {
		return fmt.Errorf("mark failed: %w", row.Error)
	}
	if row.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PaymentsRepository) FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	var payment domain.Payment
	err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Payment{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Payment{}, fmt.Errorf("find by order id: %w", err)
	}
	return payment, nil
}

func (r *PaymentsRepository) DeleteByUsername(ctx context.Context, username string) (bool, error) {
	row := r.DB.WithContext(ctx).
		Where("username = ?", username).
		Delete(&domain.Payment{})
	if row.Error != nil {
		return false, fmt.Errorf("delete by username: %w", row.Error)
	}
	return row.RowsAffected > 0, nil
}

// LatestPaid returns the most recently completed paid order for the product
// tag, nil when the user never paid for it.
func (r *PaymentsRepository) LatestPaid(ctx context.Context, username, paymentFor string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.DB.WithContext(ctx).
		Where("username = ?", username).
		Where("payment_for = ?", paymentFor).
		Where("status = ?", domain.PaymentStatusPaid).
		Order("payment_completed_at DESC NULLS LAST").
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest paid: %w", err)
	}
	return &payment, nil
}

func (r *PaymentsRepository) AcceptPaymentFlag(ctx context.Context) (bool, error) {
	var flag domain.AppConfigFlag
	err := r.DB.WithContext(ctx).
		Where("name = ?", domain.AcceptPaymentFlag).
		First(&flag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("accept payment flag: %w", err)
	}
	return flag.Enabled, nil
}
