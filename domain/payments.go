package domain

import "time"

// Payment product tags. Entitlement checks match on the exact tag.
const (
	PaymentProductBase    = "future-bridge"
	PaymentProductDiploma = "future-bridge-dsy"
)

// PaymentProductForExam is the tag used by the exam-specific round flows.
func PaymentProductForExam(examType string) string {
	return "future-bridge-admissionType-" + examType
}

const (
	PaymentStatusCreated = "created"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Payment struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Username           string     `gorm:"column:username;index" json:"username"`
	OrderID            string     `gorm:"column:order_id;uniqueIndex" json:"order_id"`
	Status             string     `gorm:"column:status" json:"status"`
	PaymentFor         string     `gorm:"column:payment_for" json:"payment_for"`
	Amount             float64    `gorm:"column:amount" json:"amount"`
	Currency           string     `gorm:"column:currency" json:"currency"`
	RazorpayPaymentID  string     `gorm:"column:razorpay_payment_id" json:"razorpay_payment_id"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	PaymentCompletedAt *time.Time `gorm:"column:payment_completed_at" json:"payment_completed_at"`
}

func (Payment) TableName() string {
	return "user_payments"
}

// PaymentWithLink is the create-order response handed back to the client.
type PaymentWithLink struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	PaymentFor string    `json:"payment_for"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	KeyID      string    `json:"key_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// AppConfigFlag is a single named runtime switch; accept_payment is the one
// the recommendation session reads.
type AppConfigFlag struct {
	Name      string    `gorm:"column:name;primaryKey" json:"name"`
	Enabled   bool      `gorm:"column:enabled" json:"enabled"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (AppConfigFlag) TableName() string {
	return "app_config_flags"
}

const AcceptPaymentFlag = "accept_payment"
