package user

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"

	"futureBridge/domain"
	"futureBridge/pkg/logger"
	"futureBridge/pkg/utils"
)

type UserRepository interface {
	// FindByEmail returns domain.ErrNotFound when no profile exists.
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

type OTPRepository interface {
	StoreOTP(ctx context.Context, email, sealedCode string, ttl time.Duration) error
	// FetchOTP returns domain.ErrNotFound when no code is pending.
	FetchOTP(ctx context.Context, email string) (string, error)
	DeleteOTP(ctx context.Context, email string) error
	StoreIssuedToken(ctx context.Context, email, token string, ttl time.Duration) error
}

type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) error
}

const (
	otpTTL   = 5 * time.Minute
	tokenTTL = 24 * time.Hour

	subjectLoginOTP   = "Your FutureBridge login code"
	emailBodyLoginOTP = `Dear User,<br><br>Here is your One-Time Password (OTP): <strong>%v</strong><br>Please use this code to complete your verification process within %v minutes.<br><br>If you did not request this OTP, please reach out to support.`
)

// ValidateOTPResult mirrors the login response. AccessToken, Name and
// ProfileIcon are only set when IsValid is true.
type ValidateOTPResult struct {
	IsValid     bool   `json:"isValidOtp"`
	AccessToken string `json:"accessToken,omitempty"`
	Name        string `json:"name,omitempty"`
	ProfileIcon string `json:"profileIcon,omitempty"`
}

// UserService runs the OTP login flow: a code is mailed out, parked in the
// OTP store sealed with AES-CBC, and exchanged for a JWT on validation.
type UserService struct {
	userRepo  UserRepository
	otpRepo   OTPRepository
	notifRepo NotificationRepository
	validate  *validator.Validate
	otpKey    string
}

func NewUserService(
	userRepo UserRepository,
	otpRepo OTPRepository,
	notifRepo NotificationRepository,
	validate *validator.Validate,
	otpKey string,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		otpRepo:   otpRepo,
		notifRepo: notifRepo,
		validate:  validate,
		otpKey:    otpKey,
	}
}

// RequestOTP generates a fresh login code, seals and stores it, and mails
// it to the address. A pending code for the same address is replaced.
func (s *UserService) RequestOTP(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}

	code := 100000 + rand.IntN(900000)
	sealed, err := s.seal(email, code)
	if err != nil {
		return fmt.Errorf("seal otp: %w", err)
	}
	if err := s.otpRepo.StoreOTP(ctx, email, sealed, otpTTL); err != nil {
		return err
	}

	body := fmt.Sprintf(emailBodyLoginOTP, code, int(otpTTL.Minutes()))
	if err := s.notifRepo.SendEmail(email, email, subjectLoginOTP, body); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}

	logger.Info("otp issued", "user", email)
	return nil
}

// ValidateOTP checks a submitted code against the pending one. A wrong or
// expired code is not an error, it is an invalid result. On success the
// code is consumed and a JWT carrying the user's email and name is issued.
func (s *UserService) ValidateOTP(ctx context.Context, email, otp string) (ValidateOTPResult, error) {
	if err := ctx.Err(); err != nil {
		return ValidateOTPResult{}, err
	}

	code, err := strconv.Atoi(strings.TrimSpace(otp))
	if err != nil {
		return ValidateOTPResult{}, nil
	}

	sealed, err := s.otpRepo.FetchOTP(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return ValidateOTPResult{}, nil
	}
	if err != nil {
		return ValidateOTPResult{}, err
	}

	storedEmail, storedCode, err := s.unseal(sealed)
	if err != nil {
		logger.Warn("stored otp could not be unsealed", "user", email, "error", err)
		return ValidateOTPResult{}, nil
	}
	if storedEmail != email || storedCode != code {
		return ValidateOTPResult{}, nil
	}

	if err := s.otpRepo.DeleteOTP(ctx, email); err != nil {
		logger.Warn("failed to consume otp", "user", email, "error", err)
	}

	// A missing profile still logs in, the token just carries no name.
	var name, profileIcon string
	profile, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		name = profile.Name
		profileIcon = profile.ProfileIcon
	case errors.Is(err, domain.ErrNotFound):
	default:
		return ValidateOTPResult{}, fmt.Errorf("load profile: %w", err)
	}

	token, err := utils.GenerateJWT(email, name)
	if err != nil {
		return ValidateOTPResult{}, fmt.Errorf("generate token: %w", err)
	}
	if err := s.otpRepo.StoreIssuedToken(ctx, email, token, tokenTTL); err != nil {
		logger.Warn("failed to record issued token", "user", email, "error", err)
	}

	logger.Info("otp validated", "user", email)
	return ValidateOTPResult{
		IsValid:     true,
		AccessToken: token,
		Name:        name,
		ProfileIcon: profileIcon,
	}, nil
}

// seal binds the code to the email so a swapped store entry cannot be
// replayed for another address.
func (s *UserService) seal(email string, code int) (string, error) {
	plain := fmt.Sprintf("%v|%v", email, code)
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(plain), []byte(s.otpKey))
	if err != nil {
		return "", err
	}
	return goshortcute.StringtoBase64Encode(encrypted), nil
}

func (s *UserService) unseal(sealed string) (string, int, error) {
	decoded := goshortcute.StringtoBase64Decode(sealed)
	plain, err := goshortcute.AESCBCDecrypt([]byte(decoded), []byte(s.otpKey))
	if err != nil {
		return "", 0, err
	}

	parts := strings.Split(plain, "|")
	if len(parts) != 2 {
		return "", 0, errors.New("malformed otp payload")
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, errors.New("malformed otp payload")
	}
	return parts[0], code, nil
}
