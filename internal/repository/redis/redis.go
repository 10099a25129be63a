package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"futureBridge/domain"
)

// OTPRepository keeps one pending login code per email. Storing a new code
// replaces the previous one, and Redis expiry enforces the code TTL.
type OTPRepository struct {
	client *redis.Client
}

func NewOTPRepository(client *redis.Client) *OTPRepository {
	return &OTPRepository{client: client}
}

func otpKey(email string) string {
	return "otp:" + email
}

func tokenKey(email string) string {
	return "token:" + email
}

func (r *OTPRepository) StoreOTP(ctx context.Context, email, sealedCode string, ttl time.Duration) error {
	if err := r.client.Set(ctx, otpKey(email), sealedCode, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// FetchOTP returns the sealed code for the email, or domain.ErrNotFound when
// no code is pending.
func (r *OTPRepository) FetchOTP(ctx context.Context, email string) (string, error) {
	val, err := r.client.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch otp: %w", err)
	}
	return val, nil
}

func (r *OTPRepository) DeleteOTP(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

// StoreIssuedToken records the token handed out after a successful OTP
// validation so sessions can be looked up and revoked.
func (r *OTPRepository) StoreIssuedToken(ctx context.Context, email, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, tokenKey(email), token, ttl).Err(); err != nil {
		return fmt.Errorf("store issued token: %w", err)
	}
	return nil
}

// IssuedToken returns the live token for the email, or domain.ErrNotFound.
func (r *OTPRepository) IssuedToken(ctx context.Context, email string) (string, error) {
	val, err := r.client.Get(ctx, tokenKey(email)).Result()
	if err == redis.Nil {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch issued token: %w", err)
	}
	return val, nil
}
