package user

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"futureBridge/domain"
	"futureBridge/pkg/utils"
)

type fakeUserRepo struct {
	users map[string]domain.User
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type fakeOTPRepo struct {
	stored  map[string]string
	ttls    map[string]time.Duration
	deleted []string
	tokens  map[string]string
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{
		stored: map[string]string{},
		ttls:   map[string]time.Duration{},
		tokens: map[string]string{},
	}
}

func (f *fakeOTPRepo) StoreOTP(_ context.Context, email, sealedCode string, ttl time.Duration) error {
	f.stored[email] = sealedCode
	f.ttls[email] = ttl
	return nil
}

func (f *fakeOTPRepo) FetchOTP(_ context.Context, email string) (string, error) {
	sealed, ok := f.stored[email]
	if !ok {
		return "", domain.ErrNotFound
	}
	return sealed, nil
}

func (f *fakeOTPRepo) DeleteOTP(_ context.Context, email string) error {
	f.deleted = append(f.deleted, email)
	delete(f.stored, email)
	return nil
}

func (f *fakeOTPRepo) StoreIssuedToken(_ context.Context, email, token string, _ time.Duration) error {
	f.tokens[email] = token
	return nil
}

type fakeNotifier struct {
	sentTo   []string
	subjects []string
	bodies   []string
}

func (f *fakeNotifier) SendEmail(_, toEmail, subject, body string) error {
	f.sentTo = append(f.sentTo, toEmail)
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return nil
}

const testOTPKey = "0123456789abcdef"

func newTestService(users map[string]domain.User) (*UserService, *fakeOTPRepo, *fakeNotifier) {
	utils.InitJWT("test-secret")
	otpRepo := newFakeOTPRepo()
	notifier := &fakeNotifier{}
	svc := NewUserService(
		&fakeUserRepo{users: users},
		otpRepo,
		notifier,
		validator.New(),
		testOTPKey,
	)
	return svc, otpRepo, notifier
}

func TestRequestOTPStoresSealedCodeAndSendsMail(t *testing.T) {
	svc, otpRepo, notifier := newTestService(nil)

	require.NoError(t, svc.RequestOTP(context.Background(), "asha@example.com"))

	sealed, ok := otpRepo.stored["asha@example.com"]
	require.True(t, ok)
	require.Equal(t, 5*time.Minute, otpRepo.ttls["asha@example.com"])

	email, code, err := svc.unseal(sealed)
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", email)
	require.GreaterOrEqual(t, code, 100000)
	require.LessOrEqual(t, code, 999999)

	require.Equal(t, []string{"asha@example.com"}, notifier.sentTo)
	require.Contains(t, notifier.bodies[0], "One-Time Password")
}

func TestRequestOTPRejectsBadEmail(t *testing.T) {
	svc, otpRepo, _ := newTestService(nil)

	err := svc.RequestOTP(context.Background(), "not-an-email")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Empty(t, otpRepo.stored)
}

func TestValidateOTPIssuesTokenAndConsumesCode(t *testing.T) {
	svc, otpRepo, _ := newTestService(map[string]domain.User{
		"asha@example.com": {Email: "asha@example.com", Name: "Asha", ProfileIcon: "icons/asha.png"},
	})

	sealed, err := svc.seal("asha@example.com", 654321)
	require.NoError(t, err)
	otpRepo.stored["asha@example.com"] = sealed

	result, err := svc.ValidateOTP(context.Background(), "asha@example.com", "654321")
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.NotEmpty(t, result.AccessToken)
	require.Equal(t, "Asha", result.Name)
	require.Equal(t, "icons/asha.png", result.ProfileIcon)

	claims, err := utils.ParseJWT(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", claims.Email)
	require.Equal(t, "Asha", claims.Name)

	require.Equal(t, []string{"asha@example.com"}, otpRepo.deleted)
	require.Equal(t, result.AccessToken, otpRepo.tokens["asha@example.com"])
}

func TestValidateOTPWrongCode(t *testing.T) {
	svc, otpRepo, _ := newTestService(nil)

	sealed, err := svc.seal("asha@example.com", 654321)
	require.NoError(t, err)
	otpRepo.stored["asha@example.com"] = sealed

	result, err := svc.ValidateOTP(context.Background(), "asha@example.com", "111111")
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Empty(t, result.AccessToken)
	require.Empty(t, otpRepo.deleted)
}

func TestValidateOTPNoPendingCode(t *testing.T) {
	svc, _, _ := newTestService(nil)

	result, err := svc.ValidateOTP(context.Background(), "asha@example.com", "654321")
	require.NoError(t, err)
	require.False(t, result.IsValid)
}

func TestValidateOTPNonNumericCode(t *testing.T) {
	svc, otpRepo, _ := newTestService(nil)

	sealed, err := svc.seal("asha@example.com", 654321)
	require.NoError(t, err)
	otpRepo.stored["asha@example.com"] = sealed

	result, err := svc.ValidateOTP(context.Background(), "asha@example.com", "abc123")
	require.NoError(t, err)
	require.False(t, result.IsValid)
}

func TestValidateOTPWithoutProfileStillLogsIn(t *testing.T) {
	svc, otpRepo, _ := newTestService(nil)

	sealed, err := svc.seal("new@example.com", 222333)
	require.NoError(t, err)
	otpRepo.stored["new@example.com"] = sealed

	result, err := svc.ValidateOTP(context.Background(), "new@example.com", "222333")
	require.NoError(t, err)
	require.True(t, result.IsValid)
	require.NotEmpty(t, result.AccessToken)
	require.Empty(t, result.Name)
	require.Empty(t, result.ProfileIcon)
}
