package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// CredentialUseCase describes the account credential lifecycle: signup,
// login, OTP verification and resend, and the forgot/reset password flow.
type CredentialUseCase interface {
	Signup(ctx context.Context, email, password, name string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	VerifyOtp(ctx context.Context, userID uuid.UUID, code string) (SanitizedUser, error)
	ResendOtp(ctx context.Context, userID uuid.UUID) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, userID uuid.UUID, token, newPassword string) error
	CheckAuth(ctx context.Context, userID uuid.UUID) (SanitizedUser, error)
}

// AuthResult bundles the sanitized user with a freshly signed session credential.
type AuthResult struct {
	User  SanitizedUser
	Token string
}

// ServiceOptions carries the tunables the credential service needs beyond its
// collaborators. Constructed once at startup from config; no ambient lookups.
type ServiceOptions struct {
	OtpTTL       time.Duration
	ResetTTL     time.Duration
	ResetOrigin  string        // base URL embedded in reset links
	StoreTimeout time.Duration // per-operation budget for store/notifier calls
}

type credentialService struct {
	users  UserRepository
	otps   OtpRepository
	resets PasswordResetRepository
	hasher SecretHasher
	tokens TokenGenerator
	codes  CodeGenerator
	mail   Notifier
	opts   ServiceOptions
}

// NewCredentialService returns the default implementation of CredentialUseCase.
func NewCredentialService(
	users UserRepository,
	otps OtpRepository,
	resets PasswordResetRepository,
	hasher SecretHasher,
	tokens TokenGenerator,
	codes CodeGenerator,
	mail Notifier,
	opts ServiceOptions,
) CredentialUseCase {
	return &credentialService{
		users:  users,
		otps:   otps,
		resets: resets,
		hasher: hasher,
		tokens: tokens,
		codes:  codes,
		mail:   mail,
		opts:   opts,
	}
}

// opCtx scopes one operation's store/notifier calls to a single deadline.
func (s *credentialService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// storeErr surfaces dependency deadlines as ErrUnavailable so callers can
// retry instead of treating them as internal failures.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}
	return err
}

func (s *credentialService) Signup(ctx context.Context, email, password, name string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return AuthResult{}, storeErr(err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, err
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, storeErr(err)
	}

	// First verification code goes out right away. Delivery is best-effort:
	// the account already exists, the client can always ask for a resend.
	if err := s.issueOtp(ctx, user); err != nil {
		log.Printf("signup: initial otp for %s not delivered: %v", user.ID, err)
	}

	token, err := s.tokens.Generate(ctx, user, false)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user.Sanitize(), Token: token}, nil
}

func (s *credentialService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Same failure as a wrong password: no account enumeration.
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, storeErr(err)
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("verify password hash: %w", err)
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user, false)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user.Sanitize(), Token: token}, nil
}

func (s *credentialService) VerifyOtp(ctx context.Context, userID uuid.UUID, code string) (SanitizedUser, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return SanitizedUser{}, storeErr(err)
	}
	rec, err := s.otps.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SanitizedUser{}, ErrNoActiveOtp
		}
		return SanitizedUser{}, storeErr(err)
	}
	if rec.Expired(time.Now().UTC()) {
		// Expired records are purged on sight; they are never reusable.
		if _, err := s.otps.DeleteByUser(ctx, userID); err != nil {
			return SanitizedUser{}, storeErr(err)
		}
		return SanitizedUser{}, ErrOtpExpired
	}
	ok, err := s.hasher.Verify(code, rec.CodeHash)
	if err != nil {
		return SanitizedUser{}, fmt.Errorf("verify otp hash: %w", err)
	}
	if !ok {
		// Record stays; the user may retry until the TTL runs out.
		return SanitizedUser{}, ErrInvalidOtp
	}
	deleted, err := s.otps.DeleteByUser(ctx, userID)
	if err != nil {
		return SanitizedUser{}, storeErr(err)
	}
	if !deleted {
		// Another request consumed the code between our read and delete.
		return SanitizedUser{}, ErrNoActiveOtp
	}
	user, err := s.users.SetVerified(ctx, userID)
	if err != nil {
		return SanitizedUser{}, storeErr(err)
	}
	return user.Sanitize(), nil
}

func (s *credentialService) ResendOtp(ctx context.Context, userID uuid.UUID) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeErr(err)
	}
	return s.issueOtp(ctx, user)
}

// issueOtp generates a fresh code, atomically replaces any outstanding record
// for the user, and mails the plaintext code. Only the bcrypt digest is stored.
func (s *credentialService) issueOtp(ctx context.Context, user User) error {
	code, err := s.codes.NewCode()
	if err != nil {
		return err
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return err
	}
	rec := OtpRecord{
		UserID:    user.ID,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().UTC().Add(s.opts.OtpTTL),
	}
	if err := s.otps.Upsert(ctx, rec); err != nil {
		return storeErr(err)
	}
	body := fmt.Sprintf(
		"Your one-time password (OTP) for account verification is: <b>%s</b>.<br/>Do not share this OTP with anyone for security reasons.",
		code,
	)
	if err := s.mail.Send(ctx, user.Email, "OTP Verification for your account", body); err != nil {
		// The record is already persisted and stays valid until its TTL;
		// a resend simply replaces it.
		return storeErr(fmt.Errorf("send otp mail: %w", err))
	}
	return nil
}

func (s *credentialService) ForgotPassword(ctx context.Context, email string) (string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", storeErr(err)
	}

	// Signed, extended-lifetime token; only its digest is persisted.
	token, err := s.tokens.Generate(ctx, user, true)
	if err != nil {
		return "", err
	}
	tokenHash, err := s.hasher.Hash(token)
	if err != nil {
		return "", err
	}
	rec := PasswordResetRecord{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().UTC().Add(s.opts.ResetTTL),
	}
	if err := s.resets.Upsert(ctx, rec); err != nil {
		return "", storeErr(err)
	}

	link := fmt.Sprintf("%s/reset-password/%s/%s", s.opts.ResetOrigin, user.ID, token)
	body := fmt.Sprintf(
		"<p>Dear %s, we received a request to reset the password for your account. If you initiated this request, please use the following link to reset your password:</p>"+
			"<p><a href=%q target=\"_blank\">Reset Password</a></p>"+
			"<p>This link is valid for a limited time. If you did not request a password reset, please ignore this email.</p>",
		user.Name, link,
	)
	if err := s.mail.Send(ctx, user.Email, "Password Reset Link for your account", body); err != nil {
		return "", storeErr(fmt.Errorf("send reset mail: %w", err))
	}
	return user.Email, nil
}

func (s *credentialService) ResetPassword(ctx context.Context, userID uuid.UUID, token, newPassword string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return storeErr(err)
	}
	rec, err := s.resets.GetByUser(ctx, userID)
	if err != nil {
		return storeErr(err)
	}
	if rec.Expired(time.Now().UTC()) {
		if _, err := s.resets.DeleteByUser(ctx, userID); err != nil {
			return storeErr(err)
		}
		return ErrResetTokenExpired
	}
	ok, err := s.hasher.Verify(token, rec.TokenHash)
	if err != nil {
		return fmt.Errorf("verify reset token hash: %w", err)
	}
	if !ok {
		// Record survives for retries until the TTL.
		return ErrInvalidResetToken
	}
	deleted, err := s.resets.DeleteByUser(ctx, userID)
	if err != nil {
		return storeErr(err)
	}
	if !deleted {
		return ErrNotFound
	}
	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, userID, passwordHash); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *credentialService) CheckAuth(ctx context.Context, userID uuid.UUID) (SanitizedUser, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return SanitizedUser{}, storeErr(err)
	}
	return user.Sanitize(), nil
}
