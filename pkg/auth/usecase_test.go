package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkrasnov87/shoply/pkg/security/hash"
)

// --- in-memory fakes ---

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]User
}

func newMemUsers() *memUsers { return &memUsers{users: map[uuid.UUID]User{}} }

func (m *memUsers) Create(ctx context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrUserAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Update(ctx context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[user.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	stored.Name = user.Name
	stored.IsAdmin = user.IsAdmin
	m.users[user.ID] = stored
	return stored, nil
}

func (m *memUsers) SetVerified(ctx context.Context, id uuid.UUID) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.IsVerified = true
	m.users[id] = u
	return u, nil
}

func (m *memUsers) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

type memOtps struct {
	mu   sync.Mutex
	recs map[uuid.UUID]OtpRecord
}

func newMemOtps() *memOtps { return &memOtps{recs: map[uuid.UUID]OtpRecord{}} }

func (m *memOtps) Upsert(ctx context.Context, rec OtpRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.UserID] = rec
	return nil
}

func (m *memOtps) GetByUser(ctx context.Context, userID uuid.UUID) (OtpRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[userID]
	if !ok {
		return OtpRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *memOtps) DeleteByUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.recs[userID]
	delete(m.recs, userID)
	return ok, nil
}

type memResets struct {
	mu   sync.Mutex
	recs map[uuid.UUID]PasswordResetRecord
}

func newMemResets() *memResets { return &memResets{recs: map[uuid.UUID]PasswordResetRecord{}} }

func (m *memResets) Upsert(ctx context.Context, rec PasswordResetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.UserID] = rec
	return nil
}

func (m *memResets) GetByUser(ctx context.Context, userID uuid.UUID) (PasswordResetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[userID]
	if !ok {
		return PasswordResetRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *memResets) DeleteByUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.recs[userID]
	delete(m.recs, userID)
	return ok, nil
}

type fakeTokens struct{ n int }

func (f *fakeTokens) Generate(ctx context.Context, user User, extended bool) (string, error) {
	f.n++
	if extended {
		return "reset-token-" + user.ID.String(), nil
	}
	return "session-token-" + user.ID.String(), nil
}

type fakeCodes struct{ code string }

func (f *fakeCodes) NewCode() (string, error) { return f.code, nil }

type captureNotifier struct {
	mu    sync.Mutex
	sends []struct{ To, Subject, Body string }
}

func (n *captureNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, struct{ To, Subject, Body string }{to, subject, body})
	return nil
}

func (n *captureNotifier) last(t *testing.T) struct{ To, Subject, Body string } {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sends, "expected at least one mail")
	return n.sends[len(n.sends)-1]
}

type env struct {
	users  *memUsers
	otps   *memOtps
	resets *memResets
	tokens *fakeTokens
	codes  *fakeCodes
	mail   *captureNotifier
	svc    CredentialUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		users:  newMemUsers(),
		otps:   newMemOtps(),
		resets: newMemResets(),
		tokens: &fakeTokens{},
		codes:  &fakeCodes{code: "4821"},
		mail:   &captureNotifier{},
	}
	e.svc = NewCredentialService(e.users, e.otps, e.resets, hash.New(4), e.tokens, e.codes, e.mail, ServiceOptions{
		OtpTTL:      time.Minute,
		ResetTTL:    time.Hour,
		ResetOrigin: "http://localhost:3000",
	})
	return e
}

func (e *env) signup(t *testing.T, email, password string) AuthResult {
	t.Helper()
	res, err := e.svc.Signup(context.Background(), email, password, "Test User")
	require.NoError(t, err)
	return res
}

// --- tests ---

func TestSignup(t *testing.T) {
	e := newEnv(t)

	res := e.signup(t, "a@x.com", "pw1")
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.False(t, res.User.IsVerified)
	assert.NotEmpty(t, res.Token)

	// the stored password is a hash, never the plaintext
	stored, err := e.users.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "pw1")

	// first OTP went out with the plaintext code, record holds only a hash
	mail := e.mail.last(t)
	assert.Equal(t, "a@x.com", mail.To)
	assert.Contains(t, mail.Body, "4821")
	rec, err := e.otps.GetByUser(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.NotContains(t, rec.CodeHash, "4821")
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "a@x.com", "pw1")

	_, err := e.svc.Signup(context.Background(), "a@x.com", "pw2", "Other")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	e.users.mu.Lock()
	assert.Len(t, e.users.users, 1)
	e.users.mu.Unlock()
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "a@x.com", "pw1")

	res, err := e.svc.Login(context.Background(), "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "a@x.com", res.User.Email)

	// wrong password and unknown email fail identically
	_, err = e.svc.Login(context.Background(), "a@x.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.svc.Login(context.Background(), "ghost@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResendOtpReplacesActiveRecord(t *testing.T) {
	e := newEnv(t)
	res := e.signup(t, "a@x.com", "pw1")
	ctx := context.Background()

	e.codes.code = "1111"
	require.NoError(t, e.svc.ResendOtp(ctx, res.User.ID))
	e.codes.code = "2222"
	require.NoError(t, e.svc.ResendOtp(ctx, res.User.ID))

	e.otps.mu.Lock()
	assert.Len(t, e.otps.recs, 1)
	e.otps.mu.Unlock()

	// the replaced code no longer verifies, the fresh one does
	_, err := e.svc.VerifyOtp(ctx, res.User.ID, "1111")
	assert.ErrorIs(t, err, ErrInvalidOtp)
	user, err := e.svc.VerifyOtp(ctx, res.User.ID, "2222")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
}

func TestResendOtpUnknownUser(t *testing.T) {
	e := newEnv(t)
	err := e.svc.ResendOtp(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyOtpSingleUse(t *testing.T) {
	e := newEnv(t)
	res := e.signup(t, "a@x.com", "pw1")
	ctx := context.Background()

	// wrong code keeps the record for a retry
	_, err := e.svc.VerifyOtp(ctx, res.User.ID, "0000")
	assert.ErrorIs(t, err, ErrInvalidOtp)
	_, err = e.otps.GetByUser(ctx, res.User.ID)
	require.NoError(t, err)

	user, err := e.svc.VerifyOtp(ctx, res.User.ID, "4821")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)

	// consumed: the same code cannot be redeemed twice
	_, err = e.svc.VerifyOtp(ctx, res.User.ID, "4821")
	assert.ErrorIs(t, err, ErrNoActiveOtp)
}

func TestVerifyOtpExpired(t *testing.T) {
	e := newEnv(t)
	res := e.signup(t, "a@x.com", "pw1")
	ctx := context.Background()

	rec, err := e.otps.GetByUser(ctx, res.User.ID)
	require.NoError(t, err)
	rec.ExpiresAt = time.Now().UTC().Add(-time.Second)
	require.NoError(t, e.otps.Upsert(ctx, rec))

	_, err = e.svc.VerifyOtp(ctx, res.User.ID, "4821")
	assert.ErrorIs(t, err, ErrOtpExpired)

	// expired record is purged on sight
	_, err = e.otps.GetByUser(ctx, res.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyOtpUnknownUser(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.VerifyOtp(context.Background(), uuid.New(), "4821")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForgotPassword(t *testing.T) {
	e := newEnv(t)
	res := e.signup(t, "a@x.com", "pw1")
	ctx := context.Background()

	email, err := e.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	// mail carries the plaintext token inside the reset link
	mail := e.mail.last(t)
	assert.Contains(t, mail.Body, "reset-token-"+res.User.ID.String())
	assert.Contains(t, mail.Body, "http://localhost:3000/reset-password/")

	// record stores only the digest
	rec, err := e.resets.GetByUser(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotContains(t, rec.TokenHash, "reset-token-")

	_, err = e.svc.ForgotPassword(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	e := newEnv(t)
	res := e.signup(t, "a@x.com", "pw1")
	ctx := context.Background()

	_, err := e.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	token := "reset-token-" + res.User.ID.String()

	// a mismatched token keeps the record for another try
	err = e.svc.ResetPassword(ctx, res.User.ID, "bogus", "pw2")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	_, err = e.resets.GetByUser(ctx, res.User.ID)
	require.NoError(t, err)

	require.NoError(t, e.svc.ResetPassword(ctx, res.User.ID, token, "pw2"))

	// record consumed, old password dead, new one live
	_, err = e.resets.GetByUser(ctx, res.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.svc.Login(ctx, "a@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.svc.Login(ctx, "a@x.com", "pw2")
	assert.NoError(t, err)

	// the token cannot be redeemed twice
	err = e.svc.ResetPassword(ctx, res.User.ID, token, "pw3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPasswordExpired(t *testing.T) {
	e := newEnv(t)
	res := e.signup(t, "a@x.com", "pw1")
	ctx := context.Background()

	_, err := e.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	rec, err := e.resets.GetByUser(ctx, res.User.ID)
	require.NoError(t, err)
	rec.ExpiresAt = time.Now().UTC().Add(-time.Second)
	require.NoError(t, e.resets.Upsert(ctx, rec))

	err = e.svc.ResetPassword(ctx, res.User.ID, "reset-token-"+res.User.ID.String(), "pw2")
	assert.ErrorIs(t, err, ErrResetTokenExpired)
	_, err = e.resets.GetByUser(ctx, res.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckAuth(t *testing.T) {
	e := newEnv(t)
	res := e.signup(t, "a@x.com", "pw1")

	user, err := e.svc.CheckAuth(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = e.svc.CheckAuth(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

// Full happy-path walk: signup, duplicate conflict, login, resend, bad code,
// good code.
func TestSignupVerifyScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res := e.signup(t, "a@x.com", "pw1")

	_, err := e.svc.Signup(ctx, "a@x.com", "pw2", "Imposter")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	login, err := e.svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	e.codes.code = "7777"
	require.NoError(t, e.svc.ResendOtp(ctx, res.User.ID))

	_, err = e.svc.VerifyOtp(ctx, res.User.ID, "0000")
	assert.ErrorIs(t, err, ErrInvalidOtp)
	_, err = e.otps.GetByUser(ctx, res.User.ID)
	require.NoError(t, err, "record must survive a mismatch")

	verified, err := e.svc.VerifyOtp(ctx, res.User.ID, "7777")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	_, err = e.otps.GetByUser(ctx, res.User.ID)
	assert.ErrorIs(t, err, ErrNotFound, "record must be gone after consumption")
}
