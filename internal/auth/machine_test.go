package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/sellerctl/internal/api"
	"github.com/vendora/sellerctl/internal/models"
	"github.com/vendora/sellerctl/internal/session"
)

type fakeTransport struct {
	loginFn     func(email, password string) (*api.LoginResult, error)
	twoFactorFn func(loginSessionID, code string) (*models.SellerIdentity, error)
	sendOTPFn   func(loginID string) error
	verifyOTPFn func(loginID, otp string) (*models.SellerIdentity, error)
	registerFn  func(reg models.Registration) (*api.RegisterResult, error)

	loginCalls     int
	twoFactorCalls int
	sendOTPCalls   int
	verifyOTPCalls int
	registerCalls  int
}

func (f *fakeTransport) Login(_ context.Context, email, password string) (*api.LoginResult, error) {
	f.loginCalls++
	if f.loginFn == nil {
		return nil, errors.New("unexpected Login call")
	}
	return f.loginFn(email, password)
}

func (f *fakeTransport) LoginTwoFactor(_ context.Context, loginSessionID, code string) (*models.SellerIdentity, error) {
	f.twoFactorCalls++
	if f.twoFactorFn == nil {
		return nil, errors.New("unexpected LoginTwoFactor call")
	}
	return f.twoFactorFn(loginSessionID, code)
}

func (f *fakeTransport) SendOTP(_ context.Context, loginID string) error {
	f.sendOTPCalls++
	if f.sendOTPFn == nil {
		return errors.New("unexpected SendOTP call")
	}
	return f.sendOTPFn(loginID)
}

func (f *fakeTransport) VerifyOTP(_ context.Context, loginID, otp, _ string) (*models.SellerIdentity, error) {
	f.verifyOTPCalls++
	if f.verifyOTPFn == nil {
		return nil, errors.New("unexpected VerifyOTP call")
	}
	return f.verifyOTPFn(loginID, otp)
}

func (f *fakeTransport) Register(_ context.Context, reg models.Registration) (*api.RegisterResult, error) {
	f.registerCalls++
	if f.registerFn == nil {
		return nil, errors.New("unexpected Register call")
	}
	return f.registerFn(reg)
}

func validSeller() *models.SellerIdentity {
	return &models.SellerIdentity{
		ID:       "s-1",
		Name:     "Ama Mensah",
		Email:    "ama@example.com",
		Role:     models.RoleSeller,
		ShopName: "Ama Crafts",
	}
}

func newTestNegotiation(t *testing.T, transport *fakeTransport) (*Negotiation, *session.Store) {
	t.Helper()
	store := session.NewStore(nil, nil)
	return NewNegotiation(transport, store, nil), store
}

func TestPasswordLoginWithoutTwoFactor(t *testing.T) {
	transport := &fakeTransport{
		loginFn: func(email, password string) (*api.LoginResult, error) {
			return &api.LoginResult{Authenticated: true, Seller: validSeller()}, nil
		},
	}
	neg, store := newTestNegotiation(t, transport)

	outcome, err := neg.SubmitCredentials(context.Background(), "ama@example.com", "secret-password")
	require.NoError(t, err)

	assert.Equal(t, OutcomeAuthenticated, outcome)
	assert.Equal(t, StepAuthenticated, neg.Step())

	cached := store.Cached()
	require.NotNil(t, cached)
	assert.Equal(t, "ama@example.com", cached.Email)
}

func TestPasswordLoginWithTwoFactor(t *testing.T) {
	transport := &fakeTransport{
		loginFn: func(email, password string) (*api.LoginResult, error) {
			return &api.LoginResult{Requires2FA: true, LoginSessionID: "abc"}, nil
		},
		twoFactorFn: func(loginSessionID, code string) (*models.SellerIdentity, error) {
			assert.Equal(t, "abc", loginSessionID)
			assert.Equal(t, "123456", code)
			return validSeller(), nil
		},
	}
	neg, store := newTestNegotiation(t, transport)
	ctx := context.Background()

	outcome, err := neg.SubmitCredentials(ctx, "ama@example.com", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTwoFactorRequired, outcome)
	assert.Equal(t, StepTwoFactor, neg.Step())

	outcome, err = neg.SubmitCode(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAuthenticated, outcome)
	assert.NotNil(t, store.Cached())
}

func TestNonSellerRoleNeverAuthenticates(t *testing.T) {
	admin := validSeller()
	admin.Role = "admin"

	transport := &fakeTransport{
		loginFn: func(email, password string) (*api.LoginResult, error) {
			return &api.LoginResult{Authenticated: true, Seller: admin}, nil
		},
	}
	neg, store := newTestNegotiation(t, transport)

	_, err := neg.SubmitCredentials(context.Background(), "ama@example.com", "secret-password")
	require.Error(t, err)

	assert.NotEqual(t, StepAuthenticated, neg.Step())
	assert.Nil(t, store.Cached())
}

func TestShortCodeMakesNoNetworkCall(t *testing.T) {
	transport := &fakeTransport{
		loginFn: func(email, password string) (*api.LoginResult, error) {
			return &api.LoginResult{Requires2FA: true, LoginSessionID: "abc"}, nil
		},
	}
	neg, _ := newTestNegotiation(t, transport)
	ctx := context.Background()

	_, err := neg.SubmitCredentials(ctx, "ama@example.com", "secret-password")
	require.NoError(t, err)

	for _, code := range []string{"", "123", "12345", "1234567", "12345a"} {
		_, err := neg.SubmitCode(ctx, code)
		require.Error(t, err, "code %q should be rejected", code)
	}

	assert.Zero(t, transport.twoFactorCalls)
	assert.Equal(t, StepTwoFactor, neg.Step())
}

func TestFailedCodeRetainsCorrelationToken(t *testing.T) {
	calls := 0
	transport := &fakeTransport{
		loginFn: func(email, password string) (*api.LoginResult, error) {
			return &api.LoginResult{Requires2FA: true, LoginSessionID: "abc"}, nil
		},
		twoFactorFn: func(loginSessionID, code string) (*models.SellerIdentity, error) {
			calls++
			if calls == 1 {
				return nil, api.NewAPIError(401, "invalid code", "")
			}
			assert.Equal(t, "abc", loginSessionID)
			return validSeller(), nil
		},
	}
	neg, _ := newTestNegotiation(t, transport)
	ctx := context.Background()

	_, err := neg.SubmitCredentials(ctx, "ama@example.com", "secret-password")
	require.NoError(t, err)

	_, err = neg.SubmitCode(ctx, "000000")
	require.Error(t, err)
	assert.Equal(t, StepTwoFactor, neg.Step())

	outcome, err := neg.SubmitCode(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAuthenticated, outcome)
}

func TestMissingTwoFactorContextFallsBackToCredentials(t *testing.T) {
	transport := &fakeTransport{
		loginFn: func(email, password string) (*api.LoginResult, error) {
			return &api.LoginResult{Requires2FA: true, LoginSessionID: "abc"}, nil
		},
	}
	neg, _ := newTestNegotiation(t, transport)
	ctx := context.Background()

	_, err := neg.SubmitCredentials(ctx, "ama@example.com", "secret-password")
	require.NoError(t, err)

	// Simulate a lost correlation token, e.g. an expired step.
	neg.mu.Lock()
	neg.loginSessionID = ""
	neg.mu.Unlock()

	_, err = neg.SubmitCode(ctx, "123456")
	require.Error(t, err)
	assert.Equal(t, StepCredentials, neg.Step())
	assert.Zero(t, transport.twoFactorCalls)
}

func TestSwitchMethodResetsEverything(t *testing.T) {
	transport := &fakeTransport{
		loginFn: func(email, password string) (*api.LoginResult, error) {
			return &api.LoginResult{Requires2FA: true, LoginSessionID: "abc"}, nil
		},
	}
	neg, _ := newTestNegotiation(t, transport)

	_, err := neg.SubmitCredentials(context.Background(), "ama@example.com", "secret-password")
	require.NoError(t, err)
	require.Equal(t, StepTwoFactor, neg.Step())

	neg.SwitchMethod(MethodOTP)

	assert.Equal(t, StepCredentials, neg.Step())
	assert.Equal(t, MethodOTP, neg.Method())
	assert.Zero(t, neg.Cooldown())
	neg.mu.Lock()
	assert.Empty(t, neg.loginSessionID)
	assert.Empty(t, neg.loginID)
	neg.mu.Unlock()

	// Switching again is an idempotent reset.
	neg.SwitchMethod(MethodOTP)
	assert.Equal(t, StepCredentials, neg.Step())
}

func TestStaleResponseDiscardedAfterSwitch(t *testing.T) {
	var neg *Negotiation
	transport := &fakeTransport{}
	transport.loginFn = func(email, password string) (*api.LoginResult, error) {
		// The user abandons the attempt while this call is in flight.
		neg.SwitchMethod(MethodOTP)
		return &api.LoginResult{Authenticated: true, Seller: validSeller()}, nil
	}

	store := session.NewStore(nil, nil)
	neg = NewNegotiation(transport, store, nil)

	_, err := neg.SubmitCredentials(context.Background(), "ama@example.com", "secret-password")
	require.ErrorIs(t, err, ErrStale)

	assert.Equal(t, StepCredentials, neg.Step())
	assert.Nil(t, store.Cached())
}

func TestOTPFlow(t *testing.T) {
	transport := &fakeTransport{
		sendOTPFn: func(loginID string) error {
			assert.Equal(t, "ama@example.com", loginID)
			return nil
		},
		verifyOTPFn: func(loginID, otp string) (*models.SellerIdentity, error) {
			assert.Equal(t, "654321", otp)
			return validSeller(), nil
		},
	}
	neg, store := newTestNegotiation(t, transport)
	neg.SwitchMethod(MethodOTP)
	ctx := context.Background()

	outcome, err := neg.StartOTP(ctx, "ama@example.com")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCodeSent, outcome)
	assert.Equal(t, StepOtpVerify, neg.Step())
	assert.Equal(t, 120, neg.Cooldown())

	outcome, err = neg.SubmitCode(ctx, "654321")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAuthenticated, outcome)
	assert.NotNil(t, store.Cached())
}

func TestResendGatedByCooldown(t *testing.T) {
	transport := &fakeTransport{
		sendOTPFn: func(loginID string) error { return nil },
	}
	neg, _ := newTestNegotiation(t, transport)
	neg.SwitchMethod(MethodOTP)

	base := time.Now()
	neg.now = func() time.Time { return base }

	_, err := neg.StartOTP(context.Background(), "ama@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, transport.sendOTPCalls)

	assert.False(t, neg.CanResend())
	err = neg.Resend(context.Background())
	require.ErrorIs(t, err, ErrCooldownActive)
	assert.Equal(t, 1, transport.sendOTPCalls)

	// Partway through, still gated.
	neg.now = func() time.Time { return base.Add(60 * time.Second) }
	assert.Equal(t, 60, neg.Cooldown())
	assert.False(t, neg.CanResend())

	// Cooldown elapsed: resend works and re-arms the cooldown.
	neg.now = func() time.Time { return base.Add(120 * time.Second) }
	assert.True(t, neg.CanResend())
	require.NoError(t, neg.Resend(context.Background()))
	assert.Equal(t, 2, transport.sendOTPCalls)
	assert.Equal(t, 120, neg.Cooldown())
}

func TestBackDiscardsCorrelationToken(t *testing.T) {
	transport := &fakeTransport{
		loginFn: func(email, password string) (*api.LoginResult, error) {
			return &api.LoginResult{Requires2FA: true, LoginSessionID: "abc"}, nil
		},
	}
	neg, _ := newTestNegotiation(t, transport)

	_, err := neg.SubmitCredentials(context.Background(), "ama@example.com", "secret-password")
	require.NoError(t, err)

	neg.Back()

	assert.Equal(t, StepCredentials, neg.Step())
	neg.mu.Lock()
	assert.Empty(t, neg.loginSessionID)
	neg.mu.Unlock()
}

func TestRegisterRequiringVerificationCreatesNoSession(t *testing.T) {
	transport := &fakeTransport{
		registerFn: func(reg models.Registration) (*api.RegisterResult, error) {
			return &api.RegisterResult{RequiresVerification: true}, nil
		},
	}
	neg, store := newTestNegotiation(t, transport)

	outcome, err := neg.Register(context.Background(), models.Registration{
		Name:     "Ama Mensah",
		Email:    "ama@example.com",
		Password: "secret-password",
		ShopName: "Ama Crafts",
	})
	require.NoError(t, err)

	assert.True(t, outcome.RequiresVerification)
	assert.Nil(t, store.Cached())
	assert.NotEqual(t, StepAuthenticated, neg.Step())
}

func TestRegisterWithoutVerificationAuthenticates(t *testing.T) {
	transport := &fakeTransport{
		registerFn: func(reg models.Registration) (*api.RegisterResult, error) {
			return &api.RegisterResult{Seller: validSeller()}, nil
		},
	}
	neg, store := newTestNegotiation(t, transport)

	outcome, err := neg.Register(context.Background(), models.Registration{
		Name:     "Ama Mensah",
		Email:    "ama@example.com",
		Password: "secret-password",
		ShopName: "Ama Crafts",
	})
	require.NoError(t, err)

	assert.False(t, outcome.RequiresVerification)
	assert.NotNil(t, store.Cached())
	assert.Equal(t, StepAuthenticated, neg.Step())
}

func TestRegisterValidatesBeforeNetwork(t *testing.T) {
	transport := &fakeTransport{}
	neg, _ := newTestNegotiation(t, transport)

	_, err := neg.Register(context.Background(), models.Registration{
		Name:     "Ama Mensah",
		Email:    "not-an-email",
		Password: "secret-password",
		ShopName: "Ama Crafts",
	})
	require.Error(t, err)
	assert.Zero(t, transport.registerCalls)
}

func TestInvalidCredentialsValidatedBeforeNetwork(t *testing.T) {
	transport := &fakeTransport{}
	neg, _ := newTestNegotiation(t, transport)
	ctx := context.Background()

	_, err := neg.SubmitCredentials(ctx, "bad-email", "secret-password")
	require.Error(t, err)

	_, err = neg.SubmitCredentials(ctx, "ama@example.com", "short")
	require.Error(t, err)

	assert.Zero(t, transport.loginCalls)
}
