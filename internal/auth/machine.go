package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendora/sellerctl/internal/api"
	"github.com/vendora/sellerctl/internal/models"
	"github.com/vendora/sellerctl/internal/utils"
)

// Step is the current position in the login negotiation
type Step int

const (
	StepCredentials Step = iota
	StepTwoFactor
	StepOtpVerify
	StepAuthenticated
)

// String returns the step name
func (s Step) String() string {
	switch s {
	case StepCredentials:
		return "credentials"
	case StepTwoFactor:
		return "two_factor"
	case StepOtpVerify:
		return "otp_verify"
	case StepAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Method is the login method driving the negotiation
type Method int

const (
	MethodPassword Method = iota
	MethodOTP
)

// ResendCooldown is how long the resend action stays disabled after a
// one-time code has been sent.
const ResendCooldown = 120 * time.Second

// ErrStale marks a response that resolved after the negotiation had
// already moved on. Its effect is discarded; callers should ignore it.
var ErrStale = errors.New("response no longer relevant")

// ErrCooldownActive is returned when resend is requested too early
var ErrCooldownActive = errors.New("resend not available yet")

// Outcome describes what a successful submission produced
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeAuthenticated
	OutcomeTwoFactorRequired
	OutcomeCodeSent
)

// RegisterOutcome is the result of the registration sub-protocol
type RegisterOutcome struct {
	// RequiresVerification means the seller must confirm their email
	// before logging in; no session was established.
	RequiresVerification bool
	Seller               *models.SellerIdentity
}

// Transport is the slice of the API client the negotiation drives
type Transport interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	LoginTwoFactor(ctx context.Context, loginSessionID, code string) (*models.SellerIdentity, error)
	SendOTP(ctx context.Context, loginID string) error
	VerifyOTP(ctx context.Context, loginID, otp, password string) (*models.SellerIdentity, error)
	Register(ctx context.Context, reg models.Registration) (*api.RegisterResult, error)
}

// SessionWriter receives the identity once the negotiation completes
type SessionWriter interface {
	Set(identity *models.SellerIdentity) error
}

// Negotiation drives one multi-step login attempt. It is created fresh
// per attempt and discarded once authenticated or abandoned.
//
// Every submission captures the current attempt id before the network
// call and re-checks it before applying the result, so a response that
// arrives after the user has cancelled or switched methods is discarded
// instead of being applied to a now-irrelevant state.
type Negotiation struct {
	mu      sync.Mutex
	step    Step
	method  Method
	attempt uuid.UUID

	// Correlation context for the second step. Credentials are never
	// retained; only these two fields survive a failed retry.
	loginSessionID string
	loginID        string

	resendDeadline time.Time

	transport Transport
	sessions  SessionWriter
	log       *zap.Logger
	now       func() time.Time
}

// NewNegotiation starts a fresh negotiation at the credentials step
func NewNegotiation(transport Transport, sessions SessionWriter, log *zap.Logger) *Negotiation {
	if log == nil {
		log = zap.NewNop()
	}
	return &Negotiation{
		step:      StepCredentials,
		method:    MethodPassword,
		attempt:   uuid.New(),
		transport: transport,
		sessions:  sessions,
		log:       log,
		now:       time.Now,
	}
}

// Step returns the current negotiation step
func (n *Negotiation) Step() Step {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.step
}

// Method returns the active login method
func (n *Negotiation) Method() Method {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.method
}

// Cooldown returns the seconds remaining before resend is allowed
func (n *Negotiation) Cooldown() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cooldownLocked()
}

func (n *Negotiation) cooldownLocked() int {
	d := n.resendDeadline.Sub(n.now())
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// CanResend reports whether the resend action is currently enabled
func (n *Negotiation) CanResend() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.step == StepOtpVerify && n.cooldownLocked() == 0
}

// SubmitCredentials runs the password-login step. Inputs are validated
// before any network call is made.
func (n *Negotiation) SubmitCredentials(ctx context.Context, email, password string) (Outcome, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return OutcomeNone, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return OutcomeNone, err
	}

	n.mu.Lock()
	if n.step != StepCredentials || n.method != MethodPassword {
		n.mu.Unlock()
		return OutcomeNone, fmt.Errorf("not at the password credentials step")
	}
	attempt := n.attempt
	n.mu.Unlock()

	result, err := n.transport.Login(ctx, email, password)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.attempt != attempt {
		return OutcomeNone, ErrStale
	}
	if err != nil {
		// Remain at the credentials step so the user can retry.
		return OutcomeNone, err
	}

	if result.Requires2FA {
		n.step = StepTwoFactor
		n.loginSessionID = result.LoginSessionID
		n.loginID = email
		n.attempt = uuid.New()
		return OutcomeTwoFactorRequired, nil
	}

	return n.completeLocked(result.Seller)
}

// StartOTP runs the OTP-login entry step: a code is sent to the given
// login id and the negotiation moves to code verification.
func (n *Negotiation) StartOTP(ctx context.Context, loginID string) (Outcome, error) {
	if err := utils.ValidateLoginID(loginID); err != nil {
		return OutcomeNone, err
	}

	n.mu.Lock()
	if n.step != StepCredentials || n.method != MethodOTP {
		n.mu.Unlock()
		return OutcomeNone, fmt.Errorf("not at the OTP entry step")
	}
	attempt := n.attempt
	n.mu.Unlock()

	err := n.transport.SendOTP(ctx, loginID)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.attempt != attempt {
		return OutcomeNone, ErrStale
	}
	if err != nil {
		return OutcomeNone, err
	}

	n.step = StepOtpVerify
	n.loginID = loginID
	n.resendDeadline = n.now().Add(ResendCooldown)
	n.attempt = uuid.New()
	return OutcomeCodeSent, nil
}

// SubmitCode runs the second-factor step, for both the 2FA and the OTP
// paths. A code of the wrong length is rejected without a network call.
func (n *Negotiation) SubmitCode(ctx context.Context, code string) (Outcome, error) {
	if err := utils.ValidateCode(code); err != nil {
		return OutcomeNone, err
	}

	n.mu.Lock()
	step := n.step
	attempt := n.attempt
	loginSessionID := n.loginSessionID
	loginID := n.loginID

	switch step {
	case StepTwoFactor:
		if loginSessionID == "" {
			// Not enough context to complete the step; start over rather
			// than guess.
			n.resetLocked(n.method)
			n.mu.Unlock()
			return OutcomeNone, fmt.Errorf("two-factor session expired, please log in again")
		}
	case StepOtpVerify:
		if loginID == "" {
			n.resetLocked(n.method)
			n.mu.Unlock()
			return OutcomeNone, fmt.Errorf("verification session expired, please log in again")
		}
	default:
		n.mu.Unlock()
		return OutcomeNone, fmt.Errorf("no code is expected right now")
	}
	n.mu.Unlock()

	var seller *models.SellerIdentity
	var err error
	if step == StepTwoFactor {
		seller, err = n.transport.LoginTwoFactor(ctx, loginSessionID, code)
	} else {
		seller, err = n.transport.VerifyOTP(ctx, loginID, code, "")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.attempt != attempt {
		return OutcomeNone, ErrStale
	}
	if err != nil {
		// Stay put; the correlation context is retained for a retry.
		return OutcomeNone, err
	}

	return n.completeLocked(seller)
}

// Resend requests a fresh one-time code. Only allowed at the OTP step
// once the cooldown has elapsed.
func (n *Negotiation) Resend(ctx context.Context) error {
	n.mu.Lock()
	if n.step != StepOtpVerify {
		n.mu.Unlock()
		return fmt.Errorf("nothing to resend at this step")
	}
	if n.cooldownLocked() > 0 {
		n.mu.Unlock()
		return ErrCooldownActive
	}
	attempt := n.attempt
	loginID := n.loginID
	n.mu.Unlock()

	err := n.transport.SendOTP(ctx, loginID)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.attempt != attempt {
		return ErrStale
	}
	if err != nil {
		return err
	}

	n.resendDeadline = n.now().Add(ResendCooldown)
	return nil
}

// Back abandons the second step and returns to credentials entry,
// discarding the correlation token.
func (n *Negotiation) Back() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.step == StepTwoFactor || n.step == StepOtpVerify {
		n.resetLocked(n.method)
	}
}

// SwitchMethod abandons the whole negotiation and restarts at the
// credentials step with the given method. Safe to call at any step.
func (n *Negotiation) SwitchMethod(method Method) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetLocked(method)
}

// Register runs the registration sub-protocol. When the server requires
// email verification no session is established and the caller routes the
// user back to login.
func (n *Negotiation) Register(ctx context.Context, reg models.Registration) (*RegisterOutcome, error) {
	if err := utils.ValidateEmail(reg.Email); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(reg.Password); err != nil {
		return nil, err
	}
	if err := utils.ValidateRequired(reg.Name, "name"); err != nil {
		return nil, err
	}
	if err := utils.ValidateRequired(reg.ShopName, "shop name"); err != nil {
		return nil, err
	}
	if reg.Phone != "" {
		if err := utils.ValidatePhone(reg.Phone); err != nil {
			return nil, err
		}
	}

	result, err := n.transport.Register(ctx, reg)
	if err != nil {
		return nil, err
	}

	if result.RequiresVerification {
		return &RegisterOutcome{RequiresVerification: true}, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := n.completeLocked(result.Seller); err != nil {
		return nil, err
	}
	return &RegisterOutcome{Seller: result.Seller}, nil
}

// completeLocked validates the identity and finishes the negotiation.
// A non-seller identity never authenticates. Callers must hold n.mu.
func (n *Negotiation) completeLocked(seller *models.SellerIdentity) (Outcome, error) {
	if err := n.sessions.Set(seller); err != nil {
		n.log.Warn("negotiation rejected server identity", zap.Error(err))
		return OutcomeNone, err
	}

	n.step = StepAuthenticated
	n.loginSessionID = ""
	n.loginID = ""
	n.resendDeadline = time.Time{}
	n.attempt = uuid.New()
	return OutcomeAuthenticated, nil
}

// resetLocked clears every transient field and re-keys the attempt so
// any in-flight response is discarded. Callers must hold n.mu.
func (n *Negotiation) resetLocked(method Method) {
	n.step = StepCredentials
	n.method = method
	n.loginSessionID = ""
	n.loginID = ""
	n.resendDeadline = time.Time{}
	n.attempt = uuid.New()
}
