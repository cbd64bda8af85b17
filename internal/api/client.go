package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vendora/sellerctl/internal/config"
	"github.com/vendora/sellerctl/internal/models"
)

// Client represents the storefront API client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	config     *config.Config
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: config.Get(),
	}
}

// LoginResult is the normalized outcome of a password login call
type LoginResult struct {
	Authenticated  bool
	Requires2FA    bool
	LoginSessionID string
	Seller         *models.SellerIdentity
}

// RegisterResult is the normalized outcome of a registration call
type RegisterResult struct {
	RequiresVerification bool
	Seller               *models.SellerIdentity
}

// do issues one JSON request and returns the raw body plus the parsed
// envelope. Transport failures come back as *NetworkError, non-2xx
// statuses and server-reported errors as *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, *envelope, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setAuthHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Err: err}
	}

	env := &envelope{}
	if len(body) > 0 {
		// A non-JSON body still classifies by status below.
		_ = json.Unmarshal(body, env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := env.Error
		if message == "" {
			message = env.Message
		}
		return nil, nil, NewAPIError(resp.StatusCode, message, "")
	}

	if !env.Success {
		message := env.Error
		if message == "" {
			message = env.Message
		}
		if message != "" {
			return nil, nil, NewAPIError(resp.StatusCode, message, "")
		}
	}

	return body, env, nil
}

// setAuthHeaders attaches the persisted session token, when present
func (c *Client) setAuthHeaders(req *http.Request) {
	if c.config.Auth.SessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Auth.SessionToken)
	}
}

// saveSession persists the opaque session token issued by the server
func (c *Client) saveSession(email, token string) error {
	if token == "" {
		return nil
	}
	if err := config.UpdateAuth(email, token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.config = config.Get()
	return nil
}

// Login submits email/password credentials. The server either completes
// the login, or asks for a second factor via Requires2FA plus a login
// session id that the follow-up call must carry.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	body, env, err := c.do(ctx, http.MethodPost, "/login", payload)
	if err != nil {
		return nil, err
	}

	if env.Requires2FA {
		if env.LoginSessionID == "" {
			return nil, fmt.Errorf("server requested 2FA without a login session id")
		}
		return &LoginResult{Requires2FA: true, LoginSessionID: env.LoginSessionID}, nil
	}

	seller, err := sellerFromEnvelope(body, env)
	if err != nil {
		return nil, err
	}
	if err := c.saveSession(seller.Email, env.Token); err != nil {
		return nil, err
	}

	return &LoginResult{Authenticated: true, Seller: seller}, nil
}

// LoginTwoFactor completes a password login that required a second factor
func (c *Client) LoginTwoFactor(ctx context.Context, loginSessionID, code string) (*models.SellerIdentity, error) {
	payload := map[string]string{
		"loginSessionId": loginSessionID,
		"twoFactorCode":  code,
	}

	body, env, err := c.do(ctx, http.MethodPost, "/login/2fa", payload)
	if err != nil {
		return nil, err
	}

	seller, err := sellerFromEnvelope(body, env)
	if err != nil {
		return nil, err
	}
	if err := c.saveSession(seller.Email, env.Token); err != nil {
		return nil, err
	}

	return seller, nil
}

// SendOTP asks the server to deliver a one-time code to the given login id
func (c *Client) SendOTP(ctx context.Context, loginID string) error {
	payload := map[string]string{"loginId": loginID}
	_, _, err := c.do(ctx, http.MethodPost, "/otp/send", payload)
	return err
}

// VerifyOTP completes an OTP login. Password is optional and only sent
// when the account requires it alongside the code.
func (c *Client) VerifyOTP(ctx context.Context, loginID, otp, password string) (*models.SellerIdentity, error) {
	payload := map[string]string{
		"loginId": loginID,
		"otp":     otp,
	}
	if password != "" {
		payload["password"] = password
	}

	body, env, err := c.do(ctx, http.MethodPost, "/otp/verify", payload)
	if err != nil {
		return nil, err
	}

	seller, err := sellerFromEnvelope(body, env)
	if err != nil {
		return nil, err
	}
	if err := c.saveSession(seller.Email, env.Token); err != nil {
		return nil, err
	}

	return seller, nil
}

// Register submits a new seller registration
func (c *Client) Register(ctx context.Context, reg models.Registration) (*RegisterResult, error) {
	body, env, err := c.do(ctx, http.MethodPost, "/register", reg)
	if err != nil {
		return nil, err
	}

	if env.RequiresVerification {
		return &RegisterResult{RequiresVerification: true}, nil
	}

	seller, err := sellerFromEnvelope(body, env)
	if err != nil {
		return nil, err
	}
	if err := c.saveSession(seller.Email, env.Token); err != nil {
		return nil, err
	}

	return &RegisterResult{Seller: seller}, nil
}

// Logout ends the server session and drops the persisted token
func (c *Client) Logout(ctx context.Context) error {
	if c.config.Auth.SessionToken == "" {
		return fmt.Errorf("not logged in")
	}

	if _, _, err := c.do(ctx, http.MethodPost, "/logout", nil); err != nil {
		// The local session is cleared regardless; a dead server must not
		// keep the client logged in.
		if !IsNetwork(err) && !IsUnauthorized(err) {
			return err
		}
	}

	return config.ClearAuth()
}

// CurrentSeller fetches the identity behind the current session token
func (c *Client) CurrentSeller(ctx context.Context) (*models.SellerIdentity, error) {
	body, env, err := c.do(ctx, http.MethodGet, "/seller/me", nil)
	if err != nil {
		return nil, err
	}
	return sellerFromEnvelope(body, env)
}

// OnboardingStatus fetches the seller's onboarding progress
func (c *Client) OnboardingStatus(ctx context.Context) (*models.OnboardingStatus, error) {
	body, env, err := c.do(ctx, http.MethodGet, "/seller/status", nil)
	if err != nil {
		return nil, err
	}

	var status models.OnboardingStatus
	if err := decodeInto(body, env, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AdvanceOnboarding asks the server to recompute the onboarding stage and
// returns the full recomputed status.
func (c *Client) AdvanceOnboarding(ctx context.Context) (*models.OnboardingStatus, error) {
	body, env, err := c.do(ctx, http.MethodPatch, "/seller/update-onboarding", nil)
	if err != nil {
		return nil, err
	}

	var status models.OnboardingStatus
	if err := decodeInto(body, env, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SendVerificationEmail triggers delivery of an email verification code
func (c *Client) SendVerificationEmail(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodPost, "/seller/send-verification-email", nil)
	return err
}

// VerifyEmail submits an email verification code
func (c *Client) VerifyEmail(ctx context.Context, otp string) error {
	payload := map[string]string{"otp": otp}
	_, _, err := c.do(ctx, http.MethodPost, "/seller/verify-email", payload)
	return err
}

// PaymentMethods lists the seller's payout methods
func (c *Client) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	body, env, err := c.do(ctx, http.MethodGet, "/payment-methods", nil)
	if err != nil {
		return nil, err
	}

	var methods []models.PaymentMethod
	if err := decodeInto(body, env, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

// CreatePaymentMethod submits a new payout method
func (c *Client) CreatePaymentMethod(ctx context.Context, input models.PaymentMethodInput) (*models.PaymentMethod, error) {
	body, env, err := c.do(ctx, http.MethodPost, "/payment-methods", input)
	if err != nil {
		return nil, err
	}

	var method models.PaymentMethod
	if err := decodeInto(body, env, &method); err != nil {
		return nil, err
	}
	return &method, nil
}

// UpdatePaymentMethod resubmits an existing method's details
func (c *Client) UpdatePaymentMethod(ctx context.Context, id string, input models.PaymentMethodInput) (*models.PaymentMethod, error) {
	body, env, err := c.do(ctx, http.MethodPatch, "/payment-methods/"+id, input)
	if err != nil {
		return nil, err
	}

	var method models.PaymentMethod
	if err := decodeInto(body, env, &method); err != nil {
		return nil, err
	}
	return &method, nil
}

// SetDefaultPaymentMethod marks one method as the payout default
func (c *Client) SetDefaultPaymentMethod(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodPatch, "/payment-methods/"+id+"/default", nil)
	return err
}

// DeletePaymentMethod removes a payout method
func (c *Client) DeletePaymentMethod(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/payment-methods/"+id, nil)
	return err
}

// ReactivatePaymentMethod asks the server to move a rejected method (and
// the seller's payout status) back into pending review.
func (c *Client) ReactivatePaymentMethod(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodPost, "/payment-methods/"+id+"/reactivate", nil)
	return err
}

// IsAuthenticated checks if the client has a persisted session token
func (c *Client) IsAuthenticated() bool {
	return c.config.Auth.SessionToken != ""
}
