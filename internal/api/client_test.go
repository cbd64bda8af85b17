package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/sellerctl/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(server.URL)
}

func sellerJSON() map[string]interface{} {
	return map[string]interface{}{
		"id":       "s-1",
		"name":     "Ama Mensah",
		"email":    "ama@example.com",
		"role":     "seller",
		"shopName": "Ama Crafts",
	}
}

func TestLoginNormalizesSeller(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ama@example.com", payload["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"seller":  sellerJSON(),
		})
	})

	result, err := client.Login(context.Background(), "ama@example.com", "secret-password")
	require.NoError(t, err)

	assert.True(t, result.Authenticated)
	assert.False(t, result.Requires2FA)
	require.NotNil(t, result.Seller)
	assert.Equal(t, "Ama Crafts", result.Seller.ShopName)
}

func TestLoginSurfacesTwoFactorChallenge(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        true,
			"requires2FA":    true,
			"loginSessionId": "abc",
		})
	})

	result, err := client.Login(context.Background(), "ama@example.com", "secret-password")
	require.NoError(t, err)

	assert.True(t, result.Requires2FA)
	assert.Equal(t, "abc", result.LoginSessionID)
	assert.Nil(t, result.Seller)
}

func TestTwoFactorChallengeWithoutSessionIDIsRejected(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"requires2FA": true,
		})
	})

	_, err := client.Login(context.Background(), "ama@example.com", "secret-password")
	require.Error(t, err)
}

func TestSellerEnvelopeFallbackOrder(t *testing.T) {
	bodies := []map[string]interface{}{
		{"success": true, "seller": sellerJSON()},
		{"success": true, "user": sellerJSON()},
		{"success": true, "data": map[string]interface{}{"seller": sellerJSON()}},
		{"success": true, "data": map[string]interface{}{"user": sellerJSON()}},
		{"success": true, "data": sellerJSON()},
		sellerJSON(),
	}

	for i, body := range bodies {
		body := body
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(body)
		})

		seller, err := client.CurrentSeller(context.Background())
		require.NoError(t, err, "body shape %d", i)
		assert.Equal(t, "ama@example.com", seller.Email, "body shape %d", i)
	}
}

func TestUnauthorizedClassification(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "session expired"})
	})

	_, err := client.CurrentSeller(context.Background())
	require.Error(t, err)

	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNetwork(err))
	assert.Equal(t, "session expired", UserMessage(err))
}

func TestNetworkErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(server.URL)
	server.Close()

	_, err := client.CurrentSeller(context.Background())
	require.Error(t, err)

	assert.True(t, IsNetwork(err))
	assert.False(t, IsUnauthorized(err))
}

func TestServerValidationMessageSurfacedVerbatim(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "email already registered"})
	})

	_, err := client.Register(context.Background(), models.Registration{
		Name:     "Ama Mensah",
		Email:    "ama@example.com",
		Password: "secret-password",
		ShopName: "Ama Crafts",
	})
	require.Error(t, err)

	assert.True(t, IsServerValidation(err))
	assert.Equal(t, "email already registered", UserMessage(err))
}

func TestFailureReportedViaMessageFieldOnly(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "code expired",
		})
	})

	_, err := client.CurrentSeller(context.Background())
	require.Error(t, err)
	assert.Equal(t, "code expired", UserMessage(err))
}

func TestRegisterRequiringVerification(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":              true,
			"requiresVerification": true,
		})
	})

	result, err := client.Register(context.Background(), models.Registration{
		Name:     "Ama Mensah",
		Email:    "ama@example.com",
		Password: "secret-password",
		ShopName: "Ama Crafts",
	})
	require.NoError(t, err)

	assert.True(t, result.RequiresVerification)
	assert.Nil(t, result.Seller)
}

func TestOnboardingStatusDecodesFromDataEnvelope(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/seller/status", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"onboardingStage": "pending_verification",
				"verification":    map[string]bool{"emailVerified": true},
				"isSetupComplete": true,
			},
		})
	})

	status, err := client.OnboardingStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StagePendingVerification, status.Stage)
	assert.True(t, status.Verification.EmailVerified)
	assert.True(t, status.SetupComplete)
}

func TestPaymentMethodsDecodeAndVerbs(t *testing.T) {
	var gotMethod, gotPath string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": []map[string]interface{}{
					{"id": "pm-1", "type": "bank_transfer", "isDefault": true},
				},
			})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
		}
	})
	ctx := context.Background()

	methods, err := client.PaymentMethods(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.True(t, methods[0].IsDefault)

	require.NoError(t, client.SetDefaultPaymentMethod(ctx, "pm-1"))
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/payment-methods/pm-1/default", gotPath)

	require.NoError(t, client.DeletePaymentMethod(ctx, "pm-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)

	require.NoError(t, client.ReactivatePaymentMethod(ctx, "pm-1"))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/payment-methods/pm-1/reactivate", gotPath)
}

func TestAdvanceOnboardingUsesPatch(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/seller/update-onboarding", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"onboardingStage": "verified", "isSetupComplete": true},
		})
	})

	status, err := client.AdvanceOnboarding(context.Background())
	require.NoError(t, err)
	assert.True(t, status.IsVerified())
}
