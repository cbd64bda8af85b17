package api

import (
	"encoding/json"
	"fmt"

	"github.com/vendora/sellerctl/internal/models"
)

// envelope is the server's success wrapper. Its shape is not fully stable
// across endpoints, so every field a response might carry lives here and
// normalization happens in one place.
type envelope struct {
	Success              bool            `json:"success"`
	Message              string          `json:"message,omitempty"`
	Error                string          `json:"error,omitempty"`
	Token                string          `json:"token,omitempty"`
	Requires2FA          bool            `json:"requires2FA,omitempty"`
	LoginSessionID       string          `json:"loginSessionId,omitempty"`
	RequiresVerification bool            `json:"requiresVerification,omitempty"`
	RedirectTo           string          `json:"redirectTo,omitempty"`
	Seller               json.RawMessage `json:"seller,omitempty"`
	User                 json.RawMessage `json:"user,omitempty"`
	Data                 json.RawMessage `json:"data,omitempty"`
}

// sellerFromEnvelope extracts a seller identity from a response body.
// Fallback order: seller, user, data.seller, data.user, data as a bare
// object, then the top-level body as a bare object. The first candidate
// that decodes to an object with a non-empty id wins.
func sellerFromEnvelope(body []byte, env *envelope) (*models.SellerIdentity, error) {
	candidates := [][]byte{env.Seller, env.User}

	if len(env.Data) > 0 {
		var inner envelope
		if err := json.Unmarshal(env.Data, &inner); err == nil {
			candidates = append(candidates, inner.Seller, inner.User)
		}
		candidates = append(candidates, env.Data)
	}
	candidates = append(candidates, body)

	for _, raw := range candidates {
		if len(raw) == 0 {
			continue
		}
		var identity models.SellerIdentity
		if err := json.Unmarshal(raw, &identity); err != nil {
			continue
		}
		if identity.ID != "" {
			return &identity, nil
		}
	}

	return nil, fmt.Errorf("response contained no seller identity")
}

// decodeInto unwraps a payload that may arrive either at the top level or
// under data, into out.
func decodeInto(body []byte, env *envelope, out interface{}) error {
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err == nil {
			return nil
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response payload: %w", err)
	}
	return nil
}
