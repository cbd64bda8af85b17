package models

import "fmt"

// RoleSeller is the only principal role this client accepts. Identities
// carrying any other role are discarded and treated as "no session".
const RoleSeller = "seller"

// PayoutStatus is the seller-level payout review state
type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "pending"
	PayoutApproved PayoutStatus = "approved"
	PayoutRejected PayoutStatus = "rejected"
)

// SellerIdentity represents the authenticated principal
type SellerIdentity struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Email        string       `json:"email" yaml:"email"`
	Phone        string       `json:"phone,omitempty" yaml:"phone,omitempty"`
	Role         string       `json:"role" yaml:"role"`
	Status       string       `json:"status" yaml:"status"`
	ShopName     string       `json:"shopName" yaml:"shop_name"`
	PayoutStatus PayoutStatus `json:"payoutStatus" yaml:"payout_status"`
}

// ValidateRole rejects identities whose role is not "seller". The server
// should never hand a non-seller identity to this client; if it does, the
// identity must not be trusted.
func (s *SellerIdentity) ValidateRole() error {
	if s == nil {
		return fmt.Errorf("no identity")
	}
	if s.Role != RoleSeller {
		return fmt.Errorf("unexpected role %q: only seller accounts may use this client", s.Role)
	}
	return nil
}

// Registration is the payload submitted to create a seller account
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	ShopName string `json:"shopName"`
}
