package models

// OnboardingStage is the seller's authoritative progress stage
type OnboardingStage string

const (
	StageProfileIncomplete   OnboardingStage = "profile_incomplete"
	StagePendingVerification OnboardingStage = "pending_verification"
	StageVerified            OnboardingStage = "verified"
)

// ContactVerification holds the per-channel verification flags
type ContactVerification struct {
	EmailVerified bool `json:"emailVerified" yaml:"email_verified"`
	PhoneVerified bool `json:"phoneVerified" yaml:"phone_verified"`
}

// SetupFlags marks which required setup steps the seller has completed.
// They decide which steps to prompt for; they never decide completeness.
type SetupFlags struct {
	BusinessInfoAdded     bool `json:"businessInfoAdded" yaml:"business_info_added"`
	BankDetailsAdded      bool `json:"bankDetailsAdded" yaml:"bank_details_added"`
	DocumentsVerified     bool `json:"documentsVerified" yaml:"documents_verified"`
	PaymentMethodVerified bool `json:"paymentMethodVerified" yaml:"payment_method_verified"`
}

// OnboardingStatus represents a seller's progress toward being allowed to
// sell. SetupComplete comes verbatim from the server; the client never
// recomputes it from the individual flags.
type OnboardingStatus struct {
	Stage         OnboardingStage     `json:"onboardingStage" yaml:"stage"`
	Verification  ContactVerification `json:"verification" yaml:"verification"`
	Setup         SetupFlags          `json:"setup" yaml:"setup"`
	SetupComplete bool                `json:"isSetupComplete" yaml:"setup_complete"`
}

// IsVerified reports whether the seller has reached the verified stage.
// This is the only stage derivation the client performs.
func (s *OnboardingStatus) IsVerified() bool {
	return s != nil && s.Stage == StageVerified
}
