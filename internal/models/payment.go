package models

import "time"

// PaymentMethodType distinguishes payout destinations
type PaymentMethodType string

const (
	MethodBankTransfer PaymentMethodType = "bank_transfer"
	MethodMobileMoney  PaymentMethodType = "mobile_money"
)

// VerificationStatus is the server-driven review state of one payout method
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// BankDetails holds the bank-transfer specific fields
type BankDetails struct {
	BankName      string `json:"bankName" yaml:"bank_name"`
	AccountNumber string `json:"accountNumber" yaml:"account_number"`
	Branch        string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// MobileMoneyDetails holds the mobile-money specific fields
type MobileMoneyDetails struct {
	Provider     string `json:"provider" yaml:"provider"`
	MobileNumber string `json:"mobileNumber" yaml:"mobile_number"`
}

// PaymentMethod represents one payout destination. Exactly one method per
// seller carries IsDefault whenever at least one method exists.
type PaymentMethod struct {
	ID              string              `json:"id" yaml:"id"`
	Type            PaymentMethodType   `json:"type" yaml:"type"`
	AccountName     string              `json:"accountName" yaml:"account_name"`
	Bank            *BankDetails        `json:"bank,omitempty" yaml:"bank,omitempty"`
	Mobile          *MobileMoneyDetails `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	Status          VerificationStatus  `json:"verificationStatus" yaml:"verification_status"`
	RejectionReason string              `json:"rejectionReason,omitempty" yaml:"rejection_reason,omitempty"`
	IsDefault       bool                `json:"isDefault" yaml:"is_default"`
	InWithdrawal    bool                `json:"hasActiveWithdrawal" yaml:"has_active_withdrawal"`
	CreatedAt       time.Time           `json:"createdAt" yaml:"created_at"`
}

// PaymentMethodInput is the payload for creating or resubmitting a method
type PaymentMethodInput struct {
	Type        PaymentMethodType   `json:"type"`
	AccountName string              `json:"accountName"`
	Bank        *BankDetails        `json:"bank,omitempty"`
	Mobile      *MobileMoneyDetails `json:"mobile,omitempty"`
}
