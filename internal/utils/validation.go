package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

// CodeLength is the exact length of 2FA and OTP codes
const CodeLength = 6

var (
	digitsOnly   = regexp.MustCompile(`^[0-9]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	accountNum   = regexp.MustCompile(`^[0-9]{6,20}$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "email is required")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return NewValidationError("email", "invalid email format")
	}

	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError("password", "password is required")
	}

	if len(password) < 8 {
		return NewValidationError("password", "password must be at least 8 characters long")
	}

	return nil
}

// ValidateCode validates a 2FA/OTP code: exactly six digits. Anything
// else is rejected before a network call is made.
func ValidateCode(code string) error {
	if len(code) != CodeLength {
		return NewValidationError("code", "code must be exactly 6 digits")
	}
	if !digitsOnly.MatchString(code) {
		return NewValidationError("code", "code must contain digits only")
	}
	return nil
}

// ValidatePhone validates a phone number
func ValidatePhone(phone string) error {
	if err := ValidateRequired(phone, "phone"); err != nil {
		return err
	}
	if !phonePattern.MatchString(phone) {
		return NewValidationError("phone", "invalid phone number format")
	}
	return nil
}

// ValidateLoginID validates an OTP destination: an email address or a
// phone number.
func ValidateLoginID(loginID string) error {
	if strings.TrimSpace(loginID) == "" {
		return NewValidationError("loginId", "email or phone is required")
	}
	if strings.Contains(loginID, "@") {
		return ValidateEmail(loginID)
	}
	if !phonePattern.MatchString(loginID) {
		return NewValidationError("loginId", "enter a valid email or phone number")
	}
	return nil
}

// ValidateRequired validates that a string is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, fieldName+" is required")
	}
	return nil
}

// ValidateAccountNumber validates a bank account number
func ValidateAccountNumber(number string) error {
	if err := ValidateRequired(number, "account number"); err != nil {
		return err
	}
	if !accountNum.MatchString(number) {
		return NewValidationError("account number", "account number must be 6-20 digits")
	}
	return nil
}
