package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"ama@example.com", true},
		{"seller+shop@mail.co.uk", true},
		{"", false},
		{"not-an-email", false},
		{"@example.com", false},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.valid {
			assert.NoError(t, err, tt.email)
		} else {
			assert.Error(t, err, tt.email)
			assert.True(t, IsValidation(err), tt.email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("longenough"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(""))
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
		{"12 456", false},
	}

	for _, tt := range tests {
		err := ValidateCode(tt.code)
		if tt.valid {
			assert.NoError(t, err, tt.code)
		} else {
			assert.Error(t, err, tt.code)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+233241234567", true},
		{"0241234567", true},
		{"12345", false},
		{"+233-24-123", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidatePhone(tt.phone)
		if tt.valid {
			assert.NoError(t, err, tt.phone)
		} else {
			assert.Error(t, err, tt.phone)
		}
	}
}

func TestValidateLoginIDAcceptsEmailOrPhone(t *testing.T) {
	assert.NoError(t, ValidateLoginID("ama@example.com"))
	assert.NoError(t, ValidateLoginID("+233241234567"))
	assert.Error(t, ValidateLoginID("neither"))
	assert.Error(t, ValidateLoginID(""))
}

func TestValidateAccountNumber(t *testing.T) {
	assert.NoError(t, ValidateAccountNumber("1234567890"))
	assert.Error(t, ValidateAccountNumber("12345"))
	assert.Error(t, ValidateAccountNumber("12345678901234567890123"))
	assert.Error(t, ValidateAccountNumber("12345abcde"))
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("Ama", "name"))
	assert.Error(t, ValidateRequired("", "name"))
	assert.Error(t, ValidateRequired("   ", "name"))
}
