package payment

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/vendora/sellerctl/internal/models"
	"github.com/vendora/sellerctl/internal/utils"
)

// ErrMethodInWithdrawal blocks deleting a method that an active or
// approved withdrawal is still paying out to.
var ErrMethodInWithdrawal = errors.New("payment method is attached to an active withdrawal and cannot be deleted")

// ErrReactivationNotApplicable is returned when neither the method nor
// the seller's payout status is in a rejected state.
var ErrReactivationNotApplicable = errors.New("reactivation only applies to rejected payment methods or a rejected payout status")

// Transport is the slice of the API client the flow drives
type Transport interface {
	PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, input models.PaymentMethodInput) (*models.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id string, input models.PaymentMethodInput) (*models.PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, id string) error
	DeletePaymentMethod(ctx context.Context, id string) error
	ReactivatePaymentMethod(ctx context.Context, id string) error
}

// StatusRefresher refetches the onboarding status after operations that
// can change it, such as creating or resubmitting a method.
type StatusRefresher interface {
	Refresh(ctx context.Context) (*models.OnboardingStatus, error)
}

// Flow manages a seller's payout methods and their verification state
type Flow struct {
	transport Transport
	status    StatusRefresher
	log       *zap.Logger
}

// NewFlow creates a payment method flow
func NewFlow(transport Transport, status StatusRefresher, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{transport: transport, status: status, log: log}
}

// List returns the seller's payout methods with the default-flag
// invariant reconciled: whenever methods exist, exactly one is default,
// with the earliest-created method promoted if the server marked none.
func (f *Flow) List(ctx context.Context) ([]models.PaymentMethod, error) {
	methods, err := f.transport.PaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	reconcileDefault(methods)
	return methods, nil
}

// Create submits a new payout method. The server marks the seller's
// first method as default automatically; later methods need an explicit
// SetDefault call.
func (f *Flow) Create(ctx context.Context, input models.PaymentMethodInput) (*models.PaymentMethod, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	created, err := f.transport.CreatePaymentMethod(ctx, input)
	if err != nil {
		return nil, err
	}

	f.refreshStatus(ctx)
	return created, nil
}

// Resubmit updates an existing method's details, typically after a
// rejection. Verification goes back to the server's review queue.
func (f *Flow) Resubmit(ctx context.Context, id string, input models.PaymentMethodInput) (*models.PaymentMethod, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	updated, err := f.transport.UpdatePaymentMethod(ctx, id, input)
	if err != nil {
		return nil, err
	}

	f.refreshStatus(ctx)
	return updated, nil
}

// SetDefault marks one method as the payout default and refetches the
// whole list, so the exactly-one-default state shown to the user is the
// server's, not an optimistic local edit.
func (f *Flow) SetDefault(ctx context.Context, id string) ([]models.PaymentMethod, error) {
	if err := f.transport.SetDefaultPaymentMethod(ctx, id); err != nil {
		return nil, err
	}
	return f.List(ctx)
}

// Delete removes a payout method. Methods attached to an active
// withdrawal are refused before any network call.
func (f *Flow) Delete(ctx context.Context, id string) error {
	method, err := f.find(ctx, id)
	if err != nil {
		return err
	}
	if method.InWithdrawal {
		return ErrMethodInWithdrawal
	}

	return f.transport.DeletePaymentMethod(ctx, id)
}

// RequestReactivation asks the server to move a rejected method and the
// seller's payout status back into pending review. This is a request:
// the method stays unverified until a later fetch confirms otherwise.
func (f *Flow) RequestReactivation(ctx context.Context, id string, payout models.PayoutStatus) error {
	method, err := f.find(ctx, id)
	if err != nil {
		return err
	}
	if method.Status != models.VerificationRejected && payout != models.PayoutRejected {
		return ErrReactivationNotApplicable
	}

	if err := f.transport.ReactivatePaymentMethod(ctx, id); err != nil {
		return err
	}

	f.refreshStatus(ctx)
	return nil
}

func (f *Flow) find(ctx context.Context, id string) (*models.PaymentMethod, error) {
	methods, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range methods {
		if methods[i].ID == id {
			return &methods[i], nil
		}
	}
	return nil, fmt.Errorf("payment method %s not found", id)
}

func (f *Flow) refreshStatus(ctx context.Context) {
	if f.status == nil {
		return
	}
	if _, err := f.status.Refresh(ctx); err != nil {
		f.log.Warn("onboarding status refresh after payment method change failed", zap.Error(err))
	}
}

// reconcileDefault enforces the exactly-one-default view over a method
// list. Ties and gaps resolve toward the earliest-created method.
func reconcileDefault(methods []models.PaymentMethod) {
	if len(methods) == 0 {
		return
	}

	defaults := make([]int, 0, 1)
	for i := range methods {
		if methods[i].IsDefault {
			defaults = append(defaults, i)
		}
	}
	if len(defaults) == 1 {
		return
	}

	candidates := defaults
	if len(candidates) == 0 {
		candidates = make([]int, len(methods))
		for i := range methods {
			candidates[i] = i
		}
	}

	sort.Slice(candidates, func(a, b int) bool {
		return methods[candidates[a]].CreatedAt.Before(methods[candidates[b]].CreatedAt)
	})

	for i := range methods {
		methods[i].IsDefault = false
	}
	methods[candidates[0]].IsDefault = true
}

func validateInput(input models.PaymentMethodInput) error {
	if err := utils.ValidateRequired(input.AccountName, "account name"); err != nil {
		return err
	}

	switch input.Type {
	case models.MethodBankTransfer:
		if input.Bank == nil {
			return utils.NewValidationError("bank", "bank details are required")
		}
		if err := utils.ValidateRequired(input.Bank.BankName, "bank name"); err != nil {
			return err
		}
		return utils.ValidateAccountNumber(input.Bank.AccountNumber)
	case models.MethodMobileMoney:
		if input.Mobile == nil {
			return utils.NewValidationError("mobile", "mobile money details are required")
		}
		if err := utils.ValidateRequired(input.Mobile.Provider, "provider"); err != nil {
			return err
		}
		return utils.ValidatePhone(input.Mobile.MobileNumber)
	default:
		return utils.NewValidationError("type", "type must be bank_transfer or mobile_money")
	}
}
