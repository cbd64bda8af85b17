package payment

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vendora/sellerctl/internal/api"
	"github.com/vendora/sellerctl/internal/config"
	"github.com/vendora/sellerctl/internal/format"
	"github.com/vendora/sellerctl/internal/logging"
	"github.com/vendora/sellerctl/internal/models"
	"github.com/vendora/sellerctl/internal/onboarding"
	"github.com/vendora/sellerctl/internal/payment"
	"github.com/vendora/sellerctl/internal/session"
)

// PaymentCmd represents the payment command
var PaymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Payout method commands",
	Long: `Payout method commands.

This command group manages bank and mobile-money payout destinations,
their verification state, the payout default, and reactivation after a
rejection.`,
}

// listCmd lists payout methods
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List payout methods",
	RunE:  runList,
}

// addCmd adds a payout method
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a payout method",
	Long: `Add a bank or mobile-money payout method.

Your first method becomes the payout default automatically; additional
methods need an explicit 'payment set-default'.`,
	RunE: runAdd,
}

// resubmitCmd corrects a rejected method's details
var resubmitCmd = &cobra.Command{
	Use:   "resubmit <id>",
	Short: "Resubmit a payout method with corrected details",
	Long: `Resubmit a payout method with corrected details, typically after a
rejection. The method goes back into pending review.`,
	Args: cobra.ExactArgs(1),
	RunE: runResubmit,
}

// setDefaultCmd marks a method as default
var setDefaultCmd = &cobra.Command{
	Use:   "set-default <id>",
	Short: "Make a payout method the default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetDefault,
}

// deleteCmd removes a method
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a payout method",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// reactivateCmd requests a re-review after rejection
var reactivateCmd = &cobra.Command{
	Use:   "reactivate <id>",
	Short: "Request re-review of a rejected payout method",
	Long: `Request re-review of a rejected payout method.

This moves your payout status back into pending review; it does not mark
anything verified until the server confirms it.`,
	Args: cobra.ExactArgs(1),
	RunE: runReactivate,
}

type deps struct {
	client *api.Client
	store  *session.Store
	flow   *payment.Flow
}

func newDeps() *deps {
	cfg := config.Get()
	client := api.NewClient(cfg.Server.URL)
	store := session.NewStore(client, logging.L())
	tracker := onboarding.NewTracker(client, store, logging.L())
	return &deps{
		client: client,
		store:  store,
		flow:   payment.NewFlow(client, tracker, logging.L()),
	}
}

func runList(cmd *cobra.Command, args []string) error {
	d := newDeps()

	methods, err := d.flow.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list payout methods: %s", api.UserMessage(err))
	}

	if err := format.Print(methods); err != nil {
		return err
	}

	for _, m := range methods {
		if m.Status == models.VerificationRejected && m.RejectionReason != "" {
			format.PrintWarning("Method %s was rejected: %s", m.ID, m.RejectionReason)
		}
	}
	return nil
}

// inputFromFlags assembles a method payload from the shared detail flags
func inputFromFlags(cmd *cobra.Command) (models.PaymentMethodInput, error) {
	methodType, _ := cmd.Flags().GetString("type")
	accountName, _ := cmd.Flags().GetString("account-name")

	input := models.PaymentMethodInput{
		Type:        models.PaymentMethodType(methodType),
		AccountName: accountName,
	}

	switch input.Type {
	case models.MethodBankTransfer:
		bankName, _ := cmd.Flags().GetString("bank-name")
		accountNumber, _ := cmd.Flags().GetString("account-number")
		branch, _ := cmd.Flags().GetString("branch")
		input.Bank = &models.BankDetails{
			BankName:      bankName,
			AccountNumber: accountNumber,
			Branch:        branch,
		}
	case models.MethodMobileMoney:
		provider, _ := cmd.Flags().GetString("provider")
		mobileNumber, _ := cmd.Flags().GetString("mobile-number")
		input.Mobile = &models.MobileMoneyDetails{
			Provider:     provider,
			MobileNumber: mobileNumber,
		}
	default:
		return input, errors.New("--type must be bank_transfer or mobile_money")
	}

	return input, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	input, err := inputFromFlags(cmd)
	if err != nil {
		return err
	}

	d := newDeps()
	created, err := d.flow.Create(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("could not add payout method: %s", api.UserMessage(err))
	}

	format.PrintSuccess("✓ Payout method added (verification pending)")
	if created.IsDefault {
		format.PrintInfo("This method is your payout default.")
	}
	return format.Print(created)
}

func runResubmit(cmd *cobra.Command, args []string) error {
	input, err := inputFromFlags(cmd)
	if err != nil {
		return err
	}

	d := newDeps()
	updated, err := d.flow.Resubmit(cmd.Context(), args[0], input)
	if err != nil {
		return fmt.Errorf("could not resubmit payout method: %s", api.UserMessage(err))
	}

	format.PrintSuccess("✓ Payout method resubmitted for review")
	return format.Print(updated)
}

func runSetDefault(cmd *cobra.Command, args []string) error {
	d := newDeps()

	methods, err := d.flow.SetDefault(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("could not set default: %s", api.UserMessage(err))
	}

	format.PrintSuccess("✓ Default payout method updated")
	return format.Print(methods)
}

func runDelete(cmd *cobra.Command, args []string) error {
	d := newDeps()

	if err := d.flow.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, payment.ErrMethodInWithdrawal) {
			return err
		}
		return fmt.Errorf("could not delete payout method: %s", api.UserMessage(err))
	}

	format.PrintSuccess("✓ Payout method deleted")
	return nil
}

func runReactivate(cmd *cobra.Command, args []string) error {
	d := newDeps()
	ctx := cmd.Context()

	payoutStatus := models.PayoutStatus("")
	if seller, err := d.store.Current(ctx); err == nil {
		payoutStatus = seller.PayoutStatus
	}

	if err := d.flow.RequestReactivation(ctx, args[0], payoutStatus); err != nil {
		if errors.Is(err, payment.ErrReactivationNotApplicable) {
			return err
		}
		return fmt.Errorf("could not request reactivation: %s", api.UserMessage(err))
	}

	format.PrintSuccess("✓ Reactivation requested; your payout status is back in review")
	return nil
}

// registerDetailFlags declares the shared method detail flags
func registerDetailFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "Method type: bank_transfer or mobile_money")
	cmd.Flags().String("account-name", "", "Name on the account")
	cmd.Flags().String("bank-name", "", "Bank name (bank_transfer)")
	cmd.Flags().String("account-number", "", "Account number (bank_transfer)")
	cmd.Flags().String("branch", "", "Branch (bank_transfer, optional)")
	cmd.Flags().String("provider", "", "Mobile money provider (mobile_money)")
	cmd.Flags().String("mobile-number", "", "Mobile number (mobile_money)")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("account-name")
}

func init() {
	registerDetailFlags(addCmd)
	registerDetailFlags(resubmitCmd)

	PaymentCmd.AddCommand(listCmd)
	PaymentCmd.AddCommand(addCmd)
	PaymentCmd.AddCommand(resubmitCmd)
	PaymentCmd.AddCommand(setDefaultCmd)
	PaymentCmd.AddCommand(deleteCmd)
	PaymentCmd.AddCommand(reactivateCmd)
}
