package onboarding

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vendora/sellerctl/internal/api"
	"github.com/vendora/sellerctl/internal/config"
	"github.com/vendora/sellerctl/internal/format"
	"github.com/vendora/sellerctl/internal/logging"
	"github.com/vendora/sellerctl/internal/models"
	"github.com/vendora/sellerctl/internal/onboarding"
	"github.com/vendora/sellerctl/internal/session"
)

// OnboardingCmd represents the onboarding command
var OnboardingCmd = &cobra.Command{
	Use:   "onboarding",
	Short: "Seller onboarding progress commands",
	Long: `Seller onboarding progress commands.

This command group shows how far the account is from being allowed to
sell, nudges the server to recompute the stage, and handles email
verification.`,
}

// statusCmd shows onboarding progress
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show onboarding progress",
	RunE:  runStatus,
}

// advanceCmd asks the server to recompute the stage
var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Ask the server to recompute the onboarding stage",
	RunE:  runAdvance,
}

// sendVerificationEmailCmd triggers an email verification code
var sendVerificationEmailCmd = &cobra.Command{
	Use:   "send-verification-email",
	Short: "Send an email verification code",
	RunE:  runSendVerificationEmail,
}

// verifyEmailCmd submits an email verification code
var verifyEmailCmd = &cobra.Command{
	Use:   "verify-email <code>",
	Short: "Verify your email with the 6-digit code",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerifyEmail,
}

func newTracker() *onboarding.Tracker {
	cfg := config.Get()
	client := api.NewClient(cfg.Server.URL)
	store := session.NewStore(client, logging.L())
	return onboarding.NewTracker(client, store, logging.L())
}

func runStatus(cmd *cobra.Command, args []string) error {
	tracker := newTracker()

	status, stale, err := tracker.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not fetch onboarding status: %s", api.UserMessage(err))
	}
	if stale {
		format.PrintWarning("Showing last known status; the server could not be reached.")
	}

	if err := format.Print(status); err != nil {
		return err
	}

	printNextSteps(status)
	return nil
}

// printNextSteps lists the concrete steps still open. Which steps to
// prompt comes from the individual flags; whether setup is complete is
// the server's call alone.
func printNextSteps(status *models.OnboardingStatus) {
	if status.IsVerified() {
		format.PrintSuccess("Your account is fully verified. Happy selling!")
		return
	}

	if status.SetupComplete {
		format.PrintInfo("Setup is complete; verification is in review.")
		return
	}

	fmt.Println()
	fmt.Println("Remaining steps:")
	if !status.Verification.EmailVerified {
		fmt.Println("  - verify your email (sellerctl onboarding send-verification-email)")
	}
	if !status.Verification.PhoneVerified {
		fmt.Println("  - verify your phone number")
	}
	if !status.Setup.BusinessInfoAdded {
		fmt.Println("  - add your business information")
	}
	if !status.Setup.BankDetailsAdded {
		fmt.Println("  - add a payout method (sellerctl payment add)")
	}
	if !status.Setup.DocumentsVerified {
		fmt.Println("  - submit your business documents for review")
	}
	if !status.Setup.PaymentMethodVerified {
		fmt.Println("  - wait for payout method verification")
	}
}

func runAdvance(cmd *cobra.Command, args []string) error {
	tracker := newTracker()

	status, err := tracker.Advance(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not advance onboarding: %s", api.UserMessage(err))
	}

	format.PrintSuccess("✓ Onboarding stage recomputed: %s", status.Stage)
	return format.Print(status)
}

func runSendVerificationEmail(cmd *cobra.Command, args []string) error {
	tracker := newTracker()

	if err := tracker.SendVerificationEmail(cmd.Context()); err != nil {
		return fmt.Errorf("could not send verification email: %s", api.UserMessage(err))
	}

	format.PrintSuccess("✓ Verification code sent, check your inbox")
	return nil
}

func runVerifyEmail(cmd *cobra.Command, args []string) error {
	tracker := newTracker()

	if err := tracker.VerifyEmail(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("email verification failed: %s", api.UserMessage(err))
	}

	format.PrintSuccess("✓ Email verified")
	return nil
}

func init() {
	OnboardingCmd.AddCommand(statusCmd)
	OnboardingCmd.AddCommand(advanceCmd)
	OnboardingCmd.AddCommand(sendVerificationEmailCmd)
	OnboardingCmd.AddCommand(verifyEmailCmd)
}
