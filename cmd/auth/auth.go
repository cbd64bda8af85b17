package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendora/sellerctl/internal/api"
	authflow "github.com/vendora/sellerctl/internal/auth"
	"github.com/vendora/sellerctl/internal/config"
	"github.com/vendora/sellerctl/internal/format"
	"github.com/vendora/sellerctl/internal/logging"
	"github.com/vendora/sellerctl/internal/models"
	"github.com/vendora/sellerctl/internal/session"
)

// AuthCmd represents the auth command
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Seller authentication commands",
	Long: `Seller authentication commands for the storefront admin CLI.

This command group includes login (password and OTP), registration,
logout, and session status.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your seller account",
	Long: `Authenticate with email and password, or with a one-time code
using --otp. Accounts with two-factor enabled are prompted for their
6-digit code after the password step.`,
	RunE: runLogin,
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new seller account",
	RunE:  runRegister,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the current session",
	RunE:  runLogout,
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE:  runStatus,
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated seller",
	Long:  "Fetch and display the seller identity behind the current session",
	RunE:  runWhoami,
}

func newClient() *api.Client {
	cfg := config.Get()
	return api.NewClient(cfg.Server.URL)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	useOTP, _ := cmd.Flags().GetBool("otp")

	client := newClient()
	store := session.NewStore(client, logging.L())
	neg := authflow.NewNegotiation(client, store, logging.L())
	ctx := cmd.Context()
	reader := bufio.NewReader(cmd.InOrStdin())

	if useOTP {
		return runOTPLogin(ctx, cmd, neg, store, reader, email)
	}

	if email == "" {
		return errors.New("email is required")
	}
	if password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	outcome, err := neg.SubmitCredentials(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", api.UserMessage(err))
	}

	if outcome == authflow.OutcomeTwoFactorRequired {
		fmt.Println("Two-factor authentication required.")
		if err := promptCode(ctx, neg, reader, "Enter your 6-digit code (or 'back' to cancel): "); err != nil {
			return err
		}
	}

	return printAuthenticated(store)
}

// runOTPLogin drives the OTP method: send a code, then verify it, with
// resend available once the cooldown elapses.
func runOTPLogin(ctx context.Context, cmd *cobra.Command, neg *authflow.Negotiation, store *session.Store, reader *bufio.Reader, loginID string) error {
	neg.SwitchMethod(authflow.MethodOTP)

	if loginID == "" {
		fmt.Print("Email or phone: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read login id: %w", err)
		}
		loginID = strings.TrimSpace(line)
	}

	if _, err := neg.StartOTP(ctx, loginID); err != nil {
		return fmt.Errorf("could not send code: %s", api.UserMessage(err))
	}

	fmt.Printf("A one-time code was sent to %s.\n", loginID)
	if err := promptCode(ctx, neg, reader, "Enter the 6-digit code (or 'resend', or 'back' to cancel): "); err != nil {
		return err
	}

	return printAuthenticated(store)
}

// promptCode loops until the negotiation authenticates or the user backs
// out. Bad input stays at the current step so nothing already entered is
// lost.
func promptCode(ctx context.Context, neg *authflow.Negotiation, reader *bufio.Reader, prompt string) error {
	for {
		fmt.Print(prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			neg.Back()
			return fmt.Errorf("failed to read code: %w", err)
		}
		input := strings.TrimSpace(line)

		switch input {
		case "back":
			neg.Back()
			return errors.New("login cancelled")
		case "resend":
			if err := neg.Resend(ctx); err != nil {
				if errors.Is(err, authflow.ErrCooldownActive) {
					fmt.Printf("Resend available in %d seconds.\n", neg.Cooldown())
				} else {
					format.PrintError("%s", api.UserMessage(err))
				}
				continue
			}
			fmt.Println("Code resent.")
			continue
		}

		outcome, err := neg.SubmitCode(ctx, input)
		if err != nil {
			if neg.Step() == authflow.StepCredentials {
				// The step context was lost; the whole login starts over.
				return fmt.Errorf("login failed: %s", api.UserMessage(err))
			}
			format.PrintError("%s", api.UserMessage(err))
			continue
		}
		if outcome == authflow.OutcomeAuthenticated {
			return nil
		}
	}
}

func printAuthenticated(store *session.Store) error {
	seller := store.Cached()
	if seller == nil {
		return errors.New("login did not establish a session")
	}
	format.PrintSuccess("✓ Logged in as %s (%s)", seller.Name, seller.Email)
	if seller.ShopName != "" {
		fmt.Printf("Shop: %s\n", seller.ShopName)
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	reg := models.Registration{}
	reg.Name, _ = cmd.Flags().GetString("name")
	reg.Email, _ = cmd.Flags().GetString("email")
	reg.Phone, _ = cmd.Flags().GetString("phone")
	reg.Password, _ = cmd.Flags().GetString("password")
	reg.ShopName, _ = cmd.Flags().GetString("shop-name")

	confirm, _ := cmd.Flags().GetString("confirm-password")
	if confirm != reg.Password {
		return errors.New("passwords do not match")
	}

	client := newClient()
	store := session.NewStore(client, logging.L())
	neg := authflow.NewNegotiation(client, store, logging.L())

	outcome, err := neg.Register(cmd.Context(), reg)
	if err != nil {
		return fmt.Errorf("registration failed: %s", api.UserMessage(err))
	}

	if outcome.RequiresVerification {
		format.PrintInfo("Check your email to verify your account, then run 'sellerctl auth login'.")
		return nil
	}

	format.PrintSuccess("✓ Registered and logged in as %s", outcome.Seller.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if cfg.Auth.SessionToken == "" {
		return fmt.Errorf("not logged in")
	}

	client := newClient()
	store := session.NewStore(client, logging.L())

	if err := client.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	store.Clear()

	format.PrintSuccess("✓ Successfully logged out")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	if cfg.Auth.SessionToken == "" {
		fmt.Println("Status: Not logged in")
		return nil
	}

	fmt.Printf("Status: Logged in as %s\n", cfg.Auth.Email)
	fmt.Printf("Server: %s\n", cfg.Server.URL)
	fmt.Println("Session: Active")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client := newClient()
	store := session.NewStore(client, logging.L())

	seller, err := store.Current(cmd.Context())
	if err != nil {
		if store.InvalidateOnUnauthorized(err) {
			_ = config.ClearAuth()
			return errors.New("session expired, please log in again")
		}
		return fmt.Errorf("could not fetch identity: %s", api.UserMessage(err))
	}

	return format.Print(seller)
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Email address (or phone with --otp)")
	loginCmd.Flags().StringP("password", "p", "", "Password")
	loginCmd.Flags().Bool("otp", false, "Log in with a one-time code instead of a password")

	registerCmd.Flags().String("name", "", "Your full name")
	registerCmd.Flags().StringP("email", "e", "", "Email address")
	registerCmd.Flags().String("phone", "", "Phone number")
	registerCmd.Flags().StringP("password", "p", "", "Password")
	registerCmd.Flags().String("confirm-password", "", "Password confirmation")
	registerCmd.Flags().String("shop-name", "", "Name of your shop")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("confirm-password")
	registerCmd.MarkFlagRequired("shop-name")

	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(registerCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(whoamiCmd)
}
