package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appConfig "github.com/vendora/sellerctl/internal/config"
	"github.com/vendora/sellerctl/internal/format"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "CLI configuration commands",
	Long: `CLI configuration commands.

This command group shows and updates the CLI configuration stored in
$HOME/.sellerctl.yaml.`,
}

// showCmd displays the current configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShow,
}

// setCmd updates one configuration value
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value, e.g. 'config set server.url https://api.example.com'",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Get()

	display := map[string]string{
		"server.url":     cfg.Server.URL,
		"server.timeout": cfg.Server.Timeout,
		"format.default": cfg.Format.Default,
		"auth.email":     cfg.Auth.Email,
		"auth.session":   maskToken(cfg.Auth.SessionToken),
	}
	for key, value := range display {
		fmt.Printf("%s: %s\n", key, value)
	}
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	switch key {
	case "server.url", "server.timeout", "format.default", "format.colors":
	default:
		return fmt.Errorf("unknown or protected configuration key: %s", key)
	}

	viper.Set(key, value)
	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("could not save configuration: %w", err)
	}

	format.PrintSuccess("✓ %s set to %s", key, value)
	return nil
}

// maskToken hides all but a hint of the session token
func maskToken(token string) string {
	if token == "" {
		return "(none)"
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	ConfigCmd.AddCommand(showCmd)
	ConfigCmd.AddCommand(setCmd)
}
