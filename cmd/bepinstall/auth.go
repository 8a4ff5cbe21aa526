package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"bepinstall/internal/core"
	"bepinstall/internal/source/nexusmods"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// supportedSources lists the sources that take an API key
var supportedSources = []string{nexusmods.SourceID}

var authSkipValidate bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API keys for mod sources",
	Long: `Manage API keys for mod sources. Hint manifests that reference Nexus Mods
entries need a key; Thunderstore needs none.

The NEXUSMODS_API_KEY environment variable takes precedence over a stored key.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [source]",
	Short: "Store an API key for a mod source",
	Long: `Store an API key for a mod source (default: nexusmods).

For Nexus Mods:
  1. Visit https://www.nexusmods.com/users/myaccount?tab=api
  2. Copy your Personal API Key`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout [source]",
	Short: "Remove a stored API key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which sources have an API key",
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().BoolVar(&authSkipValidate, "no-validate", false, "store the key without checking it")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func sourceArg(args []string) (string, error) {
	if len(args) == 0 {
		return supportedSources[0], nil
	}
	if !isSupportedSource(args[0]) {
		return "", fmt.Errorf("unsupported source: %s (supported: %s)", args[0], strings.Join(supportedSources, ", "))
	}
	return args[0], nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	sourceID, err := sourceArg(args)
	if err != nil {
		return err
	}

	apiKey, err := readAPIKey()
	if err != nil {
		return fmt.Errorf("reading API key: %w", err)
	}
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	out := cmd.OutOrStdout()
	if !authSkipValidate {
		fmt.Fprint(out, "Validating... ")
		user, err := nexusmods.NewClient(nil, apiKey).ValidateAPIKey(cmd.Context())
		if err != nil {
			fmt.Fprintln(out, colorRed("failed"))
			return fmt.Errorf("invalid API key: %w", err)
		}
		fmt.Fprintf(out, "%s (%s)\n", colorGreen("ok"), user.Name)
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	if err := service.SaveSourceToken(sourceID, apiKey); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintf(out, "Stored API key for %s.\n", sourceID)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	sourceID, err := sourceArg(args)
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	if err := service.DeleteSourceToken(sourceID); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s credentials.\n", sourceID)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	out := cmd.OutOrStdout()
	for _, sourceID := range supportedSources {
		if apiKey := os.Getenv(core.NexusAPIKeyEnv); apiKey != "" {
			fmt.Fprintf(out, "%s: authenticated via %s (key: %s)\n", sourceID, core.NexusAPIKeyEnv, maskAPIKey(apiKey))
			continue
		}

		if db := service.DB(); db != nil {
			token, err := db.GetToken(sourceID)
			if err != nil {
				return fmt.Errorf("checking %s: %w", sourceID, err)
			}
			if token != nil {
				fmt.Fprintf(out, "%s: authenticated (key: %s)\n", sourceID, maskAPIKey(token.APIKey))
				continue
			}
		}

		if key := service.Config().NexusAPIKey; key != "" {
			fmt.Fprintf(out, "%s: authenticated via config.yaml (key: %s)\n", sourceID, maskAPIKey(key))
			continue
		}

		fmt.Fprintf(out, "%s: not authenticated\n", sourceID)
	}

	return nil
}

// isSupportedSource checks if a source ID is in the supported list
func isSupportedSource(sourceID string) bool {
	for _, s := range supportedSources {
		if s == sourceID {
			return true
		}
	}
	return false
}

// readAPIKey prompts for and reads an API key from the terminal
func readAPIKey() (string, error) {
	fmt.Fprint(os.Stderr, "Enter API key: ")

	// Try to read securely (hidden input)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	// Fallback for non-terminal input (e.g., piped input)
	reader := bufio.NewReader(os.Stdin)
	key, err := reader.ReadString('\n')
	if err != nil && key == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(key), nil
}

// maskAPIKey returns a masked version of the API key (shows first 3 and last 3 chars)
func maskAPIKey(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
