package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage corpus configuration",
	Long: `View and change staging options and backend credentials.

Staging options live under staging.* keys; backend access options
(credentials, endpoints, rate limits) live under backends.<id>.<key>
and are passed to the backend factory unmodified.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all persisted configuration values",
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a staging option or backend access option.

Examples:
  corpus config set staging.max_workers 8
  corpus config set staging.expand_archives false
  corpus config set backends.s3.endpoint_url http://localhost:9000`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetCredentialCmd = &cobra.Command{
	Use:   "set-credential <backend> <key> [value]",
	Short: "Store a backend credential",
	Long: `Store one backend access option, prompting with hidden input when
the value is omitted.

Examples:
  corpus config set-credential dropbox access_token
  corpus config set-credential s3 secret_access_key
  corpus config set-credential az account_name mystorageaccount`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runConfigSetCredential,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetCredentialCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Printf("Configuration file: %s\n\n", settingsService.Path())

	keys := settingsService.Keys()
	if len(keys) == 0 {
		cmd.Println("No settings saved; defaults apply.")
		return nil
	}

	for _, key := range keys {
		value, ok := settingsService.GetOption(key)
		if !ok {
			continue
		}
		if credentialKey(key) {
			value = maskCredential(value)
		}
		cmd.Printf("%s = %s\n", key, value)
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	value, ok := settingsService.GetOption(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}

	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, raw := args[0], args[1]

	if backend, option, ok := splitBackendKey(key); ok {
		if err := settingsService.SetBackendOption(backend, option, raw); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
		cmd.Printf("Set %s\n", key)
		return nil
	}

	value, err := parseOptionValue(key, raw)
	if err != nil {
		return err
	}
	if err := settingsService.SetOption(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

func runConfigSetCredential(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	backend := domain.Backend(args[0])
	key := args[1]

	var value string
	if len(args) == 3 {
		value = args[2]
	} else {
		cmd.Printf("Enter %s for %s (input hidden): ", key, backend)
		value = readPassword()
		cmd.Println()
	}
	if value == "" {
		return errors.New("empty value, credential unchanged")
	}

	if err := settingsService.SetBackendOption(backend, key, value); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	cmd.Printf("Stored backends.%s.%s = %s\n", backend, key, maskCredential(value))
	return nil
}

// parseOptionValue converts the set command's text argument into the
// typed value the settings service expects for the key. Unknown keys
// pass through as strings and are rejected by the service.
func parseOptionValue(key, raw string) (any, error) {
	switch key {
	case "staging.recursive", "staging.expand_archives", "staging.keep_cache":
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", key, raw)
		}
		return value, nil
	case "staging.max_workers":
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", key, raw)
		}
		return value, nil
	default:
		return raw, nil
	}
}

// splitBackendKey decomposes backends.<id>.<option> keys.
func splitBackendKey(key string) (domain.Backend, string, bool) {
	rest, found := strings.CutPrefix(key, "backends.")
	if !found {
		return "", "", false
	}
	backend, option, found := strings.Cut(rest, ".")
	if !found || backend == "" || option == "" {
		return "", "", false
	}
	return domain.Backend(backend), option, true
}

// credentialKey reports whether a backend option holds a secret that
// listings should mask.
func credentialKey(key string) bool {
	if !strings.HasPrefix(key, "backends.") {
		return false
	}
	leaf := key[strings.LastIndex(key, ".")+1:]
	for _, marker := range []string{"token", "secret", "key", "password"} {
		if strings.Contains(leaf, marker) {
			return true
		}
	}
	return false
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskCredential(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
