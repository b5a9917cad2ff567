package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"adlauncher/config"
)

var (
	configCreateAccount string
	configCreatePage    string
	configCreateToken   string
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

The --account, --page and --token flags seed the facebook section of the new file.
If a configuration file is already in use, no new file is written and seeding fails.`,
	Example: `
  # Create default config at $HOME/.adlauncher.yaml
  adlauncher config create

  # Create a config that can launch right away
  adlauncher config create --account act_1234 --page 5678 --token "$FB_TOKEN"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(os.Stdout, createSeedValues(configCreateAccount, configCreatePage, configCreateToken))
	},
}

// createSeedValues maps the non-empty seed flags to facebook config keys.
func createSeedValues(account, page, token string) map[string]string {
	values := map[string]string{}
	if account = strings.TrimPrefix(strings.TrimSpace(account), "act_"); account != "" {
		values["ad_account_id"] = account
	}
	if page = strings.TrimSpace(page); page != "" {
		values["page_id"] = page
	}
	if token = strings.TrimSpace(token); token != "" {
		values["access_token"] = token
	}
	return values
}

func saveDefaultConfig(out io.Writer, seed map[string]string) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		return err
	}

	if !created {
		if len(seed) > 0 {
			return fmt.Errorf("config file already exists at %s; use \"adlauncher config edit\" to change facebook values", configPath)
		}
		fmt.Fprintf(out, "Config file already exists at: %s\n", configPath)
		return nil
	}

	if len(seed) > 0 {
		if err := seedConfigFile(configPath, seed); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "New config file created at: %s\n", configPath)
	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading new config failed: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return fmt.Errorf("config validation failed in %s: %w", configPath, err)
	}
	warnIncompleteFacebook(out, cfg)
	return nil
}

func seedConfigFile(path string, seed map[string]string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading new config failed: %w", err)
	}
	updated, err := setFacebookValuesInConfigYAML(content, seed)
	if err != nil {
		// Leave no half-seeded file behind.
		_ = os.Remove(path)
		return err
	}
	if err := os.WriteFile(path, updated, 0o600); err != nil {
		return fmt.Errorf("writing seeded config failed: %w", err)
	}
	return nil
}

func init() {
	configCreateCmd.Flags().StringVar(&configCreateAccount, "account", "", "Facebook ad account id to store as facebook.ad_account_id")
	configCreateCmd.Flags().StringVar(&configCreatePage, "page", "", "Facebook page id to store as facebook.page_id")
	configCreateCmd.Flags().StringVar(&configCreateToken, "token", "", "Facebook access token to store as facebook.access_token")
	configCmd.AddCommand(configCreateCmd)
}
