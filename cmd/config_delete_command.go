package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by adlauncher.

When the file still holds the Facebook access token or the storage secret key,
the command names them and asks for confirmation first. If no configuration file
is active, the command returns an error.`,
	Example: `
  # Delete active config
  adlauncher config delete

  # Delete config at a custom path
  adlauncher --configFile ./custom-adlauncher.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		deleted, err := deleteConfigFile(configPath, deletePromptInput, deletePromptOutput)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("Delete cancelled.")
			return nil
		}

		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

// deleteConfigFile removes path, asking first when it still stores secrets.
func deleteConfigFile(path string, input io.Reader, output io.Writer) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("error reading configuration file: %w", err)
	}

	if secrets := storedSecrets(content); len(secrets) > 0 {
		if output == nil {
			output = io.Discard
		}
		fmt.Fprintf(output, "%s stores %s.\n", path, strings.Join(secrets, " and "))
		confirmed, err := confirmDeletePrompt(input, output, path)
		if err != nil {
			return false, err
		}
		if !confirmed {
			return false, nil
		}
	}

	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("error deleting configuration file: %w", err)
	}
	return true, nil
}

// storedSecrets lists the credential keys set in a config document, even when
// the rest of the document would not validate.
func storedSecrets(content []byte) []string {
	doc := map[string]any{}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil
	}

	var secrets []string
	for _, key := range []struct{ section, field string }{
		{section: "facebook", field: "access_token"},
		{section: "storage", field: "secret_access_key"},
	} {
		section, err := ensureMapAny(doc, key.section)
		if err != nil {
			continue
		}
		if value := strings.TrimSpace(fmt.Sprint(section[key.field])); section[key.field] != nil && value != "" {
			secrets = append(secrets, key.section+"."+key.field)
		}
	}
	return secrets
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
