package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"adlauncher/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Secrets are masked.`,
	Example: `
  # Show active configuration
  adlauncher config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded (defaults and environment only)")
		}
		fmt.Println("Configuration:")
		printConfig(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "facebook.graph_url: %s\n", cfg.Facebook.GraphURL)
	fmt.Fprintf(w, "facebook.api_version: %s\n", cfg.Facebook.APIVersion)
	fmt.Fprintf(w, "facebook.ad_account_id: %s\n", cfg.Facebook.AdAccountID)
	fmt.Fprintf(w, "facebook.access_token: %s\n", maskSecret(cfg.Facebook.AccessToken))
	fmt.Fprintf(w, "facebook.page_id: %s\n", cfg.Facebook.PageID)
	fmt.Fprintf(w, "facebook.instagram_actor_id: %s\n", cfg.Facebook.InstagramActorID)
	fmt.Fprintf(w, "import.max_file_bytes: %d\n", cfg.Import.MaxFileBytes)
	fmt.Fprintf(w, "import.max_rows: %d\n", cfg.Import.MaxRows)
	fmt.Fprintf(w, "launch.concurrency: %d\n", cfg.Launch.Concurrency)
	fmt.Fprintf(w, "launch.default_cta: %s\n", cfg.Launch.DefaultCTA)
	fmt.Fprintf(w, "storage.bucket: %s\n", cfg.Storage.Bucket)
	fmt.Fprintf(w, "storage.endpoint: %s\n", cfg.Storage.Endpoint)
	fmt.Fprintf(w, "storage.region: %s\n", cfg.Storage.Region)
	fmt.Fprintf(w, "storage.access_key_id: %s\n", maskSecret(cfg.Storage.AccessKeyID))
	fmt.Fprintf(w, "storage.secret_access_key: %s\n", maskSecret(cfg.Storage.SecretAccessKey))
	fmt.Fprintf(w, "storage.presign_ttl: %s\n", cfg.Storage.PresignTTL)
	fmt.Fprintf(w, "storage.key_prefix: %s\n", cfg.Storage.KeyPrefix)
	fmt.Fprintf(w, "server.port: %d\n", cfg.Server.Port)
	fmt.Fprintf(w, "server.allowed_origins: %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))
	fmt.Fprintf(w, "log.level: %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "log.format: %s\n", cfg.Log.Format)
}

// maskSecret keeps the last four characters of values long enough to
// identify them.
func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return ""
	case len(value) <= 8:
		return "****"
	default:
		return "****" + value[len(value)-4:]
	}
}
