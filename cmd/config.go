package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage adlauncher configuration file values.",
	Long: `Create, edit, display, and delete the adlauncher configuration file.

The configuration stores:
- facebook.* Graph API URL/version, ad account, access token, page and Instagram actor
- import.max_file_bytes / import.max_rows upload caps
- launch.concurrency / launch.default_cta
- storage.* S3-compatible media bucket (Cloudflare R2)
- server.port / server.allowed_origins
- log.level / log.format

Every key can be overridden by an ADLAUNCHER_* environment variable, e.g.
ADLAUNCHER_FACEBOOK_ACCESS_TOKEN.`,
	Example: `
  # Create default config in $HOME/.adlauncher.yaml
  adlauncher config create

  # Show active config and source file
  adlauncher config show

  # Open active config in editor (creates example if missing)
  adlauncher config edit

  # Delete active config file
  adlauncher config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
