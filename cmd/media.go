package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"adlauncher/config"
	"adlauncher/output"
)

var (
	mediaAccountID string
	mediaPrefix    string
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Manage creative media in object storage",
	Long: `Upload, list and delete creative media in the configured S3-compatible bucket (Cloudflare R2 or S3).

Uploaded objects are returned with a presigned URL that can be pasted into the
"Video URLs" or carousel media columns of a bulk ad file.`,
}

var mediaUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload local media files and print their presigned URLs",
	Example: `
  # Upload two creatives into the configured account folder
  adlauncher media upload ./hero.jpg ./promo.mp4
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		store, err := newMediaStore(ctx, cfg)
		if err != nil {
			return err
		}

		account := mediaAccountID
		if account == "" {
			account = cfg.Facebook.AdAccountID
		}

		for _, path := range args {
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open media file %s: %w", path, err)
			}

			key := store.KeyFor(account, filepath.Base(path))
			object, err := store.Upload(ctx, key, file, "")
			file.Close()
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", object.Key, object.URL)
		}
		return nil
	},
}

var mediaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded media, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		store, err := newMediaStore(ctx, cfg)
		if err != nil {
			return err
		}

		prefix := mediaPrefix
		if prefix == "" {
			prefix = cfg.Storage.KeyPrefix
		}
		objects, err := store.List(ctx, prefix)
		if err != nil {
			return err
		}

		table := output.Table{Headers: []string{"Key", "Size", "Last Modified", "URL"}}
		for _, object := range objects {
			table.Rows = append(table.Rows, []string{
				object.Key,
				strconv.FormatInt(object.Size, 10),
				object.LastModified.Local().Format("2006-01-02 15:04"),
				object.URL,
			})
		}
		if err := output.RenderText(cmd.OutOrStdout(), table, 0); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nObjects: %d (bucket %s)\n", len(objects), store.Bucket())
		return nil
	},
}

var mediaDeleteCmd = &cobra.Command{
	Use:   "delete <key>...",
	Short: "Delete media objects by key",
	Long: `Delete media objects by key. Ads that already reference an uploaded creative keep working,
because Facebook stores its own copy at launch time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		target := fmt.Sprintf("%d media object(s): %s", len(args), strings.Join(args, ", "))
		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, target)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		ctx := commandContext(cmd)
		store, err := newMediaStore(ctx, cfg)
		if err != nil {
			return err
		}

		deleted, err := store.Delete(ctx, args...)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted objects: %d\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mediaCmd)
	mediaCmd.AddCommand(mediaUploadCmd)
	mediaCmd.AddCommand(mediaListCmd)
	mediaCmd.AddCommand(mediaDeleteCmd)

	mediaUploadCmd.Flags().StringVar(&mediaAccountID, "account", "", "Account folder for the object key (default: facebook.ad_account_id)")
	mediaListCmd.Flags().StringVar(&mediaPrefix, "prefix", "", "Key prefix to list (default: storage.key_prefix)")
}
