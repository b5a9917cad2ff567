package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"adlauncher/config"
	"adlauncher/facebook"
	"adlauncher/output"
)

var (
	adsAdSetID string
	adsLimit   int
	adsYes     bool
)

var adsCmd = &cobra.Command{
	Use:   "ads",
	Short: "Inspect and clean up ads in the configured ad account",
	Long: `Inspect ad sets and ads of the configured ad account and delete ads that were launched by mistake.

These commands talk to the Graph API directly; the local launch history is not modified.`,
}

var adsAdSetsCmd = &cobra.Command{
	Use:   "adsets",
	Short: "List ad sets (the IDs used in the Ad Set IDs column)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := adsClient()
		if err != nil {
			return err
		}

		adSets, err := client.ListAdSets(commandContext(cmd), cfg.Facebook.AdAccountID)
		if err != nil {
			return err
		}

		table := output.Table{Headers: []string{"ID", "Name", "Status", "Campaign"}}
		for _, adSet := range adSets {
			table.Rows = append(table.Rows, []string{adSet.ID, adSet.Name, adSet.Status, adSet.Campaign.Name})
		}
		if err := output.RenderText(cmd.OutOrStdout(), table, historyCellWidth); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nAd sets: %d\n", len(adSets))
		return nil
	},
}

var adsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent ads, or the ads of one ad set",
	Example: `
  # 25 most recent ads of the account
  adlauncher ads list --limit 25

  # Every ad in one ad set
  adlauncher ads list --adset 120210000000000001
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := adsClient()
		if err != nil {
			return err
		}

		ads, err := listAds(commandContext(cmd), client, cfg.Facebook.AdAccountID, adsAdSetID, adsLimit)
		if err != nil {
			return err
		}

		if err := output.RenderText(cmd.OutOrStdout(), adsTable(ads), historyCellWidth); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nAds: %d\n", len(ads))
		return nil
	},
}

var adsDeleteCmd = &cobra.Command{
	Use:   "delete <ad-id>...",
	Short: "Delete ads by ID",
	Long: `Delete ads by ID. Before deletion, an interactive security prompt requires typing exactly "Y"
unless --yes is set. Every ID is attempted; failures are reported per ID.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := adsClient()
		if err != nil {
			return err
		}

		if !adsYes {
			target := fmt.Sprintf("%d ad(s): %s", len(args), strings.Join(args, ", "))
			confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, target)
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}
		}

		failed := deleteAds(commandContext(cmd), client, args, cmd.OutOrStdout())
		if failed > 0 {
			return fmt.Errorf("%d of %d ad deletions failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adsCmd)
	adsCmd.AddCommand(adsAdSetsCmd)
	adsCmd.AddCommand(adsListCmd)
	adsCmd.AddCommand(adsDeleteCmd)

	adsListCmd.Flags().StringVar(&adsAdSetID, "adset", "", "Only list ads of this ad set")
	adsListCmd.Flags().IntVar(&adsLimit, "limit", 50, "Maximum number of recent ads (ignored with --adset)")
	adsDeleteCmd.Flags().BoolVar(&adsYes, "yes", false, "Skip the confirmation prompt")
}

func adsClient() (*config.Config, facebook.Client, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, nil, err
	}
	client, err := newFacebookClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func listAds(ctx context.Context, client facebook.Client, accountID, adSetID string, limit int) ([]facebook.Ad, error) {
	if strings.TrimSpace(adSetID) != "" {
		return client.ListAdsInAdSet(ctx, strings.TrimSpace(adSetID))
	}
	return client.ListAds(ctx, accountID, limit)
}

func adsTable(ads []facebook.Ad) output.Table {
	table := output.Table{Headers: []string{"ID", "Name", "Status", "Ad Set", "Creative"}}
	for _, ad := range ads {
		table.Rows = append(table.Rows, []string{ad.ID, ad.Name, ad.Status, ad.AdSet.Name, ad.Creative.ID})
	}
	return table
}

// deleteAds attempts every ID and returns the number of failures.
func deleteAds(ctx context.Context, client facebook.Client, adIDs []string, out io.Writer) int {
	failed := 0
	for _, adID := range adIDs {
		adID = strings.TrimSpace(adID)
		if err := client.DeleteAd(ctx, adID); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", adID, err)
			continue
		}
		fmt.Fprintf(out, "Deleted %s\n", adID)
	}
	return failed
}
