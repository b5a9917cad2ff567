package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"adlauncher/config"
	"adlauncher/facebook"
)

var configPageTimeout time.Duration

var configPageCmd = &cobra.Command{
	Use:   "page",
	Short: "Interactively choose the Facebook page used for ad creatives.",
	Long: `Fetch the pages the configured ad account may promote, let you choose one
interactively, then store it as facebook.page_id in config.

Requires facebook.ad_account_id and facebook.access_token to be set already.`,
	Example: `
  # Choose the page for the configured ad account
  adlauncher config page
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		if _, err := ensureConfigFileWithTemplate(configPath); err != nil {
			return err
		}

		current, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		cfg, err := config.ValidateYAMLContent(current)
		if err != nil {
			return fmt.Errorf("config validation failed in %s: %w", configPath, err)
		}
		if strings.TrimSpace(cfg.Facebook.AdAccountID) == "" || strings.TrimSpace(cfg.Facebook.AccessToken) == "" {
			return config.ErrFacebookNotConfigured
		}

		client, err := facebook.NewClient(facebook.ClientConfig{
			BaseURL:     cfg.Facebook.GraphBaseURL(),
			AccessToken: cfg.Facebook.AccessToken,
			UserAgent:   userAgent,
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(commandContext(cmd), configPageTimeout)
		defer cancel()

		pages, err := client.ListPages(ctx, cfg.Facebook.AdAccountID)
		if err != nil {
			return fmt.Errorf("fetch promotable pages: %w", err)
		}
		if len(pages) == 0 {
			return fmt.Errorf("no promotable pages found for ad account %s", cfg.Facebook.AdAccountID)
		}
		sort.Slice(pages, func(i, j int) bool {
			left := strings.ToLower(strings.TrimSpace(pages[i].Name))
			right := strings.ToLower(strings.TrimSpace(pages[j].Name))
			if left == right {
				return pages[i].ID < pages[j].ID
			}
			return left < right
		})

		reader := bufio.NewReader(os.Stdin)
		selected, err := promptSelectIndex(reader, os.Stdout, "Select page:", pageOptionLines(pages))
		if err != nil {
			return err
		}
		page := pages[selected]

		updated, err := setFacebookValuesInConfigYAML(current, map[string]string{"page_id": page.ID})
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, updated, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		fmt.Println("Page saved successfully.")
		fmt.Printf("Config: %s\n", configPath)
		fmt.Printf("Page:   %s (id=%s)\n", page.Name, page.ID)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPageCmd)

	configPageCmd.Flags().DurationVar(&configPageTimeout, "timeout", 30*time.Second, "Timeout for the Graph API lookup")
}

func pageOptionLines(pages []facebook.Page) []string {
	lines := make([]string, 0, len(pages))
	for _, page := range pages {
		lines = append(lines, fmt.Sprintf("%s (id=%s)", page.Name, page.ID))
	}
	return lines
}

func promptSelectIndex(reader *bufio.Reader, out io.Writer, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("no options available for %q", title)
	}

	for {
		fmt.Fprintln(out, title)
		for i, option := range options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, option)
		}
		fmt.Fprintf(out, "Choose [1-%d]: ", len(options))

		input, err := reader.ReadString('\n')
		if err != nil {
			return -1, fmt.Errorf("read selection input: %w", err)
		}
		choice, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil || choice < 1 || choice > len(options) {
			fmt.Fprintln(out, "Invalid selection. Please enter a valid number.")
			continue
		}
		return choice - 1, nil
	}
}

// setFacebookValuesInConfigYAML writes values under the facebook section and
// returns the re-validated document.
func setFacebookValuesInConfigYAML(content []byte, values map[string]string) ([]byte, error) {
	doc := map[string]any{}
	if strings.TrimSpace(string(content)) != "" {
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	section, err := ensureMapAny(doc, "facebook")
	if err != nil {
		return nil, err
	}
	for key, value := range values {
		section[key] = value
	}
	doc["facebook"] = section

	updated, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal updated config yaml: %w", err)
	}
	if _, err := config.ValidateYAMLContent(updated); err != nil {
		return nil, fmt.Errorf("updated config is invalid: %w", err)
	}
	return updated, nil
}

func ensureMapAny(doc map[string]any, key string) (map[string]any, error) {
	raw, exists := doc[key]
	if !exists || raw == nil {
		return map[string]any{}, nil
	}
	result, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("config key %q must be a mapping", key)
	}
	return result, nil
}
