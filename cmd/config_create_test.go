package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"adlauncher/config"
)

func TestSaveDefaultConfigCreatesExampleTemplate(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "create-template.yaml")
	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig(&bytes.Buffer{}, nil); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}

	text := string(content)
	if !strings.Contains(text, "# adlauncher configuration") {
		t.Fatalf("expected example header in config file, got:\n%s", text)
	}
	if !strings.Contains(text, "facebook:") || !strings.Contains(text, "graph_url: \"https://graph.facebook.com\"") {
		t.Fatalf("expected facebook graph URL example in config file, got:\n%s", text)
	}
	if _, err := config.ValidateYAMLContent(content); err != nil {
		t.Fatalf("expected example template to validate, got %v", err)
	}
}

func TestSaveDefaultConfigDoesNotOverwriteExistingFile(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "existing.yaml")
	original := "facebook:\n  ad_account_id: \"123\"\nlaunch:\n  concurrency: 2\n"
	if err := os.WriteFile(tmpConfig, []byte(original), 0o644); err != nil {
		t.Fatalf("failed writing initial config: %v", err)
	}

	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig(&bytes.Buffer{}, nil); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("failed reading existing config after create: %v", err)
	}
	if string(content) != original {
		t.Fatalf("expected existing config to remain unchanged")
	}
}

func TestSaveDefaultConfigSeedsFacebookValues(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "seeded.yaml")
	cfgFile = tmpConfig
	viper.Reset()

	var out bytes.Buffer
	seed := createSeedValues(" act_1234 ", "5678", "tok")
	if err := saveDefaultConfig(&out, seed); err != nil {
		t.Fatalf("unexpected error creating seeded config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("expected seeded config to validate, got %v", err)
	}
	if cfg.Facebook.AdAccountID != "1234" || cfg.Facebook.PageID != "5678" || cfg.Facebook.AccessToken != "tok" {
		t.Fatalf("unexpected facebook section: %+v", cfg.Facebook)
	}
	if cfg.Facebook.GraphURL != "https://graph.facebook.com" {
		t.Fatalf("expected template keys to survive seeding, got graph url %q", cfg.Facebook.GraphURL)
	}
	if strings.Contains(out.String(), "Warning:") {
		t.Fatalf("expected no facebook warning for a complete seed, got %q", out.String())
	}
}

func TestSaveDefaultConfigWarnsWithoutCredentials(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	cfgFile = filepath.Join(t.TempDir(), "unseeded.yaml")
	viper.Reset()

	var out bytes.Buffer
	if err := saveDefaultConfig(&out, createSeedValues("", "", "")); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}
	if !strings.Contains(out.String(), config.ErrFacebookNotConfigured.Error()) {
		t.Fatalf("expected facebook warning, got %q", out.String())
	}
}

func TestSaveDefaultConfigRejectsSeedForExistingFile(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "existing.yaml")
	original := "facebook:\n  ad_account_id: \"123\"\n"
	if err := os.WriteFile(tmpConfig, []byte(original), 0o600); err != nil {
		t.Fatalf("failed writing initial config: %v", err)
	}
	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig(&bytes.Buffer{}, map[string]string{"page_id": "5"}); err == nil {
		t.Fatalf("expected seeding an existing config to fail")
	}
	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("failed reading existing config: %v", err)
	}
	if string(content) != original {
		t.Fatalf("expected existing config to remain unchanged")
	}
}

func TestSaveDefaultConfigRemovesFileWhenSeedIsInvalid(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "bad-seed.yaml")
	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig(&bytes.Buffer{}, createSeedValues("not-a-number", "", "")); err == nil {
		t.Fatalf("expected non-numeric account id to fail validation")
	}
	if _, err := os.Stat(tmpConfig); !os.IsNotExist(err) {
		t.Fatalf("expected no config file left behind, stat err=%v", err)
	}
}
