package cmd

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"adlauncher/config"
	"adlauncher/facebook"
)

func TestSetFacebookValuesInConfigYAML_KeepsOtherKeys(t *testing.T) {
	t.Parallel()

	input := []byte(`facebook:
  ad_account_id: "123"
  access_token: "secret-token"
launch:
  concurrency: 2
`)

	updated, err := setFacebookValuesInConfigYAML(input, map[string]string{"page_id": "987"})
	if err != nil {
		t.Fatalf("set page id failed: %v", err)
	}

	cfg, err := config.ValidateYAMLContent(updated)
	if err != nil {
		t.Fatalf("updated yaml should validate: %v", err)
	}
	if cfg.Facebook.PageID != "987" {
		t.Fatalf("expected page id 987, got %q", cfg.Facebook.PageID)
	}
	if cfg.Facebook.AdAccountID != "123" || cfg.Facebook.AccessToken != "secret-token" {
		t.Fatalf("expected existing facebook keys to survive, got %+v", cfg.Facebook)
	}
	if cfg.Launch.Concurrency != 2 {
		t.Fatalf("expected launch.concurrency 2, got %d", cfg.Launch.Concurrency)
	}
}

func TestSetFacebookValuesInConfigYAML_CreatesSection(t *testing.T) {
	t.Parallel()

	updated, err := setFacebookValuesInConfigYAML(nil, map[string]string{"page_id": "42"})
	if err != nil {
		t.Fatalf("set page id failed: %v", err)
	}
	cfg, err := config.ValidateYAMLContent(updated)
	if err != nil {
		t.Fatalf("updated yaml should validate: %v", err)
	}
	if cfg.Facebook.PageID != "42" {
		t.Fatalf("expected page id 42, got %q", cfg.Facebook.PageID)
	}
}

func TestSetFacebookValuesInConfigYAML_RejectsInvalidResult(t *testing.T) {
	t.Parallel()

	if _, err := setFacebookValuesInConfigYAML([]byte("facebook: []\n"), map[string]string{"page_id": "1"}); err == nil {
		t.Fatalf("expected error for non-mapping facebook section")
	}
	if _, err := setFacebookValuesInConfigYAML(nil, map[string]string{"page_id": "not-numeric"}); err == nil {
		t.Fatalf("expected validation error for non-numeric page id")
	}
}

func TestPromptSelectIndex_RetriesUntilValid(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("0\nabc\n2\n"))
	options := pageOptionLines([]facebook.Page{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Beta"}})

	got, err := promptSelectIndex(reader, &out, "Select page:", options)
	if err != nil {
		t.Fatalf("prompt failed: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if strings.Count(out.String(), "Invalid selection") != 2 {
		t.Fatalf("expected two invalid selection notices, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Beta (id=2)") {
		t.Fatalf("expected option line for Beta, got:\n%s", out.String())
	}
}
