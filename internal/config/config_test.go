package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("INCOLINK_EMAIL", "")
	t.Setenv("INCOLINK_PASSWORD", "")
	os.Unsetenv("INCOLINK_EMAIL")
	os.Unsetenv("INCOLINK_PASSWORD")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INCOLINK_EMAIL", "ops@example.com")
	t.Setenv("INCOLINK_PASSWORD", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ops@example.com", cfg.Email)
	assert.Equal(t, "invoices", cfg.OutputDir)
	assert.True(t, cfg.Headless)
	assert.NotZero(t, cfg.ElementTimeout)
	assert.NotZero(t, cfg.DownloadTimeout)
}

func TestResolveMemberNo(t *testing.T) {
	cfg := Config{MemberNo: "555000"}

	assert.Equal(t, "123456", cfg.ResolveMemberNo([]string{"123456"}), "CLI argument wins")
	assert.Equal(t, "555000", cfg.ResolveMemberNo(nil), "environment value next")

	cfg.MemberNo = ""
	assert.Equal(t, DefaultMemberNo, cfg.ResolveMemberNo(nil), "built-in default last")
}

func TestDefaultSelectorsOrdering(t *testing.T) {
	sel := DefaultSelectors()

	// The candidate order is the priority order; the typed-input selectors
	// must come first.
	require.NotEmpty(t, sel.EmailInputs)
	assert.Equal(t, `input[type="email"]`, sel.EmailInputs[0])
	require.NotEmpty(t, sel.PasswordInputs)
	assert.Equal(t, `input[type="password"]`, sel.PasswordInputs[0])

	assert.Equal(t, []string{"Login", "Sign in"}, sel.LoginTexts)
	assert.Equal(t, []string{"Export Invoice Details", "Export"}, sel.ExportTexts)
}

func TestLoadSelectorsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	data := "export_texts:\n  - \"Download Statement\"\nsearch_inputs:\n  - \"#member-search\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	sel, err := LoadSelectors(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Download Statement"}, sel.ExportTexts)
	assert.Equal(t, []string{"#member-search"}, sel.SearchInputs)
	// Untouched sets keep their defaults.
	assert.Equal(t, DefaultSelectors().LoginTexts, sel.LoginTexts)
}

func TestLoadSelectorsMissingExplicitFile(t *testing.T) {
	_, err := LoadSelectors(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
