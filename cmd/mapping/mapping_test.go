package mapping

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/mpr-recon/internal/config"
	"fjacquet/mpr-recon/internal/container"
	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*container.Container, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.Input.Encoding = "utf-8"
	cfg.Recon.Tolerance = "0.01"
	cfg.Output.Format = "json"
	cfg.Output.PreviewRows = 5
	cfg.Profiles.File = filepath.Join(dir, "profiles.yaml")
	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	file := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(file, []byte("Order No,Amt,Txn Time\nA1,10.00,2025-01-01\nA2,20.00,2025-01-02\nA3,30.00,2025-01-03\n"), 0600))
	return c, file
}

func TestDetect(t *testing.T) {
	c, file := setup(t)

	var out bytes.Buffer
	err := Detect(c, DetectOptions{Role: "internal", Input: file, Rows: 2}, &out)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Internal dataset: ledger.csv (3 rows)")
	assert.Contains(t, s, "Mapping incomplete, missing: transaction_id")
	assert.Contains(t, s, "A2")
	assert.NotContains(t, s, "A3")
}

func TestDetect_OverrideAndSave(t *testing.T) {
	c, file := setup(t)

	var out bytes.Buffer
	err := Detect(c, DetectOptions{
		Role:  "internal",
		Input: file,
		Maps:  []string{"internal.transaction_id=Order No"},
		Save:  "ledger",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Mapping complete")
	assert.Contains(t, out.String(), `Saved profile "ledger"`)

	profile, err := c.GetStore().Get("ledger")
	require.NoError(t, err)
	assert.Equal(t, models.RoleInternal, profile.Role)
	assert.Equal(t, "Order No", profile.Mapping["transaction_id"])
	assert.Equal(t, "Amt", profile.Mapping["amount"])

	out.Reset()
	err = Detect(c, DetectOptions{Role: "internal", Input: file, Profile: "ledger"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Mapping complete")

	err = Detect(c, DetectOptions{Role: "mpr", Input: file, Profile: "ledger"}, &out)
	assert.Error(t, err)
}

func TestDetect_Errors(t *testing.T) {
	c, file := setup(t)

	assert.Error(t, Detect(c, DetectOptions{Role: "gateway", Input: file}, &bytes.Buffer{}))
	assert.Error(t, Detect(c, DetectOptions{Role: "mpr", Input: file + ".missing"}, &bytes.Buffer{}))
	assert.Error(t, Detect(c, DetectOptions{Role: "mpr", Input: file, Profile: "unknown"}, &bytes.Buffer{}))
}

func TestPrintSchema(t *testing.T) {
	var out bytes.Buffer
	PrintSchema(&out, models.RoleBank)
	s := out.String()
	assert.Contains(t, s, "Bank fields")
	assert.Contains(t, s, "narration")
	assert.Contains(t, s, "settlement_account")
}
