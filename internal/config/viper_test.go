package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate moves the test into an empty working directory and home, so no
// stray config file or variable leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{
		"MPRRECON_LOG_LEVEL",
		"MPRRECON_LOG_FORMAT",
		"MPRRECON_CSV_DELIMITER",
		"MPRRECON_INPUT_ENCODING",
		"MPRRECON_RECON_TOLERANCE",
		"MPRRECON_RECON_ONE_TO_ONE",
		"MPRRECON_OUTPUT_FORMAT",
		"MPRRECON_OUTPUT_PREVIEW_ROWS",
		"MPRRECON_PROFILES_FILE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
	return dir
}

func TestInitializeConfig_Defaults(t *testing.T) {
	isolate(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.Equal(t, "utf-8", config.Input.Encoding)
	assert.Equal(t, "0.01", config.Recon.Tolerance)
	assert.False(t, config.Recon.OneToOne)
	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, 5, config.Output.PreviewRows)
	assert.Equal(t, "mapping_profiles.yaml", config.Profiles.File)

	assert.Equal(t, "0.01", config.Tolerance().String())
	assert.Equal(t, ',', config.Delimiter())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)

	testEnvVars := map[string]string{
		"MPRRECON_LOG_LEVEL":           "debug",
		"MPRRECON_LOG_FORMAT":          "json",
		"MPRRECON_CSV_DELIMITER":       ";",
		"MPRRECON_INPUT_ENCODING":      "windows-1252",
		"MPRRECON_RECON_TOLERANCE":     "0.5",
		"MPRRECON_RECON_ONE_TO_ONE":    "true",
		"MPRRECON_OUTPUT_FORMAT":       "yaml",
		"MPRRECON_OUTPUT_PREVIEW_ROWS": "10",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ';', config.Delimiter())
	assert.Equal(t, "windows-1252", config.Input.Encoding)
	assert.Equal(t, "0.5", config.Tolerance().String())
	assert.True(t, config.Recon.OneToOne)
	assert.Equal(t, "yaml", config.Output.Format)
	assert.Equal(t, 10, config.Output.PreviewRows)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	dir := isolate(t)

	configContent := `
log:
  level: "warn"
csv:
  delimiter: "|"
recon:
  tolerance: "1.00"
  one_to_one: true
profiles:
  file: "gateways.yaml"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configContent), 0600))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, "1", config.Tolerance().String())
	assert.True(t, config.Recon.OneToOne)
	assert.Equal(t, "gateways.yaml", config.Profiles.File)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: warn\noutput:\n  format: csv\n"), 0600))
	t.Setenv("MPRRECON_LOG_LEVEL", "error")

	config, err := InitializeConfig()
	require.NoError(t, err)

	// Environment beats file, file beats defaults.
	assert.Equal(t, "error", config.Log.Level)
	assert.Equal(t, "csv", config.Output.Format)
	assert.Equal(t, "text", config.Log.Format)
}

func TestInitializeConfigFromFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  preview_rows: 3\n"), 0600))

	config, err := InitializeConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, config.Output.PreviewRows)

	_, err = InitializeConfigFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Log.Level = "info"
		c.Log.Format = "text"
		c.CSV.Delimiter = ","
		c.Input.Encoding = "utf-8"
		c.Recon.Tolerance = "0.01"
		c.Output.Format = "json"
		c.Output.PreviewRows = 5
		c.Profiles.File = "mapping_profiles.yaml"
		return c
	}

	require.NoError(t, validateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"long delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }, "csv.delimiter"},
		{"unknown encoding", func(c *Config) { c.Input.Encoding = "utf-16" }, "input.encoding"},
		{"non-numeric tolerance", func(c *Config) { c.Recon.Tolerance = "cent" }, "recon.tolerance must be a decimal"},
		{"zero tolerance", func(c *Config) { c.Recon.Tolerance = "0" }, "recon.tolerance must be positive"},
		{"negative tolerance", func(c *Config) { c.Recon.Tolerance = "-0.01" }, "recon.tolerance must be positive"},
		{"unsupported output", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"preview rows", func(c *Config) { c.Output.PreviewRows = 0 }, "output.preview_rows"},
		{"empty profiles file", func(c *Config) { c.Profiles.File = " " }, "profiles.file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validateConfig(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	c := &Config{}
	c.Log.Level = "debug"
	c.Log.Format = "json"

	logger := NewLogger(c)
	require.NotNil(t, logger)

	type leveled interface{ Level() logrus.Level }
	l, ok := logger.(leveled)
	require.True(t, ok)
	assert.Equal(t, logrus.DebugLevel, l.Level())
}

func TestLoadEnv(t *testing.T) {
	dir := isolate(t)

	file, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "", file)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MPRRECON_TEST_ONLY=from-dotenv\n"), 0600))
	t.Setenv("MPRRECON_TEST_ONLY", "")
	require.NoError(t, os.Unsetenv("MPRRECON_TEST_ONLY"))

	file, err = LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ".env", file)
	assert.Equal(t, "from-dotenv", GetEnv("MPRRECON_TEST_ONLY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("MPRRECON_UNSET_KEY", "fallback"))
}
