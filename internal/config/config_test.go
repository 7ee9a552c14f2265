package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:          AppConfig{Environment: "development"},
		Logger:       LoggerConfig{Level: "info"},
		Data:         DataConfig{BasePath: "/some/path"},
		Auth:         AuthConfig{AccessTokenDuration: time.Hour, LoginRateLimit: 10},
		ShoppingList: ShoppingListConfig{FileName: "shopping_list.txt"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }, "invalid log level"},
		{"upper-case log level", func(c *Config) { c.Logger.Level = "DEBUG" }, ""},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "invalid log format"},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }, "data base path cannot be empty"},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }, "access token duration"},
		{"zero rate limit", func(c *Config) { c.Auth.LoginRateLimit = 0 }, "login rate limit"},
		{"slash in file name", func(c *Config) { c.ShoppingList.FileName = "../list.txt" }, "shopping list file name"},
		{"quote in file name", func(c *Config) { c.ShoppingList.FileName = `a"b.txt` }, "shopping list file name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDataConfig_Paths(t *testing.T) {
	d := DataConfig{BasePath: "/srv/foodgram"}

	assert.Equal(t, "/srv/foodgram/foodgram.db", d.DatabasePath())
	assert.Equal(t, "/srv/foodgram/media", d.MediaPath())
	assert.Equal(t, "/srv/foodgram/search", d.SearchPath())
}

func TestLoad_DefaultsAndFlags(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load([]string{
		"-env-file", filepath.Join(dataDir, "missing.env"),
		"-data-path", dataDir,
		"-port", "9090",
		"-allowed-origins", "http://localhost:3000, https://foodgram.example ,",
		"-access-token-duration", "2h",
	})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, dataDir, cfg.Data.BasePath)
	assert.Equal(t, []string{"http://localhost:3000", "https://foodgram.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, "shopping_list.txt", cfg.ShoppingList.FileName)
	assert.Equal(t, 10, cfg.Auth.LoginRateLimit)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("SHOPPING_LIST_FILENAME", "groceries.txt")
	t.Setenv("LOGIN_RATE_LIMIT", "3")

	cfg, err := Load([]string{"-env-file", "", "-data-path", t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "groceries.txt", cfg.ShoppingList.FileName)
	assert.Equal(t, 3, cfg.Auth.LoginRateLimit)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load([]string{"-env-file", "", "-data-path", t.TempDir(), "-read-timeout", "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid read timeout")
}

func TestExpandDataPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty uses default", "", filepath.Join(homeDir, "Foodgram", "data")},
		{"tilde", "~/my-data", filepath.Join(homeDir, "my-data")},
		{"absolute", "/absolute/path/to/data", "/absolute/path/to/data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Data: DataConfig{BasePath: tt.in}}
			require.NoError(t, cfg.expandDataPath())
			assert.Equal(t, tt.want, cfg.Data.BasePath)
		})
	}

	rel := &Config{Data: DataConfig{BasePath: "relative/path"}}
	require.NoError(t, rel.expandDataPath())
	assert.True(t, filepath.IsAbs(rel.Data.BasePath))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetIntConfigValue_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_INT_KEY", "lots")
	assert.Equal(t, 7, getIntConfigValue("", "TEST_INT_KEY", 7))
	assert.Equal(t, 12, getIntConfigValue("12", "TEST_INT_KEY", 7))
}

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# Test env file
FOODGRAM_TEST_LEVEL=debug

FOODGRAM_TEST_QUOTED="some value"
FOODGRAM_TEST_SINGLE='another value'
FOODGRAM_TEST_KEEP=from-file
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	t.Setenv("FOODGRAM_TEST_KEEP", "from-env")
	for _, key := range []string{"FOODGRAM_TEST_LEVEL", "FOODGRAM_TEST_QUOTED", "FOODGRAM_TEST_SINGLE"} {
		t.Setenv(key, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "debug", os.Getenv("FOODGRAM_TEST_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("FOODGRAM_TEST_QUOTED"))
	assert.Equal(t, "another value", os.Getenv("FOODGRAM_TEST_SINGLE"))
	assert.Equal(t, "from-env", os.Getenv("FOODGRAM_TEST_KEEP"), "environment wins over the file")
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALID=1\nINVALID LINE\n"), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}
