package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, "library_db.csv", cfg.BooksFile)
	assert.Equal(t, "users.txt", cfg.UsersFile)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "admin123", cfg.Admin.Password)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("LIBRARY_BOOKS_FILE", "/srv/books.csv")
	t.Setenv("LIBRARY_ADMIN_PASSWORD", "hunter2")
	t.Setenv("LIBRARY_LOG_LEVEL", "debug")

	cfg, err := Load(viper.New(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/books.csv", cfg.BooksFile)
	assert.Equal(t, "hunter2", cfg.Admin.Password)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	data := "books_file: from-file.csv\n" +
		"users_file: accounts.txt\n" +
		"log:\n" +
		"  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("books", "", "")
	fs.String("users", "", "")
	require.NoError(t, fs.Parse([]string{"--books=from-flag.csv"}))

	cfg, err := Load(viper.New(), path, fs)
	require.NoError(t, err)

	assert.Equal(t, "from-flag.csv", cfg.BooksFile)
	assert.Equal(t, "accounts.txt", cfg.UsersFile)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		BooksFile: "b.csv",
		UsersFile: "u.txt",
		Admin:     AdminConfig{Username: "admin", Password: "pw"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no books file", func(c *Config) { c.BooksFile = " " }},
		{"no users file", func(c *Config) { c.UsersFile = "" }},
		{"no admin password", func(c *Config) { c.Admin.Password = "" }},
		{"colon in admin name", func(c *Config) { c.Admin.Username = "ad:min" }},
		{"same file twice", func(c *Config) { c.UsersFile = c.BooksFile }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAdminCredentials(t *testing.T) {
	creds := AdminConfig{Username: "boss", Password: "pw"}.Credentials()
	assert.Equal(t, "boss", creds.Username)
	assert.Equal(t, "pw", creds.Password)
}
