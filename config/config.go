package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"library-catalog/library"
	"library-catalog/logging"
)

// EnvPrefix is prepended to every environment variable, e.g.
// LIBRARY_BOOKS_FILE or LIBRARY_ADMIN_PASSWORD.
const EnvPrefix = "LIBRARY"

// Config holds the application configuration.
type Config struct {
	BooksFile string         `mapstructure:"books_file"`
	UsersFile string         `mapstructure:"users_file"`
	Admin     AdminConfig    `mapstructure:"admin"`
	Log       logging.Config `mapstructure:"log"`
}

// AdminConfig names the built-in administrator account.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Credentials converts the admin settings for the account store.
func (a AdminConfig) Credentials() library.Credentials {
	return library.Credentials{Username: a.Username, Password: a.Password}
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	admin := library.DefaultAdmin()

	v.SetDefault("books_file", "library_db.csv")
	v.SetDefault("users_file", "users.txt")
	v.SetDefault("admin.username", admin.Username)
	v.SetDefault("admin.password", admin.Password)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// Load resolves configuration from, in order of precedence, flags bound
// from fs (may be nil), LIBRARY_* environment variables, the config file at
// path (optional when empty) and defaults.
func Load(v *viper.Viper, path string, fs *pflag.FlagSet) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, flag := range map[string]string{
			"books_file": "books",
			"users_file": "users",
			"log.level":  "log-level",
			"log.format": "log-format",
			"log.output": "log-output",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required settings are present.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BooksFile) == "" {
		errs = append(errs, errors.New("books_file is required"))
	}
	if strings.TrimSpace(c.UsersFile) == "" {
		errs = append(errs, errors.New("users_file is required"))
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("admin.username and admin.password are required"))
	}
	if strings.Contains(c.Admin.Username+c.Admin.Password, ":") {
		errs = append(errs, errors.New("admin credentials must not contain ':'"))
	}
	if c.BooksFile != "" && c.BooksFile == c.UsersFile {
		errs = append(errs, errors.New("books_file and users_file must differ"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
