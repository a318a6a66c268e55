package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "library",
	Short:         "Library catalog and account manager",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `library - console catalog of library books with reader and administrator accounts.

Books are kept in a comma-delimited file (default library_db.csv) and accounts
in a colon-delimited file (default users.txt). On first start an administrator
account "admin" is created with the configured default password.

Settings may come from flags, LIBRARY_* environment variables or a config file:
    books_file: library_db.csv
    users_file: users.txt
    admin:
      username: admin
      password: admin123
    log:
      level: info
      format: console
      output: stderr`,
	RunE: runLibrary,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&cfgFile, "config", "c", "", "path to config file (optional)")
	f.String("books", "", "catalog file (default library_db.csv)")
	f.String("users", "", "accounts file (default users.txt)")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("log-format", "", "log format: console or json")
	f.String("log-output", "", "log output: stderr, stdout, discard or a file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runLibrary(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.New(), cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	mgr := library.NewLibraryManager(afero.NewOsFs(), library.Options{
		BooksFile: cfg.BooksFile,
		UsersFile: cfg.UsersFile,
		Admin:     cfg.Admin.Credentials(),
		Logger:    logger,
	})

	sh := newShell(os.Stdin, cmd.OutOrStdout(), mgr)
	if term.IsTerminal(int(syscall.Stdin)) {
		sh.readPassword = readPassword
	}
	sh.run()

	// A failed save is reported but does not change the exit status.
	if err := mgr.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error saving catalog: %v\n", err)
	}
	return nil
}

// readPassword reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}
