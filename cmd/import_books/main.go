package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logging"
)

var cfgFile string

var importCmd = &cobra.Command{
	Use:          "import_books <source.csv>...",
	Short:        "Import books from CSV files into the catalog",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	Long: `import_books appends the books of one or more CSV files, in the catalog's own
article,author,title,price,shelf,reader format, to the catalog file.

Books whose article is already catalogued are skipped, as are lines that
cannot be parsed. A summary is printed at the end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.New(), cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		return runImport(afero.NewOsFs(), cfg.BooksFile, args, cmd.OutOrStdout(), logger)
	},
}

func init() {
	f := importCmd.Flags()
	f.StringVarP(&cfgFile, "config", "c", "", "path to config file (optional)")
	f.String("books", "", "catalog file (default library_db.csv)")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("log-output", "", "log output: stderr, stdout, discard or a file path")
}

func main() {
	if err := importCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runImport loads the catalog, imports paths into it and saves it. An
// existing catalog that cannot be read is left alone.
func runImport(fs afero.Fs, booksFile string, paths []string, out io.Writer, logger *zap.Logger) error {
	catalog := library.NewCatalog(library.NewFileBookStore(fs, booksFile), logger)
	if err := catalog.LoadErr(); err != nil {
		return fmt.Errorf("catalog %s could not be read, nothing imported: %w", booksFile, err)
	}
	sum := importFiles(fs, catalog, paths, out)
	if err := catalog.Save(); err != nil {
		return err
	}
	sum.print(out, catalog)
	return nil
}

type summary struct {
	imported   int
	duplicates int
	corrupt    int
	errors     int
}

func importFiles(fs afero.Fs, catalog *library.Catalog, paths []string, out io.Writer) summary {
	var sum summary
	for _, path := range paths {
		fmt.Fprintf(out, "Importing from %s...\n", path)

		books, warnings, err := library.NewFileBookStore(fs, path).LoadBooks()
		if errors.Is(err, library.ErrNoData) {
			fmt.Fprintf(out, "  ERROR - %s does not exist\n", path)
			sum.errors++
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "  ERROR - %v\n", err)
			sum.errors++
			continue
		}
		for _, w := range warnings {
			fmt.Fprintf(out, "  Warning: skipped %v\n", w)
		}
		sum.corrupt += len(warnings)

		for _, b := range books {
			err := catalog.AddBook(b)
			switch {
			case errors.Is(err, library.ErrAlreadyExists):
				fmt.Fprintf(out, "  %s: already catalogued, skipping\n", b.Article)
				sum.duplicates++
			case err != nil:
				fmt.Fprintf(out, "  %s: ERROR - %v\n", b.Article, err)
				sum.errors++
			default:
				sum.imported++
			}
		}
	}
	return sum
}

func (s summary) print(out io.Writer, catalog *library.Catalog) {
	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books\n", s.imported)
	fmt.Fprintf(out, "Duplicates skipped: %d\n", s.duplicates)
	fmt.Fprintf(out, "Corrupt lines skipped: %d\n", s.corrupt)
	fmt.Fprintf(out, "Errors: %d\n", s.errors)
	fmt.Fprintf(out, "Catalog now holds %d books\n", catalog.Len())
}
