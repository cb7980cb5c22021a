// Program uidtable looks up ExpressLRS binding phrases by UID.
//
// Usage:
//
//	uidtable [uid]            look up one uid, or prompt for uids on stdin
//	uidtable generate         build the table from the lists directory
//	uidtable fetch --out FILE download the configured word lists
//	uidtable serve            serve lookups over HTTP
//	uidtable verify           check a table file
//
// When the table file is missing, lookup and serve build it from the
// configured remote word lists first.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tamirms/uidtable/internal/config"
	"github.com/tamirms/uidtable/internal/logging"
	"github.com/tamirms/uidtable/internal/startup"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	tablePath  string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// newLogger builds the process logger.
var newLogger = logging.New

// errNotFound makes the process exit 1 without printing anything more.
var errNotFound = errors.New("binding phrase not found")

var rootCmd = &cobra.Command{
	Use:   "uidtable [uid]",
	Short: "Find the ExpressLRS binding phrase for a uid",
	Long: `uidtable reverses ExpressLRS uids into binding phrases using a
precomputed table of hashed word-list phrases.

With a uid argument (six comma-separated octets, e.g. 65,245,33,230,58,226)
it prints the binding phrase and exits 0, or exits 1 if none is known.
Without an argument it reads one uid per line from standard input.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if tablePath != "" {
			cfg.Table = tablePath
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = newLogger(level)
		return err
	},
	RunE: runLookup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("UIDTABLE_CONFIG"), "YAML config file")
	rootCmd.PersistentFlags().StringVar(&tablePath, "table", "", "table file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "words.txt", "file to write the fetched words to")

	rootCmd.AddCommand(generateCmd, fetchCmd, serveCmd, verifyCmd)
}

func loader() *startup.Loader {
	return &startup.Loader{Config: cfg, Log: logger}
}

// run executes the command line and flushes the logger on every path,
// including failed commands, which skip cobra's post-run hooks.
func run() error {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errNotFound) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
