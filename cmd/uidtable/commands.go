package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/creachadair/atomicfile"
	"github.com/spf13/cobra"
	"github.com/tamirms/uidtable"
	"github.com/tamirms/uidtable/internal/cli"
	"github.com/tamirms/uidtable/internal/server"
	"go.uber.org/zap"
)

// runLookup implements the root command.
func runLookup(cmd *cobra.Command, args []string) error {
	table, err := loader().LoadTable(cmd.Context())
	if err != nil {
		return err
	}
	defer table.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d entries\n", table.Len())

	s := &cli.Session{Table: table, Out: out, Log: logger}
	if len(args) == 0 {
		return s.Interactive(cmd.InOrStdin())
	}
	found, err := s.Lookup(args[0])
	if err != nil {
		return err
	}
	if !found {
		return errNotFound
	}
	return nil
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the table from the local word lists",
	Long: `Reads every file in the configured lists directory (files ending in
.gz, .zst or .lz4 are decompressed), adds the built-in base words, and
writes the table file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loader().GenerateFromDir(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated lookup table with %d entries\n", table.Len())
		return nil
	},
}

var fetchOut string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the configured word lists into one file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		words, err := loader().FetchWords(cmd.Context())
		if err != nil {
			return err
		}
		err = atomicfile.Tx(fetchOut, 0644, func(f *atomicfile.File) error {
			_, err := f.Write(words)
			return err
		})
		if err != nil {
			return fmt.Errorf("write words: %w", err)
		}
		logger.Info("wrote words", zap.String("path", fetchOut), zap.Int("bytes", len(words)))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve uid lookups over HTTP",
	Long: `Loads (or builds) the table, then answers GET /{uid} with JSON until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		table, err := loader().LoadTable(ctx)
		if err != nil {
			return err
		}
		defer table.Close()

		return server.New(table, logger).Run(ctx, cfg.Listen)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the table file is well formed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := uidtable.Open(cfg.Table, uidtable.WithStrict())
		if err != nil {
			return err
		}
		defer table.Close()
		st := table.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, %d bytes, digest %016x\n",
			cfg.Table, st.Entries, st.SerializedSize, st.Digest)
		return nil
	},
}
