// Package main provides the quill binary: a command-line client for
// the blog API with a persistent login session.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openpress/quill/internal/config"
	"github.com/openpress/quill/internal/session"
)

const version = "0.1.0"

// app carries the shared client state into the command constructors
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	session *session.Manager
	verbose bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "quill",
		Short:         "Command-line client for the blog API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(a.verbose)
			a.session = session.NewManager(cfg, a.logger)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newArticlesCmd(a),
		newCategoriesCmd(a),
		newTagsCmd(a),
		newCommentsCmd(a),
		newUsersCmd(a),
	)
	return cmd
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger, _ := cfg.Build()
	return logger
}

// printJSON writes a value as indented JSON to stdout
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
