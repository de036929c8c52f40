package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/fontshelf/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "fontshelf: %v\n", err)
		return 1
	}
	return 0
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	dbPath     string
	logLevel   string
}

func (f *rootFlags) options() app.Options {
	return app.Options{
		ConfigPath: f.configPath,
		DBPath:     f.dbPath,
		LogLevel:   f.logLevel,
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "fontshelf",
		Short:         "Browse local fonts and keep a favorites shelf",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/fontshelf/config.toml)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "override the font database path")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the log level (debug, info, warn, error)")

	root.AddCommand(listCmd(flags))
	root.AddCommand(statusCmd(flags))
	root.AddCommand(favoriteCmd(flags))
	root.AddCommand(orderCmd(flags))
	root.AddCommand(refreshCmd(flags))
	root.AddCommand(clearCmd(flags))
	root.AddCommand(exportCmd(flags))
	return root
}

// withApp opens the application, runs fn and makes sure every write fn made
// reached the database before returning.
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, a *app.App) error) (err error) {
	a, err := app.Open(flags.options())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	if err := a.Store.WaitReady(ctx); err != nil {
		return err
	}
	if err := fn(ctx, a); err != nil {
		return err
	}
	if err := a.Store.Flush(ctx); err != nil {
		return fmt.Errorf("flush font store: %w", err)
	}
	return a.Store.LastPersistenceError()
}
