// Package commands implements the jizhang-cli command tree.
package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"jizhang/internal/buildinfo"
	"jizhang/internal/ledger"
)

// Opener opens the ledger a command works on. release frees whatever the
// ledger holds open and is called once the command finishes.
type Opener func(ctx context.Context) (book *ledger.Book, release func() error, err error)

// Env is what the command tree needs from the process.
type Env struct {
	Open Opener
	Now  func() time.Time

	RecentLimit int
	StatsWindow int
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(env Env) *cobra.Command {
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.RecentLimit <= 0 {
		env.RecentLimit = 30
	}
	if env.StatsWindow <= 0 {
		env.StatsWindow = 200
	}

	var asJSON bool
	rootCmd := &cobra.Command{
		Use:     "jizhang-cli",
		Short:   "Household expense ledger on a spreadsheet",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")

	r := &runner{env: env, asJSON: &asJSON}
	rootCmd.AddCommand(
		newAddCommand(r),
		newRecentCommand(r),
		newStatsCommand(r),
		newTradeCommand(r),
		newListCommand(r),
		newTablesCommand(r),
	)

	return rootCmd
}

// runner opens the book around each command.
type runner struct {
	env    Env
	asJSON *bool
}

func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, b *ledger.Book) error) (err error) {
	if r.env.Open == nil {
		return errors.New("no ledger configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	book, release, err := r.env.Open(ctx)
	if err != nil {
		return err
	}
	if release != nil {
		defer func() {
			err = errors.Join(err, release())
		}()
	}
	return fn(ctx, book)
}
