package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"jizhang/internal/core"
	"jizhang/internal/ledger"
)

func newRecentCommand(r *runner) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the latest expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, b *ledger.Book) error {
				f, err := b.Recent(ctx, limit)
				if err != nil {
					return err
				}
				return writeFrame(cmd.OutOrStdout(), f, *r.asJSON, "目前還沒有資料")
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", r.env.RecentLimit, "number of rows to show")
	return cmd
}

type summaryOut struct {
	User    string            `json:"user"`
	Window  int               `json:"window"`
	Matched int               `json:"matched"`
	Groups  []summaryGroupOut `json:"groups"`
	Total   string            `json:"total"`
}

type summaryGroupOut struct {
	Key string `json:"key"`
	Sum string `json:"sum"`
}

func newStatsCommand(r *runner) *cobra.Command {
	var user string
	var window int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Sum one user's recent expenses by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, b *ledger.Book) error {
				s, err := b.UserSummary(ctx, user, window)
				if err != nil {
					return err
				}
				out := summaryOut{
					User:    s.User,
					Window:  s.Window,
					Matched: s.Matched,
					Groups:  make([]summaryGroupOut, 0, len(s.Groups)),
					Total:   core.FormatAmount(s.Groups.Total()),
				}
				for _, g := range s.Groups {
					out.Groups = append(out.Groups, summaryGroupOut{Key: g.Key, Sum: core.FormatAmount(g.Sum)})
				}
				if *r.asJSON {
					return writeJSON(cmd.OutOrStdout(), out)
				}

				w := cmd.OutOrStdout()
				switch {
				case s.Window == 0:
					fmt.Fprintln(w, "目前還沒有資料")
					return nil
				case s.Matched == 0:
					fmt.Fprintln(w, "此使用人目前沒有資料")
					return nil
				}
				fmt.Fprintf(w, "使用人：%s (最近 %d 筆中有 %d 筆)\n", out.User, out.Window, out.Matched)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
				for _, g := range out.Groups {
					fmt.Fprintf(tw, "%s\t%s\t\n", g.Key, g.Sum)
				}
				fmt.Fprintf(tw, "合計\t%s\t\n", out.Total)
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user to summarise (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().IntVar(&window, "window", r.env.StatsWindow, "number of recent rows to consider")
	return cmd
}

func newListCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the read-only list table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, b *ledger.Book) error {
				f, err := b.ReferenceList(ctx)
				if err != nil {
					return err
				}
				return writeFrame(cmd.OutOrStdout(), f, *r.asJSON, "list 工作表沒有資料")
			})
		},
	}
}

type tableHeader struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

func newTablesCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Show the tables the ledger is bound to and their headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, b *ledger.Book) error {
				var out []tableHeader
				for _, t := range b.Tables() {
					f, err := ledger.ReadAll(ctx, t)
					if err != nil {
						return err
					}
					out = append(out, tableHeader{Name: t.Name(), Columns: f.Columns})
				}
				if *r.asJSON {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				for _, h := range out {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", h.Name, strings.Join(h.Columns, ", "))
				}
				return nil
			})
		},
	}
}
