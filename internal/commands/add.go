package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jizhang/internal/core"
	"jizhang/internal/ledger"
)

func newAddCommand(r *runner) *cobra.Command {
	var (
		date, amount, category, payment, note, user string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an expense to the data table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := core.ExpenseRecord{
				Date:          core.DateOf(r.env.Now()),
				Category:      category,
				PaymentMethod: payment,
				Note:          note,
				User:          user,
			}
			if date != "" {
				d, err := core.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				rec.Date = d
			}
			a, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			rec.Amount = a

			return r.with(cmd, func(ctx context.Context, b *ledger.Book) error {
				stored, err := b.AddExpense(ctx, rec)
				if err != nil {
					return err
				}
				if *r.asJSON {
					return writeJSON(cmd.OutOrStdout(), rowOut(core.TableExpenses, stored.Row()))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已新增到試算表: %s %s %s %s\n",
					stored.Date, stored.User, stored.Category, core.FormatAmount(stored.Amount))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "who spent the money (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&amount, "amount", "", "amount spent (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&date, "date", "", "expense date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&payment, "payment", "", "payment method")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")

	return cmd
}

type appended struct {
	Table string   `json:"table"`
	Row   []string `json:"row"`
}

func rowOut(table string, row []any) appended {
	out := appended{Table: table, Row: make([]string, len(row))}
	for i, v := range row {
		out.Row[i] = fmt.Sprint(v)
	}
	return out
}
