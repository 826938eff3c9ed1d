package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jizhang/internal/core"
	"jizhang/internal/ledger"
)

func newTradeCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record and list stock trades",
	}
	cmd.AddCommand(newTradeAddCommand(r), newTradeListCommand(r))
	return cmd
}

func newTradeAddCommand(r *runner) *cobra.Command {
	var symbol, shares, holder, amount, date, side, note string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a trade to the stock table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trade := core.StockTrade{
				Symbol:    symbol,
				Holder:    holder,
				Note:      note,
				TradeDate: core.DateOf(r.env.Now()),
			}
			if date != "" {
				d, err := core.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				trade.TradeDate = d
			}
			n, err := core.ParseAmount(shares)
			if errors.Is(err, core.ErrNegativeAmount) {
				err = core.ErrNegativeShares
			}
			if err != nil {
				return fmt.Errorf("--shares: %w", err)
			}
			trade.Shares = n
			if trade.Amount, err = core.ParseAmount(amount); err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			if trade.Side, err = core.ParseSide(side); err != nil {
				return fmt.Errorf("--side: %w", err)
			}

			return r.with(cmd, func(ctx context.Context, b *ledger.Book) error {
				stored, err := b.AddTrade(ctx, trade)
				if err != nil {
					return err
				}
				if *r.asJSON {
					return writeJSON(cmd.OutOrStdout(), rowOut(core.TableStock, stored.Row()))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已新增股票交易: %s %s %s %s\n",
					stored.TradeDate, stored.Side, stored.Symbol, stored.Shares)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker symbol (required)")
	_ = cmd.MarkFlagRequired("symbol")
	cmd.Flags().StringVar(&shares, "shares", "", "number of shares (required)")
	_ = cmd.MarkFlagRequired("shares")
	cmd.Flags().StringVar(&amount, "amount", "", "total amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&side, "side", "買", "買 or 賣 (buy or sell)")
	cmd.Flags().StringVar(&holder, "holder", "", "account holder")
	cmd.Flags().StringVar(&date, "date", "", "trade date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")

	return cmd
}

func newTradeListCommand(r *runner) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the latest stock trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, b *ledger.Book) error {
				f, err := b.Trades(ctx, limit)
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
