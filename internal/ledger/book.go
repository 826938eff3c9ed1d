package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jizhang/internal/aggregate"
	"jizhang/internal/core"
	"jizhang/internal/frame"
	applog "jizhang/internal/log"
	"jizhang/internal/sheets"
)

var (
	ErrStockDisabled   = errors.New("stock trades are not enabled")
	ErrNoReferenceList = errors.New("reference list table not found")
)

// Notifier is told about every row appended through a Book.
type Notifier interface {
	NotifyAppended(ctx context.Context, table string, values []string) error
}

type BookConfig struct {
	Data     sheets.Table
	Stock    sheets.Table // nil disables trades
	List     sheets.Table // nil when the spreadsheet has no reference list
	Notifier Notifier     // optional
	Now      func() time.Time
	Logger   *applog.Logger
}

// Book is the entry point used by the HTTP and CLI front ends.
type Book struct {
	data     sheets.Table
	stock    sheets.Table
	list     sheets.Table
	notifier Notifier
	now      func() time.Time
	logger   *applog.Logger
}

// Summary is the per-category breakdown of one user's recent expenses.
type Summary struct {
	User    string
	Window  int // rows considered
	Matched int // rows belonging to User
	Groups  aggregate.Result
}

func NewBook(cfg BookConfig) (*Book, error) {
	if cfg.Data == nil {
		return nil, errors.New("ledger: expense table is required")
	}
	b := &Book{
		data:     cfg.Data,
		stock:    cfg.Stock,
		list:     cfg.List,
		notifier: cfg.Notifier,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.logger == nil {
		b.logger = applog.New(applog.DefaultConfig())
	}
	b.logger = b.logger.WithComponent(applog.ComponentLedger)
	return b, nil
}

// StockEnabled reports whether trades can be recorded.
func (b *Book) StockEnabled() bool { return b.stock != nil }

// HasReferenceList reports whether the spreadsheet has a reference list table.
func (b *Book) HasReferenceList() bool { return b.list != nil }

// AddExpense validates rec, stamps its creation date and appends it. The
// stored record is returned.
func (b *Book) AddExpense(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		return rec, fmt.Errorf("invalid expense: %w", err)
	}
	rec.CreatedAt = core.DateOf(b.now())

	if err := Append(ctx, b.data, rec); err != nil {
		b.logger.Failure(ctx, "append expense failed", applog.OpAppend, err,
			applog.FieldTable, b.data.Name(), applog.FieldUser, rec.User)
		return rec, err
	}
	b.logger.InfoContext(ctx, "expense appended",
		applog.FieldTable, b.data.Name(),
		applog.FieldUser, rec.User,
		applog.FieldCategory, rec.Category,
		applog.FieldAmount, rec.Amount.String())
	b.notify(ctx, b.data.Name(), rec.Row())
	return rec, nil
}

// AddTrade validates and appends a stock trade.
func (b *Book) AddTrade(ctx context.Context, trade core.StockTrade) (core.StockTrade, error) {
	if b.stock == nil {
		return trade, ErrStockDisabled
	}
	trade = trade.Normalize()
	if err := trade.Validate(); err != nil {
		return trade, fmt.Errorf("invalid trade: %w", err)
	}
	if err := AppendTrade(ctx, b.stock, trade); err != nil {
		b.logger.Failure(ctx, "append trade failed", applog.OpAppend, err,
			applog.FieldTable, b.stock.Name(), applog.FieldSymbol, trade.Symbol)
		return trade, err
	}
	b.logger.InfoContext(ctx, "trade appended",
		applog.FieldTable, b.stock.Name(),
		applog.FieldSymbol, trade.Symbol,
		applog.FieldSide, string(trade.Side))
	b.notify(ctx, b.stock.Name(), trade.Row())
	return trade, nil
}

// Recent returns the last limit expense rows.
func (b *Book) Recent(ctx context.Context, limit int) (frame.Frame, error) {
	return FetchRecent(ctx, b.data, limit)
}

// Trades returns the last limit stock rows.
func (b *Book) Trades(ctx context.Context, limit int) (frame.Frame, error) {
	if b.stock == nil {
		return frame.Frame{}, ErrStockDisabled
	}
	return FetchRecent(ctx, b.stock, limit)
}

// UserSummary sums the last window expense rows of user by category.
func (b *Book) UserSummary(ctx context.Context, user string, window int) (Summary, error) {
	s := Summary{User: user}
	f, err := FetchRecent(ctx, b.data, window)
	if err != nil {
		return s, err
	}
	s.Window = f.Len()
	if f.Empty() {
		s.Groups = aggregate.Result{}
		return s, nil
	}
	mine := aggregate.FilterBy(f, core.ColUser, user)
	s.Matched = mine.Len()
	groups, err := aggregate.GroupSum(mine, core.ColCategory, core.ColAmount)
	if err != nil {
		b.logger.Failure(ctx, "summary failed", applog.OpSummary, err, applog.FieldUser, user)
		return s, err
	}
	s.Groups = groups
	return s, nil
}

// ReferenceList returns the whole reference list table.
func (b *Book) ReferenceList(ctx context.Context) (frame.Frame, error) {
	if b.list == nil {
		return frame.Frame{}, ErrNoReferenceList
	}
	f, err := ReadAll(ctx, b.list)
	if err != nil {
		return f, err
	}
	b.logger.DebugContext(ctx, "reference list read", applog.NewFields().WithTable(b.list.Name(), f.Len())...)
	return f, nil
}

// Tables returns the tables the book is bound to.
func (b *Book) Tables() []sheets.Table {
	out := []sheets.Table{b.data}
	if b.stock != nil {
		out = append(out, b.stock)
	}
	if b.list != nil {
		out = append(out, b.list)
	}
	return out
}

// Ping reads the expense table once; used by readiness checks.
func (b *Book) Ping(ctx context.Context) error {
	_, err := b.data.Values(ctx)
	return err
}

func (b *Book) notify(ctx context.Context, table string, row []any) {
	if b.notifier == nil {
		return
	}
	values := make([]string, len(row))
	for i, v := range row {
		values[i] = sheets.EnteredValue(v)
	}
	if err := b.notifier.NotifyAppended(ctx, table, values); err != nil {
		fields := applog.NewFields().
			WithOperation(applog.OpNotify).
			WithTable(table, -1).
			WithError(err)
		b.logger.WarnContext(ctx, "append notification failed", fields...)
	}
}
