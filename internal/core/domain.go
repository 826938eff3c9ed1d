package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Table names inside the household spreadsheet.
const (
	TableExpenses  = "data"
	TableStock     = "stock"
	TableReference = "list"
)

// Column names of the expense table, in write order.
const (
	ColDate      = "日期"
	ColAmount    = "金額"
	ColCategory  = "分類"
	ColPayment   = "付款方式"
	ColNote      = "備註"
	ColUser      = "使用人"
	ColCreatedAt = "建立時間"
)

// Column names of the stock table, in write order.
const (
	ColSymbol      = "代碼"
	ColShares      = "股數"
	ColHolder      = "持有人"
	ColTradeAmount = "金額"
	ColTradeDate   = "時間"
	ColSide        = "買or賣"
	ColTradeNote   = "備註"
)

// DateLayout is the on-sheet date format.
const DateLayout = "2006-01-02"

var (
	// ExpenseHeader is the first row of the expense table.
	ExpenseHeader = []string{ColDate, ColAmount, ColCategory, ColPayment, ColNote, ColUser, ColCreatedAt}
	// StockHeader is the first row of the stock table.
	StockHeader = []string{ColSymbol, ColShares, ColHolder, ColTradeAmount, ColTradeDate, ColSide, ColTradeNote}
)

type (
	Date struct {
		time.Time
	}

	Side string

	ExpenseRecord struct {
		Date          Date
		Amount        decimal.Decimal
		Category      string
		PaymentMethod string
		Note          string
		User          string
		CreatedAt     Date // stamped by the ledger at write time
	}

	StockTrade struct {
		Symbol    string
		Shares    decimal.Decimal
		Holder    string
		Amount    decimal.Decimal
		TradeDate Date
		Side      Side
		Note      string
	}
)

const (
	Buy  Side = "買"
	Sell Side = "賣"
)

var (
	ErrMissingDate    = errors.New("missing date")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrEmptyUser      = errors.New("empty user")
	ErrEmptySymbol    = errors.New("empty stock symbol")
	ErrNegativeShares = errors.New("shares must not be negative")
	ErrInvalidSide    = errors.New("side must be buy or sell")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date in the on-sheet layout; the zero date renders empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// ParseSide accepts the sheet values 買/賣 and their English names.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "買", "buy":
		return Buy, nil
	case "賣", "sell":
		return Sell, nil
	}
	return "", ErrInvalidSide
}

// Normalize trims the free-text fields that are trimmed on write.
func (r ExpenseRecord) Normalize() ExpenseRecord {
	r.Note = strings.TrimSpace(r.Note)
	r.User = strings.TrimSpace(r.User)
	r.Category = strings.TrimSpace(r.Category)
	r.PaymentMethod = strings.TrimSpace(r.PaymentMethod)
	return r
}

func (r ExpenseRecord) Validate() error {
	if r.Date.IsZero() {
		return ErrMissingDate
	}
	if r.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(r.User) == "" {
		return ErrEmptyUser
	}
	return nil
}

// Row returns the record as the seven cells of an expense table row.
func (r ExpenseRecord) Row() []any {
	return []any{
		r.Date.String(),
		r.Amount.String(),
		r.Category,
		r.PaymentMethod,
		strings.TrimSpace(r.Note),
		strings.TrimSpace(r.User),
		r.CreatedAt.String(),
	}
}

func (t StockTrade) Normalize() StockTrade {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	t.Holder = strings.TrimSpace(t.Holder)
	t.Note = strings.TrimSpace(t.Note)
	return t
}

func (t StockTrade) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return ErrEmptySymbol
	}
	if t.Shares.IsNegative() {
		return ErrNegativeShares
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if t.TradeDate.IsZero() {
		return ErrMissingDate
	}
	if t.Side != Buy && t.Side != Sell {
		return ErrInvalidSide
	}
	return nil
}

// Row returns the trade as the seven cells of a stock table row.
func (t StockTrade) Row() []any {
	return []any{
		t.Symbol,
		t.Shares.String(),
		t.Holder,
		t.Amount.String(),
		t.TradeDate.String(),
		string(t.Side),
		t.Note,
	}
}
