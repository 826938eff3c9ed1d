package core

import "github.com/shopspring/decimal"

// Entry is an expense row read back from the store. Known columns are typed;
// columns the code does not recognise are kept verbatim in Extra.
type Entry struct {
	Date          string
	Amount        decimal.NullDecimal // invalid when the cell was missing or not numeric
	Category      string
	PaymentMethod string
	Note          string
	User          string
	CreatedAt     string
	Extra         map[string]string
}

// Trade is a stock row read back from the store.
type Trade struct {
	Symbol    string
	Shares    decimal.NullDecimal
	Holder    string
	Amount    decimal.NullDecimal
	TradeDate string
	Side      string
	Note      string
	Extra     map[string]string
}
