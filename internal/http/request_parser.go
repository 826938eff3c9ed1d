// This file implements utilities for parsing and validating HTTP request data.
// Expense and trade posts arrive either as url-encoded forms from the UI or
// as JSON from scripts; both go through RequestBodyParser.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jizhang/internal/core"
)

// maxBodyBytes bounds a posted form or JSON document.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// FieldError names the offending field of a rejected post.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// parseExpense reads an expense post. A blank date means today.
func parseExpense(p *RequestBodyParser, today core.Date) (core.ExpenseRecord, error) {
	rec := core.ExpenseRecord{
		Date:          today,
		Category:      p.Get("category"),
		PaymentMethod: p.Get("payment"),
		Note:          p.Get("note"),
		User:          p.Get("user"),
	}
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return rec, &FieldError{Field: "date", Err: err}
		}
		rec.Date = d
	}
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return rec, &FieldError{Field: "amount", Err: err}
	}
	rec.Amount = amount
	return rec, nil
}

// parseTrade reads a stock trade post. A blank date means today.
func parseTrade(p *RequestBodyParser, today core.Date) (core.StockTrade, error) {
	trade := core.StockTrade{
		Symbol:    p.Get("symbol"),
		Holder:    p.Get("holder"),
		Note:      p.Get("note"),
		TradeDate: today,
	}
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return trade, &FieldError{Field: "date", Err: err}
		}
		trade.TradeDate = d
	}

	shares, err := core.ParseAmount(p.Get("shares"))
	if errors.Is(err, core.ErrNegativeAmount) {
		err = core.ErrNegativeShares
	}
	if err != nil {
		return trade, &FieldError{Field: "shares", Err: err}
	}
	trade.Shares = shares

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return trade, &FieldError{Field: "amount", Err: err}
	}
	trade.Amount = amount

	side, err := core.ParseSide(p.Get("side"))
	if err != nil {
		return trade, &FieldError{Field: "side", Err: err}
	}
	trade.Side = side
	return trade, nil
}
