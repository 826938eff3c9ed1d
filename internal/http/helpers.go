package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"jizhang/internal/aggregate"
	"jizhang/internal/core"
	"jizhang/internal/frame"
	"jizhang/internal/ledger"
)

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request, p *RequestBodyParser) bool {
	if p != nil && p.IsJSON() {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

var validationErrors = []error{
	core.ErrMissingDate,
	core.ErrNegativeAmount,
	core.ErrEmptyUser,
	core.ErrEmptySymbol,
	core.ErrNegativeShares,
	core.ErrInvalidSide,
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps ledger errors to HTTP status codes. Store failures,
// including *ledger.WriteError, are reported as 502.
func statusFor(err error) int {
	var mc *aggregate.MissingColumnError
	switch {
	case isValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrStockDisabled), errors.Is(err, ledger.ErrNoReferenceList):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &mc):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// messageFor returns the notice shown to the user for err.
func messageFor(err error) string {
	var mc *aggregate.MissingColumnError
	var we *ledger.WriteError
	switch {
	case isValidation(err):
		return "資料不正確：" + fieldLabel(err)
	case errors.Is(err, ledger.ErrStockDisabled):
		return msgStockDisabled
	case errors.Is(err, ledger.ErrNoReferenceList):
		return msgNoList
	case errors.Is(err, context.DeadlineExceeded):
		return "試算表連線逾時，請稍後再試"
	case errors.As(err, &mc):
		return "工作表缺少欄位：" + mc.Column
	case errors.As(err, &we):
		return "寫入試算表失敗，請稍後再試"
	default:
		return "讀取試算表失敗，請稍後再試"
	}
}

var errorLabels = map[error]string{
	core.ErrMissingDate:    "請填寫日期",
	core.ErrNegativeAmount: "金額不可為負數",
	core.ErrEmptyUser:      "請選擇使用人",
	core.ErrEmptySymbol:    "請填寫股票代碼",
	core.ErrNegativeShares: "股數不可為負數",
	core.ErrInvalidSide:    "請選擇買或賣",
	core.ErrInvalidAmount:  "金額格式錯誤",
	core.ErrInvalidDate:    "日期格式錯誤",
}

func fieldLabel(err error) string {
	for target, label := range errorLabels {
		if errors.Is(err, target) {
			return label
		}
	}
	return err.Error()
}

// tableView is a frame flattened for templates and JSON.
type tableView struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func viewOf(f frame.Frame) tableView {
	grid := f.Strings()
	v := tableView{Columns: []string{}, Rows: [][]string{}}
	if len(grid) == 0 {
		return v
	}
	v.Columns = grid[0]
	v.Rows = grid[1:]
	return v
}

// Empty reports whether the table has no data rows.
func (v tableView) Empty() bool { return len(v.Rows) == 0 }

type groupView struct {
	Key string `json:"key"`
	Sum string `json:"sum"`
}

type summaryView struct {
	User    string      `json:"user"`
	Window  int         `json:"window"`
	Matched int         `json:"matched"`
	Groups  []groupView `json:"groups"`
	Total   string      `json:"total"`
}

func summaryOf(s ledger.Summary) summaryView {
	v := summaryView{
		User:    s.User,
		Window:  s.Window,
		Matched: s.Matched,
		Groups:  make([]groupView, 0, len(s.Groups)),
		Total:   core.FormatAmount(s.Groups.Total()),
	}
	for _, g := range s.Groups {
		v.Groups = append(v.Groups, groupView{Key: g.Key, Sum: core.FormatAmount(g.Sum)})
	}
	return v
}
