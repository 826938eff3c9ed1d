package http

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"jizhang/internal/core"
	"jizhang/internal/ledger"
	applog "jizhang/internal/log"
)

const (
	msgAdded         = "已新增到試算表"
	msgTradeAdded    = "已新增股票交易"
	msgNoData        = "目前還沒有資料"
	msgNoUserData    = "此使用人目前沒有資料"
	msgStockDisabled = "股票資料功能尚未啟用"
	msgNoList        = "試算表中沒有 list 工作表"
	maxAPILimit      = 1000
)

// redirect notices are looked up by key so no user text is echoed back.
var notices = map[string]notice{
	"added": {Kind: "success", Message: msgAdded},
	"trade": {Kind: "success", Message: msgTradeAdded},
}

type notice struct {
	Kind    string // success, info, error
	Message string
}

type pageData struct {
	Title      string
	Sections   []string
	Session    session
	Users      []string
	Categories []string
	Payments   []string
	Today      string
	Notices    []notice

	Recent tableView

	Stats      *summaryView
	StatsReady bool

	StockEnabled bool
	Trades       tableView
	HasList      bool
	List         tableView
}

func (d *pageData) add(kind, msg string) {
	d.Notices = append(d.Notices, notice{Kind: kind, Message: msg})
}

// handlePage renders the UI. section overrides the session's section.
func (s *Server) handlePage(section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := loadSession(r, s.taxonomy.Users, section)
		data := s.newPage(sess)
		if n, ok := notices[r.URL.Query().Get("notice")]; ok {
			data.Notices = append(data.Notices, n)
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()
		s.fillSection(ctx, &data)

		sess.save(w)
		s.render(w, r, http.StatusOK, data)
	}
}

func (s *Server) newPage(sess session) pageData {
	users := s.taxonomy.Users
	if sess.User != "" && !sess.knownUser(users) {
		users = append(slices.Clone(users), sess.User)
	}
	return pageData{
		Title:        "家庭記帳",
		Sections:     []string{sectionExpense, sectionStats, sectionStock},
		Session:      sess,
		Users:        users,
		Categories:   s.taxonomy.Categories,
		Payments:     s.taxonomy.Payments,
		Today:        core.DateOf(s.now()).String(),
		StockEnabled: s.book.StockEnabled(),
	}
}

// fillSection loads the store data the open section displays. Read failures
// become error notices on an otherwise complete page.
func (s *Server) fillSection(ctx context.Context, data *pageData) {
	switch data.Session.Section {
	case sectionStats:
		s.fillStats(ctx, data)
	case sectionStock:
		s.fillStock(ctx, data)
	default:
		recent, err := s.book.Recent(ctx, s.recentLimit)
		if err != nil {
			applog.FromContext(ctx).Failure(ctx, "read recent expenses failed", applog.OpRead, err)
			data.add("error", messageFor(err))
			return
		}
		data.Recent = viewOf(recent)
		if data.Recent.Empty() {
			data.add("info", msgNoData)
		}
	}
}

func (s *Server) fillStats(ctx context.Context, data *pageData) {
	if !data.Session.ShowStats {
		return
	}
	summary, err := s.book.UserSummary(ctx, data.Session.User, s.statsWindow)
	if err != nil {
		applog.FromContext(ctx).Failure(ctx, "user summary failed", applog.OpSummary, err,
			applog.FieldUser, data.Session.User)
		data.add("error", messageFor(err))
		return
	}
	if summary.Window == 0 {
		data.add("info", msgNoData)
		return
	}
	data.StatsReady = true
	if summary.Matched == 0 {
		data.add("info", msgNoUserData)
		return
	}
	v := summaryOf(summary)
	data.Stats = &v
}

func (s *Server) fillStock(ctx context.Context, data *pageData) {
	if !s.book.StockEnabled() {
		data.add("info", msgStockDisabled)
	} else if trades, err := s.book.Trades(ctx, s.recentLimit); err != nil {
		applog.FromContext(ctx).Failure(ctx, "read trades failed", applog.OpRead, err)
		data.add("error", messageFor(err))
	} else {
		data.Trades = viewOf(trades)
	}

	if !s.book.HasReferenceList() {
		return
	}
	list, err := s.book.ReferenceList(ctx)
	if err != nil {
		applog.FromContext(ctx).Failure(ctx, "read reference list failed", applog.OpRead, err)
		data.add("error", messageFor(err))
		return
	}
	data.HasList = true
	data.List = viewOf(list)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		applog.FromContext(r.Context()).Failure(r.Context(), "template execution failed", applog.OpRender, err,
			"template", "index.html")
	}
}

// fail answers a rejected post: JSON clients get an error document, the UI
// gets the section re-rendered with the error notice.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, p *RequestBodyParser, section string, err error) {
	status := statusFor(err)
	if wantsJSON(r, p) {
		ErrorResponse(status, messageFor(err), true).Write(w)
		return
	}
	sess := loadSession(r, s.taxonomy.Users, section)
	if p != nil {
		if u := p.Get("user"); u != "" {
			sess.User = u
		}
	}
	data := s.newPage(sess)
	data.add("error", messageFor(err))
	ctx, cancel := s.requestContext(r)
	defer cancel()
	s.fillSection(ctx, &data)
	s.render(w, r, status, data)
}

func (s *Server) handleAPIRecent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	f, err := s.book.Recent(ctx, limitParam(r, s.recentLimit))
	if err != nil {
		applog.FromContext(ctx).Failure(ctx, "read recent expenses failed", applog.OpRead, err)
		ErrorResponse(statusFor(err), messageFor(err), true).Write(w)
		return
	}
	NewResponse().JSON(viewOf(f)).Write(w)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	user := sanitizeInput(r.URL.Query().Get("user"))
	if user == "" {
		UnprocessableEntityError(messageFor(core.ErrEmptyUser), true).Write(w)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	summary, err := s.book.UserSummary(ctx, user, limitParam(r, s.statsWindow))
	if err != nil {
		applog.FromContext(ctx).Failure(ctx, "user summary failed", applog.OpSummary, err, applog.FieldUser, user)
		ErrorResponse(statusFor(err), messageFor(err), true).Write(w)
		return
	}
	NewResponse().JSON(summaryOf(summary)).Write(w)
}

func (s *Server) handleAPITrades(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	f, err := s.book.Trades(ctx, limitParam(r, s.recentLimit))
	if err != nil {
		if !errors.Is(err, ledger.ErrStockDisabled) {
			applog.FromContext(ctx).Failure(ctx, "read trades failed", applog.OpRead, err)
		}
		ErrorResponse(statusFor(err), messageFor(err), true).Write(w)
		return
	}
	NewResponse().JSON(viewOf(f)).Write(w)
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()
	f, err := s.book.ReferenceList(ctx)
	if err != nil {
		if !errors.Is(err, ledger.ErrNoReferenceList) {
			applog.FromContext(ctx).Failure(ctx, "read reference list failed", applog.OpRead, err)
		}
		ErrorResponse(statusFor(err), messageFor(err), true).Write(w)
		return
	}
	NewResponse().JSON(viewOf(f)).Write(w)
}

// limitParam reads ?limit=, falling back to def and capping at maxAPILimit.
func limitParam(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxAPILimit)
}
