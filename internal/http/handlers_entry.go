package http

import (
	"fmt"
	"net/http"

	"jizhang/internal/core"
	applog "jizhang/internal/log"
)

type createdBody struct {
	Table string   `json:"table"`
	Row   []string `json:"row"`
}

func rowStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "parse expense body failed", applog.FieldError, err)
		BadRequestError("請求格式錯誤", wantsJSON(r, p)).Write(w)
		return
	}

	rec, err := parseExpense(p, core.DateOf(s.now()))
	if err != nil {
		s.fail(w, r, p, sectionExpense, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	stored, err := s.book.AddExpense(ctx, rec)
	if err != nil {
		s.fail(w, r, p, sectionExpense, err)
		return
	}

	if wantsJSON(r, p) {
		NewResponse().Status(http.StatusCreated).
			JSON(createdBody{Table: core.TableExpenses, Row: rowStrings(stored.Row())}).
			Write(w)
		return
	}
	sess := loadSession(r, s.taxonomy.Users, sectionExpense)
	sess.User = stored.User
	sess.save(w)
	http.Redirect(w, r, "/?notice=added", http.StatusSeeOther)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "parse trade body failed", applog.FieldError, err)
		BadRequestError("請求格式錯誤", wantsJSON(r, p)).Write(w)
		return
	}

	trade, err := parseTrade(p, core.DateOf(s.now()))
	if err != nil {
		s.fail(w, r, p, sectionStock, err)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	stored, err := s.book.AddTrade(ctx, trade)
	if err != nil {
		s.fail(w, r, p, sectionStock, err)
		return
	}

	if wantsJSON(r, p) {
		NewResponse().Status(http.StatusCreated).
			JSON(createdBody{Table: core.TableStock, Row: rowStrings(stored.Row())}).
			Write(w)
		return
	}
	http.Redirect(w, r, "/stock?notice=trade", http.StatusSeeOther)
}
