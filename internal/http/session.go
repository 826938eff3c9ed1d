package http

import (
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const (
	sectionExpense = "記帳"
	sectionStats   = "統計"
	sectionStock   = "股票"

	sessionCookie = "jizhang_session"
)

var sectionAliases = map[string]string{
	sectionExpense: sectionExpense,
	"expense":      sectionExpense,
	sectionStats:   sectionStats,
	"stats":        sectionStats,
	sectionStock:   sectionStock,
	"stock":        sectionStock,
}

// session is the per-visitor UI state: which section is open, which user
// is selected and whether statistics were requested.
type session struct {
	Section   string
	User      string
	ShowStats bool
}

// loadSession starts from the cookie, then applies the query string.
// section, when non-empty, is forced by the route.
func loadSession(r *http.Request, users []string, section string) session {
	s := session{Section: sectionExpense}
	if c, err := r.Cookie(sessionCookie); err == nil {
		if v, err := url.ParseQuery(c.Value); err == nil {
			s.apply(v)
		}
	}
	s.apply(r.URL.Query())
	if section != "" {
		s.Section = section
	}
	if s.User == "" && len(users) > 0 {
		s.User = users[0]
	}
	return s
}

func (s *session) apply(v url.Values) {
	if sec, ok := sectionAliases[strings.TrimSpace(v.Get("section"))]; ok {
		s.Section = sec
	}
	if u := sanitizeInput(v.Get("user")); u != "" {
		s.User = u
	}
	switch v.Get("show") {
	case "1", "true":
		s.ShowStats = true
	case "0", "false":
		s.ShowStats = false
	}
}

func (s session) encode() string {
	v := url.Values{}
	v.Set("section", s.Section)
	v.Set("user", s.User)
	if s.ShowStats {
		v.Set("show", "1")
	}
	return v.Encode()
}

func (s session) save(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.encode(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// knownUser reports whether the session user is one of users.
func (s session) knownUser(users []string) bool {
	return slices.Contains(users, s.User)
}

// sectionPath is the route that opens section.
func sectionPath(section string) string {
	switch section {
	case sectionStats:
		return "/stats"
	case sectionStock:
		return "/stock"
	}
	return "/"
}

var templateFuncs = template.FuncMap{
	"sectionPath": sectionPath,
}
