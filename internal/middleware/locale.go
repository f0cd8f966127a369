package middleware

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

const langCookieName = "hl"

var supportedLanguages = []language.Tag{language.English, language.Thai}

var languageMatcher = language.NewMatcher(supportedLanguages)

// Locale negotiates the display language from ?hl=, the hl cookie, or
// Accept-Language, in that order. The choice drives number and date formatting.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if q := strings.TrimSpace(r.URL.Query().Get("hl")); q != "" {
			lang = matchLanguage(q)
			http.SetCookie(w, &http.Cookie{Name: langCookieName, Value: lang, Path: "/", SameSite: http.SameSiteLaxMode})
		} else if c, err := r.Cookie(langCookieName); err == nil && c.Value != "" {
			lang = matchLanguage(c.Value)
		} else {
			lang = matchLanguage(r.Header.Get("Accept-Language"))
		}
		w.Header().Add("Vary", "Accept-Language")
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
	})
}

// Lang returns the negotiated language for r.
func Lang(r *http.Request) string {
	return LangFromContext(r.Context())
}

func matchLanguage(value string) string {
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, _ := languageMatcher.Match(tags...)
	base, _ := supportedLanguages[idx].Base()
	return base.String()
}
