package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/platform/session"
)

// LocaleMiddleware negotiates the response language from ?lang=, the session, then Accept-Language.
// An explicit ?lang= choice is remembered on the session.
func LocaleMiddleware(localizer *i18n.Localizer) func(http.Handler) http.Handler {
	if localizer == nil {
		panic("localizer is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested := strings.TrimSpace(r.URL.Query().Get("lang"))
			sess, hasSession := session.FromContext(r.Context())

			stored := ""
			if hasSession {
				stored = sess.Locale()
			}

			tag := localizer.Match(requested, stored, r.Header.Get("Accept-Language"))
			if hasSession && supportedLocale(requested) {
				sess.SetLocale(tag.String())
			}

			w.Header().Set("Content-Language", tag.String())
			next.ServeHTTP(w, r.WithContext(i18n.WithLanguage(r.Context(), tag)))
		})
	}
}

func supportedLocale(value string) bool {
	if value == "" {
		return false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	for _, candidate := range i18n.Supported {
		if cb, _ := candidate.Base(); cb == base {
			return true
		}
	}
	return false
}

func requestLanguage(r *http.Request, localizer *i18n.Localizer) language.Tag {
	if localizer == nil {
		return language.Hebrew
	}
	return i18n.LanguageFrom(r.Context(), localizer.Default())
}
