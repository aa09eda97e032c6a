// Package i18n resolves the shopper's language and renders localized messages.
package i18n

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

type contextKey string

const languageContextKey contextKey = "kamelstore/i18n/language"

// Supported lists the languages the storefront is translated into.
var Supported = []language.Tag{language.Hebrew, language.Arabic, language.English}

// Localizer matches requested languages against Supported and formats catalog messages.
type Localizer struct {
	fallback  language.Tag
	supported []language.Tag
	matcher   language.Matcher
	catalog   catalog.Catalog
}

// NewLocalizer builds a Localizer whose fallback language is def (he, ar or en).
func NewLocalizer(def string) (*Localizer, error) {
	fallback, err := language.Parse(strings.TrimSpace(def))
	if err != nil {
		return nil, fmt.Errorf("i18n: invalid default language %q: %w", def, err)
	}
	// The matcher falls back to the first tag, so the default goes first.
	ordered := []language.Tag{}
	found := false
	for _, tag := range Supported {
		if tag == fallback {
			found = true
			ordered = append([]language.Tag{tag}, ordered...)
			continue
		}
		ordered = append(ordered, tag)
	}
	if !found {
		return nil, fmt.Errorf("i18n: unsupported default language %q", def)
	}
	cat, err := buildCatalog()
	if err != nil {
		return nil, fmt.Errorf("i18n: build catalog: %w", err)
	}
	return &Localizer{
		fallback:  fallback,
		supported: ordered,
		matcher:   language.NewMatcher(ordered),
		catalog:   cat,
	}, nil
}

// Default returns the fallback language.
func (l *Localizer) Default() language.Tag {
	return l.fallback
}

// Match picks the best supported language for the given preferences, in priority order. Each
// preference may be a single tag ("ar") or an Accept-Language header value. Blank or unparsable
// preferences are skipped.
func (l *Localizer) Match(prefs ...string) language.Tag {
	for _, pref := range prefs {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, confidence := l.matcher.Match(tags...)
		if confidence != language.No {
			return l.supported[idx]
		}
	}
	return l.fallback
}

// Printer returns a message printer for tag.
func (l *Localizer) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(l.catalog))
}

// Sprintf renders key in tag.
func (l *Localizer) Sprintf(tag language.Tag, key string, args ...any) string {
	return l.Printer(tag).Sprintf(key, args...)
}

// Dir reports the text direction for tag.
func Dir(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case "he", "ar":
		return "rtl"
	default:
		return "ltr"
	}
}

// WithLanguage stores the negotiated language on the context.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, languageContextKey, tag)
}

// LanguageFrom returns the negotiated language, or fallback when none was stored.
func LanguageFrom(ctx context.Context, fallback language.Tag) language.Tag {
	if ctx != nil {
		if tag, ok := ctx.Value(languageContextKey).(language.Tag); ok {
			return tag
		}
	}
	return fallback
}
