// Package i18n localizes user-facing messages.
package i18n

import (
	"embed"
	"encoding/json"
	"log"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var supported = []language.Tag{language.Korean, language.English}

// Translator resolves message ids against the embedded catalogs.
type Translator struct {
	localizer *i18n.Localizer
	tag       language.Tag
}

// New builds a translator for lang. Unknown languages fall back to Korean.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.Korean)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, name := range []string{"locales/ko.json", "locales/en.json"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, name); err != nil {
			log.Printf("Warning: could not load %s: %v", name, err)
		}
	}

	tag := Match(lang)
	return &Translator{
		localizer: i18n.NewLocalizer(bundle, tag.String()),
		tag:       tag,
	}
}

// Match picks the supported language closest to lang.
func Match(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return language.Korean
	}
	desired, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(desired) == 0 {
		return language.Korean
	}
	_, idx, conf := language.NewMatcher(supported).Match(desired...)
	if conf == language.No {
		return language.Korean
	}
	return supported[idx]
}

// Language reports the active language.
func (t *Translator) Language() string {
	return t.tag.String()
}

// T returns the message for id, or id itself when it is not in any catalog.
func (t *Translator) T(id string, data map[string]any) string {
	text, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return text
}
