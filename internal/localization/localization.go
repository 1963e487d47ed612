// Package localization serves the bot's user-facing strings. Catalogs are
// JSON files compiled into the binary, one per language code.
package localization

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// DefaultLanguage is used when a language or a key is missing.
const DefaultLanguage = "en"

//go:embed locales/*.json
var locales embed.FS

// Localizer holds one key→text map per language.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// New loads every embedded catalog.
func New() (*Localizer, error) {
	l := &Localizer{translations: make(map[string]map[string]string)}

	files, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		data, err := locales.ReadFile(path.Join("locales", file.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", file.Name(), err)
		}
		var texts map[string]string
		if err := json.Unmarshal(data, &texts); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", file.Name(), err)
		}
		l.translations[strings.TrimSuffix(file.Name(), ".json")] = texts
	}

	if _, ok := l.translations[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("missing %s catalog", DefaultLanguage)
	}
	return l, nil
}

// MustNew is New for package initialisation.
func MustNew() *Localizer {
	l, err := New()
	if err != nil {
		panic(err)
	}
	return l
}

// Get returns the text for key in lang. Region suffixes ("uk-UA") are ignored.
// Unknown languages fall back to English and unknown keys to the key itself.
func (l *Localizer) Get(lang, key string) string {
	lang = Normalize(lang)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if value, ok := l.translations[lang][key]; ok {
		return value
	}
	if value, ok := l.translations[DefaultLanguage][key]; ok {
		return value
	}
	return key
}

// Getf formats the text for key with args.
func (l *Localizer) Getf(lang, key string, args ...any) string {
	return fmt.Sprintf(l.Get(lang, key), args...)
}

// Languages lists the loaded language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		out = append(out, lang)
	}
	return out
}

// Normalize lowercases a language tag and strips its region.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}
