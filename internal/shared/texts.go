package shared

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed texts.toml
var textsFile []byte

// Texts holds chat messages per bot language.
type Texts map[string]map[string]string

// Message keys.
const (
	TextLoginSuccessful  = "login_successful"
	TextLoginFailed      = "login_failed"
	TextWelcome          = "welcome"
	TextSelectGenres     = "select_genres"
	TextSelectArtists    = "select_artists"
	TextNoSongs          = "no_songs"
	TextPreferencesReset = "preferences_reset"
)

const fallbackLang = "en"

// LoadTexts parses the embedded message table.
func LoadTexts() (Texts, error) {
	var t Texts
	if err := toml.Unmarshal(textsFile, &t); err != nil {
		return nil, fmt.Errorf("failed to parse texts: %w", err)
	}
	if _, ok := t[fallbackLang]; !ok {
		return nil, fmt.Errorf("%w: texts missing %q table", ErrInvalidConfig, fallbackLang)
	}
	return t, nil
}

// DefaultTexts is like [LoadTexts] but panics on a broken embedded table.
func DefaultTexts() Texts {
	t, err := LoadTexts()
	if err != nil {
		panic(err)
	}
	return t
}

// Get returns the message for key in lang, falling back to English and then to the key itself.
//
// Placeholders written as {name} are replaced from vars, given as name/value pairs.
func (t Texts) Get(lang, key string, vars ...string) string {
	msg, ok := t[lang][key]
	if !ok {
		if msg, ok = t[fallbackLang][key]; !ok {
			msg = key
		}
	}
	for i := 0; i+1 < len(vars); i += 2 {
		msg = strings.ReplaceAll(msg, "{"+vars[i]+"}", vars[i+1])
	}
	return msg
}
