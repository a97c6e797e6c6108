package shared

import (
	"strings"
	"testing"
)

func TestTexts(t *testing.T) {
	texts, err := LoadTexts()
	if err != nil {
		t.Fatalf("LoadTexts() error = %v", err)
	}

	t.Run("every language has every english key", func(t *testing.T) {
		for lang, table := range texts {
			for key := range texts["en"] {
				if _, ok := table[key]; !ok {
					t.Errorf("language %q missing key %q", lang, key)
				}
			}
		}
	})

	t.Run("placeholder substitution", func(t *testing.T) {
		got := texts.Get("en", TextLoginSuccessful, "platform", "Genius")
		if !strings.Contains(got, "Genius") || strings.Contains(got, "{platform}") {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("unknown language falls back to english", func(t *testing.T) {
		if got, want := texts.Get("de", TextLoginFailed), texts.Get("en", TextLoginFailed); got != want {
			t.Errorf("Get(de) = %q, want %q", got, want)
		}
	})

	t.Run("farsi differs from english", func(t *testing.T) {
		if texts.Get("fa", TextLoginFailed) == texts.Get("en", TextLoginFailed) {
			t.Error("expected a farsi translation")
		}
	})

	t.Run("unknown key returns key", func(t *testing.T) {
		if got := texts.Get("en", "nope"); got != "nope" {
			t.Errorf("Get(nope) = %q", got)
		}
	})
}
