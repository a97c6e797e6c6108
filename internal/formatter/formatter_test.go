package formatter

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	tu "github.com/desertthunder/geniust/internal/testing"
	"github.com/goccy/go-json"
)

func sampleSongs() []models.Song {
	return []models.Song{
		{
			ID:          1,
			Title:       "Lose Yourself",
			Artist:      "Eminem",
			Genres:      []string{"rap"},
			PreviewURL:  "https://p.scdn.co/mp3-preview/1",
			DownloadURL: "https://media.geniust.app/tracks/1.mp3",
		},
		{
			ID:     2,
			Title:  "Hello, World",
			Artist: "Adele",
			Genres: []string{"pop", "rnb"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"txt", FormatText},
		{"MD", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"csv", FormatCSV},
		{" json ", FormatJSON},
	}
	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMedia(t *testing.T) {
	songs := sampleSongs()
	if got := Media(songs[0]); got != "preview, full" {
		t.Errorf("Media() = %q", got)
	}
	if got := Media(songs[1]); got != "none" {
		t.Errorf("Media() = %q", got)
	}
	if got := Media(models.Song{DownloadURL: "https://x.test/a.mp3"}); got != "full" {
		t.Errorf("Media() = %q", got)
	}
}

func TestRender(t *testing.T) {
	songs := sampleSongs()

	t.Run("CSV", func(t *testing.T) {
		data, err := ToCSV(songs)
		if err != nil {
			t.Fatalf("ToCSV failed: %v", err)
		}
		output := string(data)
		if !strings.HasPrefix(output, "ID,Title,Artist,Genres,Preview,Download\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `2,"Hello, World",Adele,pop;rnb,,`) {
			t.Errorf("CSV should quote commas and join genres, got: %s", output)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		output := string(ToMarkdown("Recommendations", songs))
		for _, want := range []string{
			"# Recommendations",
			"**Tracks**: 2",
			"1. Eminem - Lose Yourself *(rap)*",
			"[preview](https://p.scdn.co/mp3-preview/1)",
			"[download](https://media.geniust.app/tracks/1.mp3)",
			"2. Adele - Hello, World *(pop, rnb)*\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("Text", func(t *testing.T) {
		output := string(ToText(songs))
		if !strings.Contains(output, "Tracks: 2") {
			t.Errorf("Text missing count, got: %s", output)
		}
		if !strings.Contains(output, "1. Eminem - Lose Yourself [preview, full]") {
			t.Errorf("Text missing first track, got: %s", output)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := ToJSON(songs)
		if err != nil {
			t.Fatal(err)
		}
		var got []models.Song
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 2 || got[1].Title != "Hello, World" {
			t.Errorf("decoded %+v", got)
		}
	})

	t.Run("JSON empty", func(t *testing.T) {
		data, err := ToJSON(nil)
		if err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("ToJSON(nil) = %s, want []", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Render(Format("xml"), "", songs); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWrite(t *testing.T) {
	songs := sampleSongs()

	t.Run("writer", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatText, "", songs); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Adele") {
			t.Errorf("output = %s", buf.String())
		}
	})

	t.Run("failing writer", func(t *testing.T) {
		if err := Write(&tu.FWriter{}, FormatText, "", songs); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("file", func(t *testing.T) {
		for _, format := range Formats {
			path := filepath.Join(t.TempDir(), "recommendations"+Extension(format))
			if err := WriteFile(path, format, "Recommendations", songs); err != nil {
				t.Fatalf("WriteFile(%s) failed: %v", format, err)
			}
			tu.AssertFileExists(t, path)
			if content := tu.MustReadFile(t, path); !strings.Contains(content, "Eminem") {
				t.Errorf("%s output missing artist: %s", format, content)
			}
		}
	})

	t.Run("bad path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")
		if err := WriteFile(path, FormatText, "", songs); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
