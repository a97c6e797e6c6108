// package formatter renders recommended songs as plain text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/geniust/internal/models"
	"github.com/desertthunder/geniust/internal/shared"
	"github.com/goccy/go-json"
)

// Format is an output format name.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat accepts a format name or its common aliases ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Media describes which downloads a song offers, e.g. "preview, full".
func Media(s models.Song) string {
	var parts []string
	if s.HasPreview() {
		parts = append(parts, "preview")
	}
	if s.HasDownload() {
		parts = append(parts, "full")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// ToCSV renders songs with columns: ID, Title, Artist, Genres, Preview, Download.
// Genres are joined with ";".
func ToCSV(songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Artist", "Genres", "Preview", "Download"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range songs {
		record := []string{
			strconv.Itoa(s.ID),
			s.Title,
			s.Artist,
			strings.Join(s.Genres, ";"),
			s.PreviewURL,
			s.DownloadURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMarkdown renders songs as a numbered list under title, linking available media.
func ToMarkdown(title string, songs []models.Song) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(songs))

	for i, s := range songs {
		fmt.Fprintf(&buf, "%d. %s - %s *(%s)*", i+1, s.Artist, s.Title, strings.Join(s.Genres, ", "))
		if s.HasPreview() {
			fmt.Fprintf(&buf, " [preview](%s)", s.PreviewURL)
		}
		if s.HasDownload() {
			fmt.Fprintf(&buf, " [download](%s)", s.DownloadURL)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// ToText renders songs one per line.
func ToText(songs []models.Song) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(songs))
	for i, s := range songs {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, s.Artist, s.Title, Media(s))
	}
	return buf.Bytes()
}

// ToJSON renders songs as an indented array.
func ToJSON(songs []models.Song) ([]byte, error) {
	if songs == nil {
		songs = []models.Song{}
	}
	data, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Render produces songs in format. title is only used by Markdown.
func Render(format Format, title string, songs []models.Song) ([]byte, error) {
	switch format {
	case FormatText:
		return ToText(songs), nil
	case FormatMarkdown:
		return ToMarkdown(title, songs), nil
	case FormatCSV:
		return ToCSV(songs)
	case FormatJSON:
		return ToJSON(songs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Write renders songs to w.
func Write(w io.Writer, format Format, title string, songs []models.Song) error {
	data, err := Render(format, title, songs)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteFile renders songs to path, creating or truncating it.
func WriteFile(path string, format Format, title string, songs []models.Song) error {
	data, err := Render(format, title, songs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Extension returns the file extension conventionally used for format.
func Extension(format Format) string {
	switch format {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}
