package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/geniust/internal/formatter"
	"github.com/desertthunder/geniust/internal/models"
)

var (
	_ list.Item = choiceItem{}
	_ list.Item = songItem{}
)

// choiceItem is a toggleable genre or artist.
type choiceItem struct {
	value    string
	selected bool
}

func (i choiceItem) FilterValue() string { return i.value }
func (i choiceItem) Title() string {
	if i.selected {
		return "[x] " + i.value
	}
	return "[ ] " + i.value
}
func (i choiceItem) Description() string { return "" }

func choices(values, selected []string) []list.Item {
	items := make([]list.Item, len(values))
	for i, v := range values {
		items[i] = choiceItem{value: v, selected: slices.Contains(selected, v)}
	}
	return items
}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Artist + " " + i.song.Title }
func (i songItem) Title() string       { return i.song.Artist + " - " + i.song.Title }
func (i songItem) Description() string {
	return strings.Join(i.song.Genres, ", ") + " • " + formatter.Media(i.song)
}

func songs(tracks []models.Song) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, s := range tracks {
		items[i] = songItem{song: s}
	}
	return items
}

func newList(title string, items []list.Item, describe bool, width, height int) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = describe
	l := list.New(items, delegate, width, height)
	l.Title = title
	l.SetShowHelp(false)
	return l
}
