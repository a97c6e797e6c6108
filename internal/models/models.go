package models

import (
	"fmt"
	"slices"
	"strings"
)

// Platform identifies an OAuth provider a chat can link.
type Platform string

const (
	PlatformGenius  Platform = "genius"
	PlatformSpotify Platform = "spotify"
)

// ParsePlatform converts a raw string into a known [Platform].
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformGenius, PlatformSpotify:
		return p, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

func (p Platform) String() string { return string(p) }

// SongType selects which media URLs a recommended song must expose.
type SongType string

const (
	SongTypeAny         SongType = "any"
	SongTypePreview     SongType = "preview"
	SongTypeFull        SongType = "full"
	SongTypePreviewFull SongType = "preview,full"
)

// ParseSongType converts a raw query value into a [SongType]. An empty value means [SongTypeAny].
func ParseSongType(s string) (SongType, error) {
	switch t := SongType(strings.TrimSpace(s)); t {
	case "":
		return SongTypeAny, nil
	case SongTypeAny, SongTypePreview, SongTypeFull, SongTypePreviewFull:
		return t, nil
	default:
		return "", fmt.Errorf("unknown song type %q", s)
	}
}

// Column names an updatable user setting.
type Column string

const (
	ColumnIncludeAnnotations Column = "include_annotations"
	ColumnLyricsLang         Column = "lyrics_lang"
	ColumnBotLang            Column = "bot_lang"
)

// Defaults applied when a user record is first created.
const (
	DefaultIncludeAnnotations = true
	DefaultLyricsLang         = "English + Non-English"
	DefaultBotLang            = "en"
)

// AgeBand is an inclusive age range.
type AgeBand struct {
	Min int `json:"min" validate:"gte=0"`
	Max int `json:"max" validate:"gtefield=Min"`
}

// Contains reports whether age falls inside the band.
func (b AgeBand) Contains(age int) bool {
	return age >= b.Min && age <= b.Max
}

// Song is a catalog entry. Empty URLs mean the media is not available.
type Song struct {
	ID          int      `json:"id" validate:"gt=0"`
	Title       string   `json:"title" validate:"required"`
	Artist      string   `json:"artist" validate:"required"`
	Genres      []string `json:"genres" validate:"required,min=1,dive,required"`
	AgeBand     AgeBand  `json:"age_band"`
	PreviewURL  string   `json:"preview_url,omitempty" validate:"omitempty,url"`
	DownloadURL string   `json:"download_url,omitempty" validate:"omitempty,url"`
}

func (s Song) HasGenre(genre string) bool { return slices.Contains(s.Genres, genre) }
func (s Song) HasPreview() bool           { return s.PreviewURL != "" }
func (s Song) HasDownload() bool          { return s.DownloadURL != "" }

// SuitableFor reports whether the song's age band admits the given age.
// A zero band (0-0) admits everyone.
func (s Song) SuitableFor(age int) bool {
	if s.AgeBand == (AgeBand{}) {
		return true
	}
	return s.AgeBand.Contains(age)
}

// Preferences are the genres and artists a user picked in the recommendation flow.
type Preferences struct {
	Genres  []string `json:"genres"`
	Artists []string `json:"artists"`
}

// UserRecord is the persisted per-chat settings row.
type UserRecord struct {
	ChatID             int64
	IncludeAnnotations bool
	LyricsLang         string
	BotLang            string
	GeniusToken        *string
	SpotifyToken       *string
}

// NewUserRecord returns a record populated with the default settings.
func NewUserRecord(chatID int64) *UserRecord {
	return &UserRecord{
		ChatID:             chatID,
		IncludeAnnotations: DefaultIncludeAnnotations,
		LyricsLang:         DefaultLyricsLang,
		BotLang:            DefaultBotLang,
	}
}

// Token returns the stored token for platform, or "" when none is linked.
func (u *UserRecord) Token(platform Platform) string {
	var t *string
	switch platform {
	case PlatformGenius:
		t = u.GeniusToken
	case PlatformSpotify:
		t = u.SpotifyToken
	}
	if t == nil {
		return ""
	}
	return *t
}

// PendingAuthState is issued when a chat starts an OAuth flow and consumed by the callback.
type PendingAuthState struct {
	ChatID   int64
	Platform Platform
	Nonce    string
}

// String renders the state in its wire form: "<chat_id>_<platform>_<nonce>".
func (s PendingAuthState) String() string {
	return fmt.Sprintf("%d_%s_%s", s.ChatID, s.Platform, s.Nonce)
}
