package models

// Session is the per-chat state shared between the conversation flow and the HTTP handlers.
type Session struct {
	BotLang       string       `json:"bot_lang,omitempty"`
	GeniusToken   string       `json:"genius_token,omitempty"`
	SpotifyToken  string       `json:"spotify_token,omitempty"`
	State         string       `json:"state,omitempty"`
	StatePlatform Platform     `json:"state_platform,omitempty"`
	Genres        []string     `json:"genres,omitempty"`
	Artists       []string     `json:"artists,omitempty"`
	Preferences   *Preferences `json:"preferences,omitempty"`
}

// Clone returns a deep copy so stores never hand out shared slices.
func (s *Session) Clone() *Session {
	if s == nil {
		return &Session{}
	}
	c := *s
	c.Genres = append([]string(nil), s.Genres...)
	c.Artists = append([]string(nil), s.Artists...)
	if s.Preferences != nil {
		p := Preferences{
			Genres:  append([]string(nil), s.Preferences.Genres...),
			Artists: append([]string(nil), s.Preferences.Artists...),
		}
		c.Preferences = &p
	}
	return &c
}

// SetToken stores token for platform.
func (s *Session) SetToken(platform Platform, token string) {
	switch platform {
	case PlatformGenius:
		s.GeniusToken = token
	case PlatformSpotify:
		s.SpotifyToken = token
	}
}

// Language returns the bot language, falling back to [DefaultBotLang].
func (s *Session) Language() string {
	if s == nil || s.BotLang == "" {
		return DefaultBotLang
	}
	return s.BotLang
}

// ClearState drops any pending OAuth nonce.
func (s *Session) ClearState() {
	s.State = ""
	s.StatePlatform = ""
}
