package ui

import (
	"github.com/desertthunder/geniust/internal/models"
)

// recommendedMsg carries the outcome of processing the chosen preferences.
type recommendedMsg struct {
	prefs  models.Preferences
	tracks []models.Song
	err    error
}

// savedMsg reports whether the preferences were persisted.
type savedMsg struct {
	err error
}
