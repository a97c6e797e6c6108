// Package ui implements the shuffle flow as a terminal interface using bubbletea's Elm architecture.
//
// The [Model] walks the same stages a chat goes through with the bot ([recommender.Stage]):
//  1. Welcome: greeting in the chosen bot language
//  2. Select genres: toggle genres offered for the user's age
//  3. Select artists: optionally toggle catalog artists (filterable with /)
//  4. Process preferences: validate, shuffle and optionally save
//  5. Display, or End when nothing matched
//
// Saved preferences skip straight to processing. Keyboard navigation uses vim-style bindings
// (j/k, space or x to toggle, enter, esc, r, q) with contextual help from charmbracelet/bubbles/help.
package ui
