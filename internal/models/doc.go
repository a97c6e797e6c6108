// Package models defines domain entities shared by every layer of the lyrics bot backend.
//
// The package contains three categories of types:
//
// 1. Catalog data: immutable values loaded once at startup
//   - [Song] : a recommendable track tagged with genres, an [AgeBand] and media URLs
//
// 2. Per-user state
//   - [UserRecord] : the persisted settings row keyed by chat id
//   - [Preferences] : genres and artists collected by the recommendation flow
//   - [Session] : in-process (or Redis) state shared by the chat flow and HTTP handlers
//   - [PendingAuthState] : a single-use OAuth nonce issued to a chat
//
// 3. Enumerations
//   - [Platform] : OAuth providers (Genius, Spotify)
//   - [SongType] : which media a recommendation must expose
//   - [Column] : the fixed set of user settings that can be updated
package models
