// Package recommender turns user preferences into an ordered list of catalog songs.
//
// Selection is a pure filter over the catalog: a song qualifies when it shares a genre
// with the preferences, satisfies the persian exclusivity rule and exposes the media
// the requested [models.SongType] needs. Qualifying songs are shuffled.
//
// The conversation stages are modelled by [Stage]; the engine exposes one function per
// stage's data need and keeps no conversation state.
package recommender
