// Package catalog holds the static song collection used for recommendations.
//
// A catalog is a JSON document with three parts: the genre vocabulary (its order defines
// the indicator vector layout), age bands mapping age ranges to genres, and the songs.
// The default document is embedded from data/songs.json; a different one can be supplied
// through the catalog.path config key.
package catalog
