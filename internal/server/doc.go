// Package server provides HTTP routing, middleware and handlers for the bot's web surface.
//
// # Routes
//
//	GET /genres?age=<int>                                  genres suitable for an age
//	GET /search?artist=<query>                             catalog artists matching a query
//	GET /recommendations?genres=&artists=&song_type=       shuffled tracks for preferences
//	GET /callback?state=&code=                             OAuth provider redirect
//	GET /cron                                              keep-alive check
//
// JSON endpoints answer with an envelope {"response": ..., "error": "..."}; the error key is
// only present on failures.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] method patterns, so a wrong method is answered with 405 by the mux.
// [Middleware] wraps the whole mux: request logging, CORS and a per-client rate limit.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and
// adds routes, so each handler owns its route definitions.
package server
