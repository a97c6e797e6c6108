// Package services talks to the external providers the bot depends on.
//
// # OAuth Providers
//
// [GeniusAuth] and [SpotifyAuth] implement [Provider]: they build authorization URLs
// carrying the chat's pending state and exchange the returned code for the token the bot
// keeps. Genius hands out long-lived access tokens; for Spotify the refresh token is kept
// because access tokens expire after an hour.
//
// # Chat Notifications
//
// [TelegramNotifier] sends confirmation and failure messages to a chat through the Bot API.
// [NopNotifier] logs them instead when no bot token is configured.
//
// # HTTP
//
// Outbound calls go through [NewHTTPClient], which retries connection failures and 5xx
// responses with exponential backoff.
//
// # Error Handling
//
//   - [shared.ErrProviderError] : the provider rejected the authorization code
//   - [shared.ErrMissingCredentials] : client id or secret not configured
//   - [shared.ErrAPIRequest] : the Bot API refused a message
package services
