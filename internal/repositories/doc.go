// Package repositories persists per-chat settings, OAuth tokens and saved preferences.
//
// Every operation borrows a pooled connection, runs inside a transaction and releases the
// connection on all exit paths. SQL text is fixed: updatable columns and token platforms are
// looked up in enumerated statement tables, never formatted into queries.
package repositories
