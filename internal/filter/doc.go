// Package filter selects and suppresses classified messages with regular
// expressions.
//
// Inclusion filters combine in AND or OR mode. Suppressions remove messages
// whose raw text matches any pattern and are display-only: unlike waivers
// they carry no audit trail. Patterns supplied at apply time are best-effort;
// an invalid pattern is skipped rather than failing the whole operation.
// Every function preserves input order.
package filter
