// Package redact masks secrets in parsed log messages and check reports
// before they are printed or written as CI artifacts.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// AWS access key IDs, bearer tokens, credentials embedded in URLs, private
// key headers and provider tokens (GitHub, Slack).
//
// Path-based redaction is also supported: file references whose paths match
// configured glob patterns are replaced with [REDACTED].
package redact
