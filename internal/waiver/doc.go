// Package waiver loads, matches, and generates waivers.
//
// A waiver is a recorded exemption with an audit trail (author, reason,
// date) that stops a matching message from failing a check. Waiver files are
// TOML documents:
//
//	[metadata]
//	tool = "vivado"
//
//	[[waiver]]
//	type = "id"               # id, pattern, file, or hash
//	pattern = "Synth 8-6157"
//	reason = "Intentional black box"
//	author = "jane@example.com"
//	date = "2026-01-18"
//	expires = "2026-06-01"    # optional
//	ticket = "HW-123"         # optional
//
// A [Matcher] partitions waivers by type and evaluates them in a fixed
// priority order: hash, id, pattern, file. More specific identifiers win
// over broader heuristics.
package waiver
