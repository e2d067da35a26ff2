// Package segment splits a raw log line stream into logical message spans.
//
// A span begins at a line matching the start rule and absorbs following
// lines while they match the continuation rule, do not themselves start a
// new message, are not blank, and the span is below its size cap. Lines that
// neither start nor continue a message are dropped.
package segment
