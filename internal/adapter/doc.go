// Package adapter defines the tool adapter contract and the registry that
// selects an adapter for a log file.
//
// An [Adapter] supplies everything dialect-specific: a confidence score for
// a file, segmentation and classification rules, a severity scheme, grouping
// fields, and preset filters. [Registry.Detect] picks the single adapter
// scoring at or above [Threshold]; more than one is a [ConflictError], none
// is [ErrNoAdapter].
//
// [RuleAdapter] builds an adapter from compiled segment and classify rules,
// which covers most line-oriented tool logs.
package adapter
