// Package model defines the data types shared by every stage of the log
// triage pipeline.
//
// A [Message] is one logical log entry, possibly spanning several raw lines.
// Messages are produced once by an adapter's segment and classify pass and
// are never mutated afterwards. A [Scheme] is a tool-declared ranked set of
// [SeverityLevel] values; [DefaultScheme] is used when an adapter declares
// none. [FilterDefinition] and [GroupingField] describe adapter presets for
// filtering and aggregation.
package model
