// Package aggregate groups messages along a field and builds severity
// summaries.
package aggregate
