// Package check turns classified messages into a pass/fail verdict.
//
// [Decide] narrows messages to candidates with inclusion filters and
// suppressions, removes those exonerated by waivers, and fails when any
// remaining candidate is at or above the fail-on level. [BuildReport]
// renders the result into the structured report consumed by CI.
package check
