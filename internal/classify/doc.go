// Package classify turns segmented spans into classified messages.
//
// Severity comes from the first rule, in declared order, that matches at the
// start of the span's first line. The identifier is the first match of the
// id rule on that line, and the category is its lowercased first token. File
// references are taken from a bracketed [path:line] form first, then from an
// inline /abs/path.ext:line form.
package classify
