package waiver

import (
	"time"
)

// Type is the matching strategy of a waiver.
type Type string

const (
	TypeID      Type = "id"
	TypePattern Type = "pattern"
	TypeFile    Type = "file"
	TypeHash    Type = "hash"
)

// ValidTypes lists the waiver types in sorted order.
var ValidTypes = []Type{TypeFile, TypeHash, TypeID, TypePattern}

// Valid reports whether t is a known waiver type.
func (t Type) Valid() bool {
	switch t {
	case TypeID, TypePattern, TypeFile, TypeHash:
		return true
	}
	return false
}

// Waiver is a single exemption entry. Expires and Ticket are optional.
type Waiver struct {
	Type    Type   `json:"type" yaml:"type"`
	Pattern string `json:"pattern" yaml:"pattern"`
	Reason  string `json:"reason" yaml:"reason"`
	Author  string `json:"author" yaml:"author"`
	Date    string `json:"date" yaml:"date"`
	Expires string `json:"expires,omitempty" yaml:"expires,omitempty"`
	Ticket  string `json:"ticket,omitempty" yaml:"ticket,omitempty"`
}

// dateLayout is the ISO date format used in waiver files.
const dateLayout = "2006-01-02"

// Expired reports whether the waiver has an expiry date strictly before
// now's calendar day. Unparseable or empty expiry dates never expire.
// Expired waivers still match; expiry is reported, not enforced.
func (w Waiver) Expired(now time.Time) bool {
	if w.Expires == "" {
		return false
	}
	exp, err := time.ParseInLocation(dateLayout, w.Expires, now.Location())
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return exp.Before(today)
}

// File is a parsed waiver file.
type File struct {
	Tool    string   `json:"tool,omitempty" yaml:"tool,omitempty"`
	Waivers []Waiver `json:"waivers" yaml:"waivers"`
	Path    string   `json:"path,omitempty" yaml:"path,omitempty"`
}

// Expired returns the waivers in f that have expired as of now.
func (f *File) Expired(now time.Time) []Waiver {
	var out []Waiver
	for _, w := range f.Waivers {
		if w.Expired(now) {
			out = append(out, w)
		}
	}
	return out
}
