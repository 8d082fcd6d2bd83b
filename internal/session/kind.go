package session

import "strings"

// Kind classifies a registered statement.
type Kind int

const (
	// KindUnknown is never valid for a bound statement.
	KindUnknown Kind = iota
	KindInsert
	KindUpdate
	KindDelete
	KindSelect
	KindFlush
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindInsert:  "insert",
	KindUpdate:  "update",
	KindDelete:  "delete",
	KindSelect:  "select",
	KindFlush:   "flush",
}

// String returns the lowercase name used in statement files.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsMutation reports whether statements of this kind return a row count.
func (k Kind) IsMutation() bool {
	return k == KindInsert || k == KindUpdate || k == KindDelete
}

// ParseKind maps a statement file kind to a Kind.
// Unrecognised names map to KindUnknown rather than failing, so the
// registry can keep the statement and report it when a method binds to it.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert", "create":
		return KindInsert
	case "update":
		return KindUpdate
	case "delete":
		return KindDelete
	case "select", "read":
		return KindSelect
	case "flush":
		return KindFlush
	default:
		return KindUnknown
	}
}
