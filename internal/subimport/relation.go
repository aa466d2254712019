package subimport

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Relation,ConflictPolicy -linecomment -output=relation_string.go

// Relation is the cardinality of an attachment.
type Relation int

const (
	RelationOne  Relation = iota // one
	RelationMany                 // many
)

// ParseRelation parses "one" or "many"; empty means one.
func ParseRelation(s string) (Relation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", RelationOne.String():
		return RelationOne, nil
	case RelationMany.String():
		return RelationMany, nil
	default:
		return 0, fmt.Errorf("unknown relation %q (expected one or many)", s)
	}
}

// ConflictPolicy decides what happens when a sub-import is named like an
// existing key of the primary record. Overriding the key is never allowed.
// Under ConflictSkip the existing key is kept and sub-imports binding through
// that name resolve against it; under ConflictError they fail as unresolved.
type ConflictPolicy int

const (
	ConflictError ConflictPolicy = iota // error
	ConflictSkip                        // skip
)

// ParseConflictPolicy parses "error" or "skip"; empty means error.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ConflictError.String():
		return ConflictError, nil
	case ConflictSkip.String():
		return ConflictSkip, nil
	default:
		return 0, fmt.Errorf("unknown conflict policy %q (expected error or skip)", s)
	}
}
