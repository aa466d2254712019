// Package expr compiles and evaluates the path expressions used by import
// statements to derive group names and host variables from inventory records.
//
// # Syntax
//
//	ALL                               the whole record, verbatim
//	site.name                         mapping navigation
//	.site.name                        same, anchored at the record root
//	interfaces[].name                 flatten: continue per list element
//	primary_ip.address // ""          fallback when the left side is absent
//	name | lower | sub("-", "_")      filter pipeline, applied left to right
//
// The fallback operator is sugar for the default filter:
// "a // b" compiles to the same pipeline as "a | default(b)".
//
// # Absence
//
// A missing key, a non-mapping intermediate value or an absent value anywhere
// along navigation yields nil, never an error. Filters pass nil through
// untouched, except default which replaces it.
//
// # Filters
//
//   - sub(pattern, replacement): regular expression substitution on strings
//   - default(fallback): fallback navigation or literal, evaluated against the record
//   - lower, upper: case mapping on strings
//   - join(separator): joins list elements into a string
//   - first: the first element of a list
//   - match(pattern): whether a string contains a match; absent values do not
//
// On a flattened path sub, default, lower, upper and match apply to each element,
// as deep as the path has flatten markers; join and first take each
// innermost list as a whole and remove one level of nesting.
//
// Malformed expressions and unknown filters are rejected by Compile.
// Evaluation only fails with ErrType, when a filter or a flatten marker meets
// a value of the wrong kind.
package expr
