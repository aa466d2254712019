// Package match ranks known names against a misspelled one, for the
// "did you mean" hints attached to configuration diagnostics.
package match
