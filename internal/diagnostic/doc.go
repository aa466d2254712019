// Package diagnostic provides structured errors, warnings and infos found
// while loading and compiling an inventory configuration.
//
// Each diagnostic names the import statement and field it relates to, so
// that authoring mistakes can be reported in one pass rather than one at a
// time.
package diagnostic
