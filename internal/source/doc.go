// Package source loads records for the inventory builder, either from the
// NetBox REST API (Client) or from a local YAML or JSON dump (File). Both
// implement inventory.Fetcher and subimport.RelatedFetcher.
package source
