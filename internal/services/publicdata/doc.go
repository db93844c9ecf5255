// Package publicdata provides the public enrichment sources used during
// verification: an HTTP JSON lookup service, a deterministic synthetic source
// for offline use and tests, and a disabled source.
package publicdata
