// Package builder creates new operators from the metadata catalog. Ids come
// from an injectable IDGenerator so tests can predict them.
package builder
