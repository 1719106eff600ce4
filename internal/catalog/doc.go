// Package catalog holds the operator metadata the editor offers: one schema
// per operator type with its display name, group and port counts.
//
// A Catalog is an atomically swapped snapshot. Readers always see a complete
// catalog; Replace validates the new set before publishing it, so a broken
// YAML edit or database row never empties the palette.
package catalog
