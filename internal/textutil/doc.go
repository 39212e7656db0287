// Package textutil provides small text helpers for turning user-supplied
// spectrum names into safe file stems and for normalizing column headers.
package textutil
