// Package sqlite provides the modernc.org/sqlite backed settings store.
//
// One database file is shared by every plugin process; rows are keyed by
// (owner, id) and hold the JSON-encoded value.
package sqlite
