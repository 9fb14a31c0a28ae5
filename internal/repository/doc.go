// Package repository defines the data access interface for unit databases.
//
// A collection is split into units, each stored in its own database file
// with a single oembed table:
//
//	url                     TEXT  record URL (primary key)
//	object_uri              TEXT  object identifier shared by representations
//	body                    TEXT  oEmbed JSON payload
//	has_thumbnail           INT   1 when body carries thumbnail_url
//	has_data_url            INT   1 when body carries data_url
//	has_thumbnail_data_url  INT   1 when body carries thumbnail_data_url
//
// # Query Shapes
//
// Store answers exactly four queries: a random url sample, point lookup by
// url, point lookup by object_uri, and the summary projection used for
// enumeration. All take bound parameters.
//
// # SQLite Implementation
//
// The sqlite subpackage opens unit files read-only through
// modernc.org/sqlite and counts issued queries so callers can observe
// cache effectiveness.
package repository
