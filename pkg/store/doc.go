// Package store defines the persistence port consumed by the roster session:
// a flat key -> document mapping with per-document reads, writes and deletes,
// plus ordered key-range queries used to fetch the future and past windows.
//
// Responsibilities:
//   - Store implementations only load/save/delete single documents and answer
//     range queries; they know nothing about rows, roles or history.
//   - The roster package owns encoding (rows, metadata, audit records) and the
//     decision of which documents to write for each mutation.
//   - Consistency is last-write-wins per document. There is no versioning or
//     locking contract at this boundary; timeouts belong to the adapter.
//
// Keys:
//
//	Row documents are keyed by their `YYYY.MM.DD` date. Keys starting with `_`
//	are reserved (MetadataKey, audit records stored alongside rows) and are never
//	rows. Because `_` sorts after every digit, reserved keys always trail the
//	row keys in a Query result.
package store
