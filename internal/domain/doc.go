// Package domain defines the value types shared by the collection reader.
//
// # Records
//
// Record is the decoded oEmbed payload stored in each unit database. It is
// produced by the codec package and never modified afterwards.
//
// Object wraps a Record with collection-level presentation fields (the
// collection name and the object URL template) and exposes the derived
// accessors used by callers: ObjectID, ObjectURI, ImageURL, ThumbnailURL.
//
// Summary is the per-row projection yielded when enumerating a collection:
// the record URL plus asset presence flags.
//
// # Capabilities
//
// Capability and Capabilities describe the optional features (NFC and BLE
// tags, random objects, saving) a collection is configured to offer.
package domain
