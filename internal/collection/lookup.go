package collection

import (
	"net/url"
)

// SentinelScheme marks a URL whose "url" query parameter carries the
// object URI to look up, as written to NFC tags: nfc:///?url={object_uri}
const SentinelScheme = "nfc"

// Lookup is the decoded form of a GetOEmbed request. It is either a
// DirectLookup or an IndirectLookup.
type Lookup interface {
	isLookup()
}

// DirectLookup selects one representation of an object by its exact
// record URL
type DirectLookup struct {
	URL *url.URL
}

// IndirectLookup selects an object by the object URI embedded in a
// sentinel-scheme URL
type IndirectLookup struct {
	// ObjectURI is the raw query parameter value matched against
	// the object_uri column
	ObjectURI string
	// Embedded is ObjectURI parsed, used to resolve the unit
	Embedded *url.URL
}

func (DirectLookup) isLookup()   {}
func (IndirectLookup) isLookup() {}

// ParseLookup classifies u once so the query shape is chosen by type
func ParseLookup(u *url.URL) (Lookup, error) {
	if u.Scheme != SentinelScheme {
		return DirectLookup{URL: u}, nil
	}

	query := u.Query()
	if !query.Has("url") {
		return nil, ErrMissingOEmbedQueryParameter
	}

	objectURI := query.Get("url")
	embedded, err := url.Parse(objectURI)
	if err != nil {
		return nil, ErrInvalidNFCURL
	}

	return IndirectLookup{ObjectURI: objectURI, Embedded: embedded}, nil
}
