package domain

import (
	"github.com/yosida95/uritemplate/v3"
)

// Object is a Record bound to the collection that served it. It carries
// the presentation fields the raw payload does not: the collection name
// and the template used to synthesize an object URI.
type Object struct {
	collection  string
	urlTemplate *uritemplate.Template
	record      *Record
}

// NewObject wraps a decoded record. tmpl may be nil, in which case no
// object URI is synthesized for payloads that omit one.
func NewObject(collection string, tmpl *uritemplate.Template, record *Record) *Object {
	return &Object{
		collection:  collection,
		urlTemplate: tmpl,
		record:      record,
	}
}

// Collection returns the name of the collection the object belongs to
func (o *Object) Collection() string {
	return o.collection
}

// ObjectID returns object_id, falling back to object_uri
func (o *Object) ObjectID() string {
	if o.record.ObjectID != nil {
		return *o.record.ObjectID
	}
	return deref(o.record.ObjectURI)
}

// ObjectURL returns the object's public page: author_url, then object_url
func (o *Object) ObjectURL() string {
	if o.record.AuthorURL != nil {
		return *o.record.AuthorURL
	}
	return deref(o.record.ObjectURL)
}

// ObjectURI returns object_uri, or expands the collection's object URL
// template with the object id when the payload omits it.
func (o *Object) ObjectURI() string {
	if o.record.ObjectURI != nil {
		return *o.record.ObjectURI
	}
	if o.urlTemplate == nil {
		return ""
	}
	uri, err := o.urlTemplate.Expand(uritemplate.Values{
		"object_id": uritemplate.String(o.ObjectID()),
	})
	if err != nil {
		return ""
	}
	return uri
}

func (o *Object) ObjectTitle() string {
	return o.record.Title
}

// ImageURL prefers the inline data URL over the remote image URL
func (o *Object) ImageURL() string {
	if o.record.DataURL != nil {
		return *o.record.DataURL
	}
	return o.record.URL
}

// ThumbnailURL prefers the inline thumbnail data URL over the remote one.
// Empty when the record has neither.
func (o *Object) ThumbnailURL() string {
	if o.record.ThumbnailDataURL != nil {
		return *o.record.ThumbnailDataURL
	}
	return deref(o.record.ThumbnailURL)
}

// Raw returns the decoded record. Callers must not modify it.
func (o *Object) Raw() *Record {
	return o.record
}

// ObjectView is the JSON shape of an Object used by outer surfaces
type ObjectView struct {
	Collection   string  `json:"collection"`
	ObjectID     string  `json:"object_id"`
	ObjectURL    string  `json:"object_url,omitempty"`
	ObjectURI    string  `json:"object_uri,omitempty"`
	Title        string  `json:"title"`
	ImageURL     string  `json:"image_url"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	OEmbed       *Record `json:"oembed"`
}

// View flattens the object for serialization
func (o *Object) View() ObjectView {
	return ObjectView{
		Collection:   o.Collection(),
		ObjectID:     o.ObjectID(),
		ObjectURL:    o.ObjectURL(),
		ObjectURI:    o.ObjectURI(),
		Title:        o.ObjectTitle(),
		ImageURL:     o.ImageURL(),
		ThumbnailURL: o.ThumbnailURL(),
		OEmbed:       o.record,
	}
}
