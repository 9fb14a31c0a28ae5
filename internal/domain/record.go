package domain

// Record is a decoded oEmbed entry describing one collection object.
// Optional fields are nil when absent from the stored payload.
type Record struct {
	Version          string  `json:"version"`
	Type             string  `json:"type"`
	ProviderName     string  `json:"provider_name"`
	Title            string  `json:"title"`
	AuthorURL        *string `json:"author_url,omitempty"`
	URL              string  `json:"url"`
	Height           int     `json:"height"`
	Width            int     `json:"width"`
	ThumbnailURL     *string `json:"thumbnail_url,omitempty"`
	ThumbnailDataURL *string `json:"thumbnail_data_url,omitempty"`
	ObjectURL        *string `json:"object_url,omitempty"`
	ObjectID         *string `json:"object_id,omitempty"`
	ObjectURI        *string `json:"object_uri,omitempty"`
	DataURL          *string `json:"data_url,omitempty"`
}

// Summary is the lightweight view of a stored record produced by
// collection iteration.
type Summary struct {
	URL                 string `json:"url"`
	HasThumbnail        bool   `json:"has_thumbnail"`
	HasDataURL          bool   `json:"has_data_url"`
	HasThumbnailDataURL bool   `json:"has_thumbnail_data_url"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
