package models

// AvailabilityStatus is the normalized verdict for one content item.
// Available implies BestQuality is at or above the minimum acceptable tier
// and Sources is non-empty.
type AvailabilityStatus struct {
	Available   bool     `json:"available"`
	StreamCount int      `json:"streamCount"`
	BestQuality string   `json:"bestQuality,omitempty"`
	Sources     []string `json:"sources,omitempty"`
	AudioCodec  string   `json:"audioCodec,omitempty"`
	VideoCodec  string   `json:"videoCodec,omitempty"`
	HasHDR      bool     `json:"hasHDR"`
}

// MediaType distinguishes movie and episodic content in batch requests.
const (
	MediaTypeMovie  = "movie"
	MediaTypeSeries = "series"
)

// ContentRef identifies one content item to resolve. ExternalID is an
// IMDb-style identifier already obtained from the metadata service.
type ContentRef struct {
	ExternalID string `json:"externalId"`
	MediaType  string `json:"mediaType"`
	Title      string `json:"title,omitempty"`
	Season     int    `json:"season,omitempty"`
	Episode    int    `json:"episode,omitempty"`
}

// AnnotatedItem is a content item augmented with its resolved verdict.
type AnnotatedItem struct {
	ContentRef
	Availability AvailabilityStatus `json:"availability"`
}
