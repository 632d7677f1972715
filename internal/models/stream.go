package models

// StreamRecord is one raw candidate result returned by an indexing provider.
// Name and Title are free-text and encode quality/source/codec information
// in no fixed format; classification happens downstream.
type StreamRecord struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	InfoHash string `json:"infoHash,omitempty"`
	URL      string `json:"url,omitempty"`

	BehaviorHints struct {
		Filename  string `json:"filename,omitempty"`
		VideoSize int64  `json:"videoSize,omitempty"`
	} `json:"behaviorHints,omitempty"`
}

// Text returns the combined free-text fields used for classification.
func (s StreamRecord) Text() string {
	return s.Name + " " + s.Title
}
