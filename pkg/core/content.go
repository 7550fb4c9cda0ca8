package core

import "io"

// ContentStream is a content payload in transit. Length is -1 when unknown
// ahead of materialization.
type ContentStream struct {
	FileName string
	MimeType string
	Length   int64
	Reader   io.Reader
}

// Rendition is an alternate representation of an object's content, such as a
// thumbnail.
type Rendition struct {
	StreamID string `yaml:"streamId"`
	Kind     string `yaml:"kind"`
	MimeType string `yaml:"mimeType"`
	Length   int64  `yaml:"length,omitempty"`
	Title    string `yaml:"title,omitempty"`
}
