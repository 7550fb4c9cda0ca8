package memory

import (
	"bytes"
	"context"

	"github.com/aretw0/strata/pkg/core"
)

// GetContentStream implements core.Backend.
func (s *Store) GetContentStream(ctx context.Context, id string) (*core.ContentStream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.get(id)
	if err != nil {
		return nil, err
	}
	doc, ok := obj.(*core.Document)
	if !ok {
		return nil, core.Errorf(core.ErrInvalidArgument, "object %q is not a document", id)
	}
	data, ok := s.content[id]
	if !ok || !doc.HasContent {
		return nil, core.Errorf(core.ErrNotFound, "document %q has no content stream", id)
	}
	return &core.ContentStream{
		FileName: doc.ContentFileName,
		MimeType: doc.ContentMimeType,
		Length:   int64(len(data)),
		Reader:   bytes.NewReader(append([]byte(nil), data...)),
	}, nil
}

// SetContentStream implements core.Backend: replaces the stream and bumps
// the change token.
func (s *Store) SetContentStream(ctx context.Context, id string, content *core.ContentStream) error {
	data, err := readContent(content)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.get(id)
	if err != nil {
		return err
	}
	doc, ok := obj.(*core.Document)
	if !ok {
		return core.Errorf(core.ErrInvalidArgument, "object %q is not a document", id)
	}

	s.content[id] = data
	doc.HasContent = true
	doc.ContentMimeType = content.MimeType
	doc.ContentFileName = content.FileName
	doc.ContentLength = int64(len(data))
	doc.ModifiedAt = s.clock()
	doc.ChangeToken = s.newToken()
	s.record(core.ChangeUpdated, id, nil)
	return nil
}

// DeleteContentStream implements core.Backend.
func (s *Store) DeleteContentStream(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.get(id)
	if err != nil {
		return err
	}
	doc, ok := obj.(*core.Document)
	if !ok {
		return core.Errorf(core.ErrInvalidArgument, "object %q is not a document", id)
	}
	if !doc.HasContent {
		return core.Errorf(core.ErrNotFound, "document %q has no content stream", id)
	}

	delete(s.content, id)
	doc.HasContent = false
	doc.ContentMimeType = ""
	doc.ContentFileName = ""
	doc.ContentLength = 0
	doc.ModifiedAt = s.clock()
	doc.ChangeToken = s.newToken()
	s.record(core.ChangeUpdated, id, nil)
	return nil
}

// Renditions implements core.Backend.
func (s *Store) Renditions(ctx context.Context, id string) ([]core.Rendition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.get(id); err != nil {
		return nil, err
	}
	return append([]core.Rendition(nil), s.renditions[id]...), nil
}

// AddRendition registers an alternate representation for an object. Not
// part of core.Backend; rendition production belongs to whatever owns the
// binaries, this is the seam it feeds.
func (s *Store) AddRendition(id string, r core.Rendition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(id); err != nil {
		return err
	}
	s.renditions[id] = append(s.renditions[id], r)
	return nil
}
