package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/strata/pkg/core"
)

// AllVersions implements core.Backend, oldest version first.
func (s *Store) AllVersions(ctx context.Context, versionSeriesID string) ([]*core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.series[versionSeriesID]
	if !ok {
		return nil, core.Errorf(core.ErrNotFound, "version series %q does not exist", versionSeriesID)
	}
	out := make([]*core.Document, 0, len(ids))
	for _, id := range ids {
		if obj, err := s.get(id); err == nil {
			if d, ok := obj.(*core.Document); ok {
				out = append(out, cloneDocument(d))
			}
		}
	}
	return out, nil
}

// CheckedOut implements core.Backend: the PWCs filed under folderID, or all
// of them when folderID is empty.
func (s *Store) CheckedOut(ctx context.Context, folderID string) ([]*core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if folderID != "" {
		if _, err := s.folder(folderID); err != nil {
			return nil, err
		}
	}

	var out []*core.Document
	for _, obj := range s.objects {
		d, ok := obj.(*core.Document)
		if !ok || !d.PWC {
			continue
		}
		if folderID != "" && !s.seriesFiledIn(d.VersionSeriesID, folderID) {
			continue
		}
		out = append(out, cloneDocument(d))
	}
	return out, nil
}

// seriesFiledIn reports whether any member of a version series is filed
// under folderID. A PWC itself is unfiled, so folder-scoped checked-out
// listings resolve filing through the series. Callers hold s.mu.
func (s *Store) seriesFiledIn(seriesID, folderID string) bool {
	for _, id := range s.series[seriesID] {
		if obj, err := s.get(id); err == nil {
			if d, ok := obj.(*core.Document); ok && contains(d.Parents, folderID) {
				return true
			}
		}
	}
	return false
}

// Checkout implements core.Backend: materializes the private working copy
// of a series. At most one PWC per series may exist, and only the latest
// version may be checked out.
func (s *Store) Checkout(ctx context.Context, docID string, caller string) (*core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.get(docID)
	if err != nil {
		return nil, err
	}
	doc, ok := obj.(*core.Document)
	if !ok {
		return nil, core.Errorf(core.ErrInvalidArgument, "object %q is not a document", docID)
	}

	for _, memberID := range s.series[doc.VersionSeriesID] {
		if member, err := s.get(memberID); err == nil {
			if d, ok := member.(*core.Document); ok && d.PWC {
				return nil, core.Errorf(core.ErrVersioning, "version series %q is already checked out", doc.VersionSeriesID)
			}
		}
	}
	if !doc.IsLatestVersion {
		return nil, core.Errorf(core.ErrVersioning, "only the latest version of series %q may be checked out", doc.VersionSeriesID)
	}

	pwc := cloneDocument(doc)
	pwc.ID = uuid.NewString()
	pwc.PWC = true
	pwc.CheckedOutBy = caller
	pwc.IsLatestVersion = false
	pwc.VersionLabel = ""
	pwc.CheckinComment = ""
	now := s.clock()
	pwc.CreatedAt, pwc.ModifiedAt = now, now
	pwc.ChangeToken = s.newToken()
	pwc.Parents = nil

	if data, ok := s.content[doc.ID]; ok {
		s.content[pwc.ID] = append([]byte(nil), data...)
	}

	s.objects[pwc.ID] = pwc
	s.series[doc.VersionSeriesID] = append(s.series[doc.VersionSeriesID], pwc.ID)
	s.bumpTypeCount(pwc.TypeID, 1)
	s.record(core.ChangeCreated, pwc.ID, nil)
	return cloneDocument(pwc), nil
}

// Checkin implements core.Backend: the PWC becomes the new latest version.
func (s *Store) Checkin(ctx context.Context, pwc *core.Document, content *core.ContentStream, major bool, comment string) (*core.Document, error) {
	data, err := readContent(content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.get(pwc.ID)
	if err != nil {
		return nil, err
	}
	stored, ok := obj.(*core.Document)
	if !ok || !stored.PWC {
		return nil, core.Errorf(core.ErrVersioning, "object %q is not a private working copy", pwc.ID)
	}

	// Layer the caller's staged state over the stored PWC.
	for id, p := range pwc.Properties {
		stored.Properties[id] = p
	}
	if pwc.Name != "" {
		stored.Name = pwc.Name
	}
	stored.ACL = pwc.ACL.Clone()
	stored.Policies = append([]string(nil), pwc.Policies...)

	// Label first: nextVersionLabel skips PWCs, so the flag must still be
	// set while the existing versions are counted.
	stored.VersionLabel = s.nextVersionLabel(stored.VersionSeriesID, major)
	stored.PWC = false
	stored.CheckedOutBy = ""
	stored.IsMajorVersion = major
	stored.CheckinComment = comment
	stored.ModifiedAt = s.clock()
	stored.ChangeToken = s.newToken()

	// Demote the previous latest version.
	for _, memberID := range s.series[stored.VersionSeriesID] {
		if memberID == stored.ID {
			continue
		}
		if member, err := s.get(memberID); err == nil {
			if d, ok := member.(*core.Document); ok {
				d.IsLatestVersion = false
			}
		}
	}
	stored.IsLatestVersion = true

	// The new version inherits the series' filing.
	if prev := s.previousVersion(stored); prev != nil {
		for _, parentID := range prev.Parents {
			if !contains(stored.Parents, parentID) {
				s.file(parentID, stored.ID)
			}
		}
	}

	if content != nil {
		s.content[stored.ID] = data
		stored.HasContent = true
		stored.ContentMimeType = content.MimeType
		stored.ContentFileName = content.FileName
		stored.ContentLength = int64(len(data))
	}

	s.record(core.ChangeUpdated, stored.ID, nil)
	return cloneDocument(stored), nil
}

// CancelCheckout implements core.Backend: discards the PWC.
func (s *Store) CancelCheckout(ctx context.Context, pwcID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.get(pwcID)
	if err != nil {
		return err
	}
	doc, ok := obj.(*core.Document)
	if !ok || !doc.PWC {
		return core.Errorf(core.ErrVersioning, "object %q is not a private working copy", pwcID)
	}
	s.drop(pwcID)
	return nil
}

// previousVersion returns the newest non-PWC member before doc, or nil.
// Callers hold s.mu.
func (s *Store) previousVersion(doc *core.Document) *core.Document {
	ids := s.series[doc.VersionSeriesID]
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == doc.ID {
			continue
		}
		if obj, err := s.get(ids[i]); err == nil {
			if d, ok := obj.(*core.Document); ok && !d.PWC {
				return d
			}
		}
	}
	return nil
}

// nextVersionLabel derives the label after the current latest: majors bump
// the whole number, minors the fraction. Callers hold s.mu.
func (s *Store) nextVersionLabel(seriesID string, major bool) string {
	majors, minors := 0, 0
	for _, id := range s.series[seriesID] {
		obj, err := s.get(id)
		if err != nil {
			continue
		}
		d, ok := obj.(*core.Document)
		if !ok || d.PWC {
			continue
		}
		if d.IsMajorVersion {
			majors++
			minors = 0
		} else {
			minors++
		}
	}
	if major {
		return fmt.Sprintf("%d.0", majors+1)
	}
	return fmt.Sprintf("%d.%d", majors, minors+1)
}
