package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/strata/pkg/core"
)

// snapshot is the YAML shape of a whole repository. The object union is
// flattened into one slice per variant.
type snapshot struct {
	Info   core.RepositoryInfo `yaml:"info"`
	RootID string              `yaml:"rootId"`

	Types []*core.TypeDefinition `yaml:"types,omitempty"`

	Documents     []*core.Document     `yaml:"documents,omitempty"`
	Folders       []*core.Folder       `yaml:"folders,omitempty"`
	Policies      []*core.Policy       `yaml:"policies,omitempty"`
	Relationships []*core.Relationship `yaml:"relationships,omitempty"`

	Children   map[string][]string          `yaml:"children,omitempty"`
	Series     map[string][]string          `yaml:"series,omitempty"`
	Content    map[string][]byte            `yaml:"content,omitempty"`
	Renditions map[string][]core.Rendition  `yaml:"renditions,omitempty"`
	Changes    []core.ChangeEvent           `yaml:"changes,omitempty"`
}

// SaveSnapshot serializes the whole store to a YAML file, written
// atomically so a concurrent reader never sees a torn snapshot.
func (s *Store) SaveSnapshot(path string) error {
	s.mu.RLock()

	snap := snapshot{
		Info:       s.info,
		RootID:     s.rootID,
		Children:   s.children,
		Series:     s.series,
		Content:    s.content,
		Renditions: s.renditions,
		Changes:    s.changes,
	}
	if n := len(s.changes); n > 0 {
		snap.Info.LatestChangeToken = s.changes[n-1].Token
	}
	for _, obj := range s.objects {
		switch v := obj.(type) {
		case *core.Document:
			snap.Documents = append(snap.Documents, v)
		case *core.Folder:
			snap.Folders = append(snap.Folders, v)
		case *core.Policy:
			snap.Policies = append(snap.Policies, v)
		case *core.Relationship:
			snap.Relationships = append(snap.Relationships, v)
		}
	}

	descendants, err := s.Registry.GetTypeDescendants(context.Background(), "", -1)
	if err == nil {
		for _, def := range descendants {
			if def.ID != string(def.Base) {
				snap.Types = append(snap.Types, def)
			}
		}
	}

	data, marshalErr := yaml.Marshal(&snap)
	s.mu.RUnlock()
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", marshalErr)
	}
	return writeFileAtomic(path, data, 0644)
}

// LoadSnapshot rebuilds a store from a snapshot file. The cfg logger and
// clock apply; everything else comes from the snapshot.
func LoadSnapshot(path string, cfg Config) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	s := New(Config{
		RepositoryID: snap.Info.ID,
		Logger:       cfg.Logger,
		Clock:        cfg.Clock,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.info = snap.Info
	s.rootID = snap.RootID
	s.objects = make(map[string]core.Object)
	for _, d := range snap.Documents {
		s.objects[d.ID] = d
	}
	for _, f := range snap.Folders {
		s.objects[f.ID] = f
	}
	for _, p := range snap.Policies {
		s.objects[p.ID] = p
	}
	for _, r := range snap.Relationships {
		s.objects[r.ID] = r
	}
	s.children = orEmpty(snap.Children)
	s.series = orEmpty(snap.Series)
	s.content = snap.Content
	if s.content == nil {
		s.content = make(map[string][]byte)
	}
	s.renditions = snap.Renditions
	if s.renditions == nil {
		s.renditions = make(map[string][]core.Rendition)
	}
	s.changes = snap.Changes

	s.countMu.Lock()
	s.typeCount = make(map[string]int)
	s.countMu.Unlock()
	ctx := context.Background()
	for _, def := range snap.Types {
		if err := s.Registry.AddType(ctx, def); err != nil {
			return nil, fmt.Errorf("failed to restore type %s: %w", def.ID, err)
		}
	}
	for _, obj := range s.objects {
		s.bumpTypeCount(obj.Core().TypeID, 1)
	}
	return s, nil
}

func orEmpty(m map[string][]string) map[string][]string {
	if m == nil {
		return make(map[string][]string)
	}
	return m
}

// writeFileAtomic writes via a temp file plus rename in the target
// directory.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	tmpFile, err := os.CreateTemp(dir, "strata-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
