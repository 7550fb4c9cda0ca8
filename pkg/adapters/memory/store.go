// Package memory is the reference core.Backend: a mutex-guarded in-memory
// object store with version series, a change log and a structured query
// scanner. It is the adapter the connection is tested against and the store
// behind the CLI.
package memory

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typesys"
)

// Config holds the knobs of an in-memory repository.
type Config struct {
	RepositoryID string
	Name         string
	Description  string

	// ACLCapability defaults to manage.
	ACLCapability core.ACLCapability

	// Capabilities defaults to everything enabled (see defaultCapabilities).
	Capabilities *core.Capabilities

	PrincipalAnyone    string
	PrincipalAnonymous string

	// Permissions lists backend-declared permission names beyond the basic
	// three.
	Permissions []string

	Logger *slog.Logger

	// Clock overrides time.Now, for deterministic tests.
	Clock func() time.Time
}

func defaultCapabilities() core.Capabilities {
	return core.Capabilities{
		Unfiling:     true,
		Multifiling:  true,
		Renditions:   true,
		Query:        true,
		ChangeLog:    true,
		PWCUpdatable: true,
	}
}

// Store implements core.Backend. All exported methods are safe for
// concurrent use.
type Store struct {
	*typesys.Registry

	mu      sync.RWMutex
	info    core.RepositoryInfo
	objects map[string]core.Object
	// children maps a folder id to its directly filed child ids, in
	// insertion order.
	children map[string][]string
	// series maps a version series id to its member ids, oldest first.
	series     map[string][]string
	content    map[string][]byte
	renditions map[string][]core.Rendition
	changes    []core.ChangeEvent

	// typeCount is guarded by countMu, not mu, so the type registry can
	// consult it without lock-order coupling to the object store.
	countMu   sync.Mutex
	typeCount map[string]int

	watchMu  sync.Mutex
	watchers []chan core.ChangeEvent

	entropy *ulid.MonotonicEntropy
	clock   func() time.Time
	logger  *slog.Logger
	rootID  string
}

// New builds a store with a fresh root folder.
func New(cfg Config) *Store {
	if cfg.RepositoryID == "" {
		cfg.RepositoryID = uuid.NewString()
	}
	if cfg.ACLCapability == "" {
		cfg.ACLCapability = core.ACLManage
	}
	if cfg.PrincipalAnyone == "" {
		cfg.PrincipalAnyone = "cmis:anyone"
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	caps := defaultCapabilities()
	if cfg.Capabilities != nil {
		caps = *cfg.Capabilities
	}

	s := &Store{
		objects:    make(map[string]core.Object),
		children:   make(map[string][]string),
		series:     make(map[string][]string),
		content:    make(map[string][]byte),
		renditions: make(map[string][]core.Rendition),
		typeCount:  make(map[string]int),
		entropy:    ulid.Monotonic(rand.New(rand.NewSource(cfg.Clock().UnixNano())), 0),
		clock:      cfg.Clock,
		logger:     cfg.Logger,
	}
	s.Registry = typesys.NewRegistry(s.typeInUse)

	now := s.clock()
	root := &core.Folder{
		Entry: core.Entry{
			ID:          uuid.NewString(),
			TypeID:      string(core.BaseFolder),
			Name:        "",
			Properties:  core.Properties{},
			ChangeToken: s.newToken(),
			CreatedAt:   now,
			ModifiedAt:  now,
		},
		Path: "/",
	}
	s.rootID = root.ID
	s.objects[root.ID] = root
	s.bumpTypeCount(root.TypeID, 1)

	s.info = core.RepositoryInfo{
		ID:                 cfg.RepositoryID,
		Name:               cfg.Name,
		Description:        cfg.Description,
		RootFolderID:       root.ID,
		ACLCapability:      cfg.ACLCapability,
		Capabilities:       caps,
		PrincipalAnyone:    cfg.PrincipalAnyone,
		PrincipalAnonymous: cfg.PrincipalAnonymous,
		Permissions:        cfg.Permissions,
	}
	return s
}

// RepositoryInfo implements core.Backend.
func (s *Store) RepositoryInfo(ctx context.Context) (*core.RepositoryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := s.info
	if n := len(s.changes); n > 0 {
		info.LatestChangeToken = s.changes[n-1].Token
	}
	return &info, nil
}

// RootID returns the root folder id.
func (s *Store) RootID() string {
	return s.rootID
}

// newToken issues a monotonically ordered opaque token. Used both as change
// token and as change-log cursor.
func (s *Store) newToken() string {
	return ulid.MustNew(ulid.Timestamp(s.clock()), s.entropy).String()
}

func (s *Store) typeInUse(typeID string) bool {
	s.countMu.Lock()
	defer s.countMu.Unlock()
	return s.typeCount[typeID] > 0
}

func (s *Store) bumpTypeCount(typeID string, delta int) {
	s.countMu.Lock()
	defer s.countMu.Unlock()
	s.typeCount[typeID] += delta
	if s.typeCount[typeID] <= 0 {
		delete(s.typeCount, typeID)
	}
}

// record appends a change-log entry and fans it out to watchers. Callers
// hold s.mu.
func (s *Store) record(kind core.ChangeKind, objectID string, props core.Properties) {
	ev := core.ChangeEvent{
		Token:      s.newToken(),
		ObjectID:   objectID,
		Kind:       kind,
		Time:       s.clock(),
		Properties: props,
	}
	s.changes = append(s.changes, ev)

	s.watchMu.Lock()
	for _, ch := range s.watchers {
		select {
		case ch <- ev:
		default:
			// Slow watcher, drop rather than stall the mutation.
		}
	}
	s.watchMu.Unlock()

	if s.logger != nil {
		s.logger.Debug("change recorded", "kind", ev.Kind, "object", ev.ObjectID, "token", ev.Token)
	}
}

// get resolves an id without copying. Callers hold s.mu.
func (s *Store) get(id string) (core.Object, error) {
	obj, ok := s.objects[id]
	if !ok {
		return nil, core.Errorf(core.ErrNotFound, "object %q does not exist", id)
	}
	return obj, nil
}

var _ core.Backend = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
