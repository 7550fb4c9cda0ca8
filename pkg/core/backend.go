package core

import "context"

// ACLCapability says how far the repository supports ACLs.
type ACLCapability string

const (
	// ACLNone means no enforcement model at all: every action is permitted.
	ACLNone ACLCapability = "none"

	// ACLDiscover means ACLs are readable but not writable through this
	// interface.
	ACLDiscover ACLCapability = "discover"

	// ACLManage means ACLs may be read and written.
	ACLManage ACLCapability = "manage"
)

// Capabilities declares which optional behaviors the backend supports.
type Capabilities struct {
	Unfiling             bool `yaml:"unfiling"`
	Multifiling          bool `yaml:"multifiling"`
	VersionSpecificFiling bool `yaml:"versionSpecificFiling"`
	Renditions           bool `yaml:"renditions"`
	Query                bool `yaml:"query"`
	ChangeLog            bool `yaml:"changeLog"`
	PWCUpdatable         bool `yaml:"pwcUpdatable"`
}

// RepositoryInfo describes one repository behind a backend.
type RepositoryInfo struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description,omitempty"`
	RootFolderID string `yaml:"rootFolderId"`

	ACLCapability ACLCapability `yaml:"aclCapability"`
	Capabilities  Capabilities  `yaml:"capabilities"`

	// PrincipalAnyone is the pseudo-principal granted to everyone;
	// PrincipalAnonymous identifies unauthenticated callers.
	PrincipalAnyone    string `yaml:"principalAnyone"`
	PrincipalAnonymous string `yaml:"principalAnonymous,omitempty"`

	// Permissions lists the backend-declared permission names beyond the
	// basic three.
	Permissions []string `yaml:"permissions,omitempty"`

	// PermissionMapping maps an allowable-action key to the permission
	// names that each suffice for it.
	PermissionMapping map[string][]string `yaml:"permissionMapping,omitempty"`

	// LatestChangeToken is the newest change-log token, if change logging
	// is on.
	LatestChangeToken string `yaml:"latestChangeToken,omitempty"`
}

// SupportsPermission reports whether name is usable in an ACE against this
// repository.
func (ri *RepositoryInfo) SupportsPermission(name string) bool {
	if IsBasicPermission(name) {
		return true
	}
	for _, p := range ri.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// Backend is the storage contract the connection orchestrates against. It is
// the sole owner and mutator of repository objects; the connection borrows
// references for the duration of one call.
//
// Backends return *Error values with ErrStorage for persistence failures and
// ErrNotFound for unresolved ids. All validation above that is the
// connection's job.
type Backend interface {
	TypeStore

	// RepositoryInfo returns the repository descriptor. Implementations
	// should make this cheap; the connection consults it on most calls.
	RepositoryInfo(ctx context.Context) (*RepositoryInfo, error)

	GetObject(ctx context.Context, id string) (Object, error)
	GetObjectByPath(ctx context.Context, path string) (Object, error)

	// CreateDocument persists doc, files it under folderID (empty = unfiled)
	// and stores content if non-nil. Returns the new object id.
	CreateDocument(ctx context.Context, doc *Document, folderID string, content *ContentStream) (string, error)

	// CopyDocument persists a copy of the source document with doc's
	// properties layered on top.
	CopyDocument(ctx context.Context, sourceID string, doc *Document, folderID string) (string, error)

	CreateFolder(ctx context.Context, f *Folder, parentID string) (string, error)
	CreatePolicy(ctx context.Context, p *Policy, folderID string) (string, error)
	CreateRelationship(ctx context.Context, r *Relationship) (string, error)

	// UpdateObject replaces the stored state of obj and bumps its change
	// token.
	UpdateObject(ctx context.Context, obj Object) error

	DeleteObject(ctx context.Context, id string, allVersions bool) error

	// DeleteTree removes a folder subtree depth-first and returns the ids it
	// failed to delete. With continueOnFailure false it stops at the first
	// failure.
	DeleteTree(ctx context.Context, folderID string, allVersions bool, unfile UnfileMode, continueOnFailure bool) ([]string, error)

	MoveObject(ctx context.Context, id, targetFolderID, sourceFolderID string) error

	// FileObject files an object into an additional folder without
	// removing existing filings.
	FileObject(ctx context.Context, id, folderID string) error

	UnfileObject(ctx context.Context, id, folderID string) error

	// Children lists the directly filed children of a folder.
	Children(ctx context.Context, folderID string) ([]Object, error)

	// Parents resolves the folders an object is filed in.
	Parents(ctx context.Context, id string) ([]*Folder, error)

	// Relationships lists relationships having id as source and/or target.
	Relationships(ctx context.Context, id string, direction RelationshipDirection) ([]*Relationship, error)

	AllVersions(ctx context.Context, versionSeriesID string) ([]*Document, error)

	// CheckedOut lists PWCs filed under a folder, or repository-wide when
	// folderID is empty.
	CheckedOut(ctx context.Context, folderID string) ([]*Document, error)

	Checkout(ctx context.Context, docID string, caller string) (*Document, error)
	Checkin(ctx context.Context, pwc *Document, content *ContentStream, major bool, comment string) (*Document, error)
	CancelCheckout(ctx context.Context, pwcID string) error

	GetContentStream(ctx context.Context, id string) (*ContentStream, error)
	SetContentStream(ctx context.Context, id string, content *ContentStream) error
	DeleteContentStream(ctx context.Context, id string) error

	Renditions(ctx context.Context, id string) ([]Rendition, error)

	// ChangeLog returns log entries strictly after token (empty = from the
	// beginning), at most maxItems (negative = unbounded).
	ChangeLog(ctx context.Context, token string, maxItems int) (*ChangeList, error)

	Query(ctx context.Context, q *Query) (*QueryResult, error)
}

// Watchable is an optional backend capability: a live feed of change
// events. Discovered by type assertion, never required.
type Watchable interface {
	Watch(ctx context.Context) (<-chan ChangeEvent, error)
}
