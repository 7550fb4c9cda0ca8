package core

import "time"

// Entry carries the state shared by every repository object. The four
// variants below embed it; there is no fifth.
type Entry struct {
	ID          string     `yaml:"id"`
	TypeID      string     `yaml:"typeId"`
	Name        string     `yaml:"name"`
	Properties  Properties `yaml:"properties,omitempty"`
	ChangeToken string     `yaml:"changeToken"`
	ACL         ACL        `yaml:"acl,omitempty"`
	Policies    []string   `yaml:"policies,omitempty"`

	// Parents holds the ids of the folders this object is filed in. Empty
	// for unfiled objects and for the root folder.
	Parents []string `yaml:"parents,omitempty"`

	CreatedBy  string    `yaml:"createdBy,omitempty"`
	ModifiedBy string    `yaml:"modifiedBy,omitempty"`
	CreatedAt  time.Time `yaml:"createdAt,omitempty"`
	ModifiedAt time.Time `yaml:"modifiedAt,omitempty"`
}

// Object is the closed union over the four base-type variants. Dispatch with
// a type switch; Core gives uniform access to the shared state.
type Object interface {
	// BaseType tags the variant.
	BaseType() BaseType

	// Core returns the shared object state.
	Core() *Entry
}

// Document is an Object in the document family. Documents live in version
// series; even a non-versionable document is the sole member of one.
type Document struct {
	Entry `yaml:",inline"`

	VersionSeriesID string `yaml:"versionSeriesId"`
	VersionLabel    string `yaml:"versionLabel,omitempty"`
	IsLatestVersion bool   `yaml:"isLatestVersion"`
	IsMajorVersion  bool   `yaml:"isMajorVersion"`
	CheckinComment  string `yaml:"checkinComment,omitempty"`

	// PWC marks the private working copy: the single mutable checked-out
	// head of the series.
	PWC          bool   `yaml:"pwc,omitempty"`
	CheckedOutBy string `yaml:"checkedOutBy,omitempty"`

	// Content metadata. The bytes themselves live behind the backend.
	HasContent      bool   `yaml:"hasContent,omitempty"`
	ContentMimeType string `yaml:"contentMimeType,omitempty"`
	ContentFileName string `yaml:"contentFileName,omitempty"`
	ContentLength   int64  `yaml:"contentLength,omitempty"`
}

func (d *Document) BaseType() BaseType { return BaseDocument }
func (d *Document) Core() *Entry       { return &d.Entry }

// Folder is an Object in the folder family. Every folder except the root has
// exactly one parent.
type Folder struct {
	Entry `yaml:",inline"`

	// ParentID is empty only for the root folder.
	ParentID string `yaml:"parentId,omitempty"`

	// Path is the absolute slash-separated path from the root.
	Path string `yaml:"path"`

	// AllowedChildTypes restricts which type ids may be filed here.
	// Empty means any fileable type.
	AllowedChildTypes []string `yaml:"allowedChildTypes,omitempty"`
}

func (f *Folder) BaseType() BaseType { return BaseFolder }
func (f *Folder) Core() *Entry       { return &f.Entry }

// IsRoot reports whether f is the distinguished root folder.
func (f *Folder) IsRoot() bool { return f.ParentID == "" }

// AllowsChildType reports whether a type id may be filed under this folder.
func (f *Folder) AllowsChildType(typeID string) bool {
	if len(f.AllowedChildTypes) == 0 {
		return true
	}
	for _, t := range f.AllowedChildTypes {
		if t == typeID {
			return true
		}
	}
	return false
}

// Policy is an Object in the policy family; it can be applied to
// policy-controllable objects.
type Policy struct {
	Entry `yaml:",inline"`

	PolicyText string `yaml:"policyText,omitempty"`
}

func (p *Policy) BaseType() BaseType { return BasePolicy }
func (p *Policy) Core() *Entry       { return &p.Entry }

// Relationship is an Object in the relationship family, tying a source
// object to a target object. It is never fileable.
type Relationship struct {
	Entry `yaml:",inline"`

	SourceID string `yaml:"sourceId"`
	TargetID string `yaml:"targetId"`
}

func (r *Relationship) BaseType() BaseType { return BaseRelationship }
func (r *Relationship) Core() *Entry       { return &r.Entry }

var (
	_ Object = (*Document)(nil)
	_ Object = (*Folder)(nil)
	_ Object = (*Policy)(nil)
	_ Object = (*Relationship)(nil)
)
