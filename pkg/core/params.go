package core

// VersioningState selects how a newly created document enters its version
// series.
type VersioningState string

const (
	// VersioningNone creates the single synthetic version of a
	// non-versionable document.
	VersioningNone VersioningState = "none"

	// VersioningMajor creates a major version. The default when omitted.
	VersioningMajor VersioningState = "major"

	// VersioningMinor creates a minor version.
	VersioningMinor VersioningState = "minor"

	// VersioningCheckedOut creates the document directly as a PWC.
	VersioningCheckedOut VersioningState = "checkedout"
)

// Valid reports whether s is a known versioning state.
func (s VersioningState) Valid() bool {
	switch s {
	case VersioningNone, VersioningMajor, VersioningMinor, VersioningCheckedOut:
		return true
	}
	return false
}

// UnfileMode controls what happens to non-folder children during tree
// deletion.
type UnfileMode string

const (
	// UnfileDelete deletes every object in the tree. The default.
	UnfileDelete UnfileMode = "delete"

	// UnfileDeleteSingleFiled deletes objects filed only in this tree and
	// unfiles the rest.
	UnfileDeleteSingleFiled UnfileMode = "deletesinglefiled"

	// UnfileKeep unfiles every non-folder object instead of deleting it.
	UnfileKeep UnfileMode = "unfile"
)

// Valid reports whether m is a known unfile mode.
func (m UnfileMode) Valid() bool {
	switch m {
	case UnfileDelete, UnfileDeleteSingleFiled, UnfileKeep:
		return true
	}
	return false
}

// RelationshipDirection selects which relationships to include in a
// projection, relative to the projected object.
type RelationshipDirection string

const (
	RelationshipNone   RelationshipDirection = "none"
	RelationshipSource RelationshipDirection = "source"
	RelationshipTarget RelationshipDirection = "target"
	RelationshipBoth   RelationshipDirection = "both"
)
