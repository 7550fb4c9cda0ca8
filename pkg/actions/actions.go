// Package actions computes the allowable-actions matrix: which operations a
// caller may invoke on an object, given its type, its ACL and the
// repository's permission model.
package actions

import (
	"github.com/aretw0/strata/pkg/core"
)

// Action names one entry of the allowable-actions matrix. The names are the
// wire-visible action keys.
type Action string

const (
	DeleteObject           Action = "canDeleteObject"
	UpdateProperties       Action = "canUpdateProperties"
	GetProperties          Action = "canGetProperties"
	GetObjectRelationships Action = "canGetObjectRelationships"
	GetObjectParents       Action = "canGetObjectParents"
	GetFolderParent        Action = "canGetFolderParent"
	GetFolderTree          Action = "canGetFolderTree"
	GetDescendants         Action = "canGetDescendants"
	MoveObject             Action = "canMoveObject"
	DeleteContentStream    Action = "canDeleteContentStream"
	CheckOut               Action = "canCheckOut"
	CancelCheckOut         Action = "canCancelCheckOut"
	CheckIn                Action = "canCheckIn"
	SetContentStream       Action = "canSetContentStream"
	GetAllVersions         Action = "canGetAllVersions"
	AddObjectToFolder      Action = "canAddObjectToFolder"
	RemoveObjectFromFolder Action = "canRemoveObjectFromFolder"
	GetContentStream       Action = "canGetContentStream"
	ApplyPolicy            Action = "canApplyPolicy"
	GetAppliedPolicies     Action = "canGetAppliedPolicies"
	RemovePolicy           Action = "canRemovePolicy"
	GetChildren            Action = "canGetChildren"
	CreateDocument         Action = "canCreateDocument"
	CreateFolder           Action = "canCreateFolder"
	CreateRelationship     Action = "canCreateRelationship"
	DeleteTree             Action = "canDeleteTree"
	GetRenditions          Action = "canGetRenditions"
	GetACL                 Action = "canGetACL"
	ApplyACL               Action = "canApplyACL"
)

// All lists every action in a stable order.
var All = []Action{
	DeleteObject, UpdateProperties, GetProperties, GetObjectRelationships,
	GetObjectParents, GetFolderParent, GetFolderTree, GetDescendants,
	MoveObject, DeleteContentStream, CheckOut, CancelCheckOut, CheckIn,
	SetContentStream, GetAllVersions, AddObjectToFolder,
	RemoveObjectFromFolder, GetContentStream, ApplyPolicy,
	GetAppliedPolicies, RemovePolicy, GetChildren, CreateDocument,
	CreateFolder, CreateRelationship, DeleteTree, GetRenditions, GetACL,
	ApplyACL,
}

// Set is the computed action-permission matrix.
type Set map[Action]bool

// DefaultPermissionMapping maps each action to the permission names that are
// all required for it, used when the repository info declares no mapping of
// its own. cmis:all always suffices regardless of the mapping.
func DefaultPermissionMapping() map[string][]string {
	m := make(map[string][]string, len(All))
	for _, a := range All {
		switch a {
		case GetProperties, GetObjectRelationships, GetObjectParents,
			GetFolderParent, GetFolderTree, GetDescendants, GetAllVersions,
			GetContentStream, GetAppliedPolicies, GetChildren, GetRenditions,
			GetACL:
			m[string(a)] = []string{core.PermissionRead}
		case DeleteObject, DeleteTree, ApplyACL:
			m[string(a)] = []string{core.PermissionAll}
		default:
			m[string(a)] = []string{core.PermissionWrite}
		}
	}
	return m
}

// Calculate computes the matrix for one object and caller. Pure function of
// its inputs: no ambient identity, no backend round trips.
//
// With an ACL capability of "none" the repository has no enforcement model
// and every structurally possible action is granted.
func Calculate(obj core.Object, typ *core.TypeDefinition, caller string, info *core.RepositoryInfo) Set {
	set := make(Set, len(All))
	unenforced := info.ACLCapability == core.ACLNone
	for _, a := range All {
		if !structurallyPossible(a, obj, typ, info) {
			set[a] = false
			continue
		}
		if unenforced {
			set[a] = true
			continue
		}
		set[a] = permitted(a, obj.Core().ACL, caller, info)
	}
	return set
}

// permitted runs the ACL check against one entry: the anyone principal's
// if present, otherwise the caller's. An object without any ACL entries is open by
// default. A single matching entry decides; grants are not unioned across
// entries.
func permitted(a Action, acl core.ACL, caller string, info *core.RepositoryInfo) bool {
	if len(acl) == 0 {
		return true
	}

	entry, ok := acl.Entry(info.PrincipalAnyone)
	if !ok {
		entry, ok = acl.Entry(caller)
	}
	if !ok {
		return false
	}
	if entry.Has(core.PermissionAll) {
		return true
	}

	mapping := info.PermissionMapping
	if len(mapping) == 0 {
		mapping = DefaultPermissionMapping()
	}
	required, ok := mapping[string(a)]
	if !ok {
		return false
	}
	for _, p := range required {
		if !entry.Has(p) {
			return false
		}
	}
	return true
}

// structurallyPossible is the per-action precondition on the object's shape:
// base type, type flags and position in the hierarchy.
func structurallyPossible(a Action, obj core.Object, typ *core.TypeDefinition, info *core.RepositoryInfo) bool {
	doc, isDoc := obj.(*core.Document)
	folder, isFolder := obj.(*core.Folder)
	_, isRel := obj.(*core.Relationship)
	_, isPolicy := obj.(*core.Policy)
	isRoot := isFolder && folder.IsRoot()

	switch a {
	case GetProperties, GetObjectRelationships, GetAppliedPolicies, GetACL:
		return true
	case GetObjectParents:
		return !isRel && !isRoot
	case GetFolderParent:
		return isFolder && !isRoot
	case GetFolderTree, GetDescendants, GetChildren, CreateDocument,
		CreateFolder, DeleteTree:
		return isFolder
	case DeleteObject, UpdateProperties:
		return !isRoot
	case MoveObject:
		return !isRoot && !isRel && !isPolicy
	case CreateRelationship:
		return !isRel
	case CheckOut:
		return isDoc && typ.Versionable && !doc.PWC
	case CancelCheckOut, CheckIn:
		return isDoc && typ.Versionable && doc.PWC
	case GetAllVersions:
		return isDoc
	case GetContentStream:
		return isDoc && doc.HasContent
	case SetContentStream:
		return isDoc && typ.ContentStream != core.ContentNotAllowed
	case DeleteContentStream:
		return isDoc && doc.HasContent && typ.ContentStream != core.ContentRequired
	case AddObjectToFolder, RemoveObjectFromFolder:
		return info.Capabilities.Multifiling && !isFolder && !isRel
	case GetRenditions:
		return info.Capabilities.Renditions && isDoc
	case ApplyPolicy, RemovePolicy:
		return typ.ControllablePolicy
	case ApplyACL:
		return typ.ControllableACL && info.ACLCapability == core.ACLManage
	}
	return false
}
