package core

// Basic permissions fixed by the protocol. Backends may declare additional
// permission names in their repository info.
const (
	PermissionRead  = "cmis:read"
	PermissionWrite = "cmis:write"
	PermissionAll   = "cmis:all"
)

// IsBasicPermission reports whether name is one of the fixed permissions.
func IsBasicPermission(name string) bool {
	return name == PermissionRead || name == PermissionWrite || name == PermissionAll
}

// ACLPropagation controls how an applied ACL spreads to descendants.
type ACLPropagation string

const (
	PropagationRepository ACLPropagation = "repositorydetermined"
	PropagationObjectOnly ACLPropagation = "objectonly"
	PropagationPropagate  ACLPropagation = "propagate"
)

// ACE grants a set of permission names to one principal.
type ACE struct {
	Principal   string   `yaml:"principal"`
	Permissions []string `yaml:"permissions"`
}

// Has reports whether the entry grants the given permission name.
func (a ACE) Has(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ACL is an ordered list of entries. Order is preserved across merges so the
// first matching entry per principal stays stable.
type ACL []ACE

// Entry returns the first entry for the given principal, or false.
func (acl ACL) Entry(principal string) (ACE, bool) {
	for _, e := range acl {
		if e.Principal == principal {
			return e, true
		}
	}
	return ACE{}, false
}

// Clone returns a deep copy of the ACL.
func (acl ACL) Clone() ACL {
	out := make(ACL, 0, len(acl))
	for _, e := range acl {
		perms := make([]string, len(e.Permissions))
		copy(perms, e.Permissions)
		out = append(out, ACE{Principal: e.Principal, Permissions: perms})
	}
	return out
}

// MergeACL applies add and remove deltas to an existing ACL. The merge is
// additive then subtractive: a principal+permission pair present in both
// add and remove ends up removed. Entries left without permissions are
// dropped.
func MergeACL(existing, add, remove ACL) ACL {
	merged := existing.Clone()

	for _, a := range add {
		idx := -1
		for i, e := range merged {
			if e.Principal == a.Principal {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, ACE{Principal: a.Principal, Permissions: append([]string(nil), a.Permissions...)})
			continue
		}
		for _, p := range a.Permissions {
			if !merged[idx].Has(p) {
				merged[idx].Permissions = append(merged[idx].Permissions, p)
			}
		}
	}

	for _, r := range remove {
		for i := range merged {
			if merged[i].Principal != r.Principal {
				continue
			}
			kept := merged[i].Permissions[:0]
			for _, p := range merged[i].Permissions {
				if !r.Has(p) {
					kept = append(kept, p)
				}
			}
			merged[i].Permissions = kept
		}
	}

	out := merged[:0]
	for _, e := range merged {
		if len(e.Permissions) > 0 {
			out = append(out, e)
		}
	}
	return out
}
