package conn

import (
	"context"

	"github.com/aretw0/strata/pkg/core"
)

// DeleteObject removes a single object. Folders must be empty; the root
// folder is never deletable. allVersions defaults to true for documents.
func (c *Connection) DeleteObject(ctx context.Context, caller string, objectID string, allVersions *bool) error {
	if _, err := c.begin(ctx, caller); err != nil {
		return err
	}
	all := true
	if allVersions != nil {
		all = *allVersions
	}
	return c.backend.DeleteObject(ctx, objectID, all)
}

// DeleteTreeRequest configures a subtree deletion. AllVersions defaults to
// true, ContinueOnFailure to false and UnfileMode to delete.
type DeleteTreeRequest struct {
	FolderID          string
	AllVersions       *bool
	UnfileMode        core.UnfileMode
	ContinueOnFailure bool
}

// DeleteTree removes a folder and everything under it, returning the ids
// that could not be deleted. Unfile modes other than delete need the
// unfiling capability.
func (c *Connection) DeleteTree(ctx context.Context, caller string, req DeleteTreeRequest) ([]string, error) {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return nil, err
	}

	mode := req.UnfileMode
	if mode == "" {
		mode = core.UnfileDelete
	}
	if !mode.Valid() {
		return nil, core.Errorf(core.ErrInvalidArgument, "unknown unfile mode %q", mode)
	}
	if mode != core.UnfileDelete && !info.Capabilities.Unfiling {
		return nil, core.Errorf(core.ErrInvalidArgument, "unfile mode %q needs the unfiling capability", mode)
	}
	folder, err := c.resolveFolder(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	if folder.IsRoot() {
		return nil, core.Errorf(core.ErrConstraint, "the root folder cannot be deleted")
	}

	all := true
	if req.AllVersions != nil {
		all = *req.AllVersions
	}
	failed, err := c.backend.DeleteTree(ctx, req.FolderID, all, mode, req.ContinueOnFailure)
	if len(failed) > 0 {
		c.warn("delete tree left objects behind", "folder", req.FolderID, "failed", len(failed))
	}
	return failed, err
}

// MoveObject refiles an object from one folder to another. The source
// folder is mandatory and must actually contain the object.
func (c *Connection) MoveObject(ctx context.Context, caller string, objectID, targetFolderID, sourceFolderID string) error {
	if _, err := c.begin(ctx, caller); err != nil {
		return err
	}
	if sourceFolderID == "" {
		return core.Errorf(core.ErrInvalidArgument, "source folder must be provided")
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return err
	}
	target, err := c.resolveFolder(ctx, targetFolderID)
	if err != nil {
		return err
	}
	if _, err := c.resolveFolder(ctx, sourceFolderID); err != nil {
		return err
	}
	if !target.AllowsChildType(obj.Core().TypeID) {
		return core.Errorf(core.ErrConstraint, "folder %q does not allow children of type %q", target.ID, obj.Core().TypeID)
	}
	return c.backend.MoveObject(ctx, objectID, targetFolderID, sourceFolderID)
}

// AddObjectToFolder files an object into an additional folder. Needs the
// multifiling capability.
func (c *Connection) AddObjectToFolder(ctx context.Context, caller string, objectID, folderID string) error {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return err
	}
	if !info.Capabilities.Multifiling {
		return core.Errorf(core.ErrNotSupported, "repository does not support multifiling")
	}
	if folderID == "" {
		return core.Errorf(core.ErrInvalidArgument, "folder must be provided")
	}

	obj, err := c.backend.GetObject(ctx, objectID)
	if err != nil {
		return err
	}
	if _, ok := obj.(*core.Folder); ok {
		return core.Errorf(core.ErrInvalidArgument, "folders cannot be multifiled")
	}
	typ, err := c.backend.GetTypeDefinition(ctx, obj.Core().TypeID)
	if err != nil {
		return err
	}
	if _, err := c.checkParent(ctx, info, typ, folderID); err != nil {
		return err
	}
	return c.backend.FileObject(ctx, objectID, folderID)
}

// RemoveObjectFromFolder unfiles an object from one folder, or from all
// its folders when folderID is empty. Needs the unfiling capability.
func (c *Connection) RemoveObjectFromFolder(ctx context.Context, caller string, objectID, folderID string) error {
	info, err := c.begin(ctx, caller)
	if err != nil {
		return err
	}
	if !info.Capabilities.Unfiling {
		return core.Errorf(core.ErrNotSupported, "repository does not support unfiling")
	}
	return c.backend.UnfileObject(ctx, objectID, folderID)
}
