package main

import (
	"context"
	"fmt"
	gopath "path"
	"strings"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

// splitRepoPath splits "/docs/memo" into its parent path and leaf name.
func splitRepoPath(p string) (parent, name string, err error) {
	if !strings.HasPrefix(p, "/") || p == "/" {
		return "", "", fmt.Errorf("path %q must be absolute and name an object", p)
	}
	clean := gopath.Clean(p)
	return gopath.Dir(clean), gopath.Base(clean), nil
}

// resolveFolderID maps a repository path to a folder's object id.
func resolveFolderID(ctx context.Context, c *strata.Connection, path string) (string, error) {
	data, err := c.GetObjectByPath(ctx, caller, path, conn.ProjectionOptions{})
	if err != nil {
		return "", err
	}
	if _, ok := data.Object.(*core.Folder); !ok {
		return "", fmt.Errorf("%q is not a folder", path)
	}
	return data.Object.Core().ID, nil
}

// resolveObject maps a repository path to its projected object.
func resolveObject(ctx context.Context, c *strata.Connection, path string) (*conn.ObjectData, error) {
	return c.GetObjectByPath(ctx, caller, path, conn.ProjectionOptions{})
}
