// Package strata is the Composition Root for the strata content repository.
//
// It connects the repository contracts (pkg/core) with the connection
// orchestrator (pkg/conn) and the storage adapters (pkg/adapters) using the
// Hexagonal Architecture pattern.
//
// Philosophy:
//
// Strata is an embeddable content repository for toolmakers. It treats a
// collection of typed, versioned, access-controlled objects as a
// transactional store behind one narrow contract. While the default
// implementation is an in-memory store with YAML snapshots, strata's core
// is agnostic, allowing for other backends (SQL, S3, remote services).
//
// Features:
//
//   - **Hexagonal Architecture**: The connection layer is isolated from
//     persistence details behind core.Backend.
//   - **Typed Objects**: Documents, folders, policies and relationships
//     with per-type property definitions and validation.
//   - **Versioning**: Version series with checkout/checkin and private
//     working copies.
//   - **Access Control**: Additive-then-subtractive ACL deltas and a
//     per-caller allowable-actions matrix.
//   - **Change Log**: A resumable, token-ordered feed of every mutation.
//   - **Typed Retrieval**: Generic wrapper (`NewTypedRepository[T]`) for
//     type-safe document access.
//
// Usage:
//
//	// Assemble a connection with functional options
//	c, err := strata.New(
//		strata.WithName("notes"),
//		strata.WithSnapshot("strata.yaml"),
//	)
//
//	// Create a document
//	props := make(core.Properties)
//	props.SetID(core.PropObjectTypeID, "cmis:document")
//	props.SetString(core.PropName, "hello")
//	id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
//		FolderID:   rootID,
//		Properties: props,
//	})
package strata
