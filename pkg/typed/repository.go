// Package typed provides a generic, type-safe view over documents of one
// repository type. A Go struct stands in for the type's custom properties;
// its json tags are the property ids.
package typed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
	"github.com/aretw0/strata/pkg/typesys"
)

// DocumentModel wraps a document with a typed view of its custom
// properties.
type DocumentModel[T any] struct {
	ID          string
	Name        string
	ChangeToken string
	Data        T        // The typed custom properties
	Saver       Saver[T] // Active Record reference interface
}

// Saver decouples the model from the repository that produced it.
type Saver[T any] interface {
	Save(ctx context.Context, doc *DocumentModel[T]) error
}

// Save persists the document using the attached saver.
func (d *DocumentModel[T]) Save(ctx context.Context) error {
	if d.Saver == nil {
		return fmt.Errorf("document is detached (missing Saver)")
	}
	return d.Saver.Save(ctx, d)
}

// Repository provides type-safe access to documents of one type through a
// connection. All calls run as the caller the repository was built with.
type Repository[T any] struct {
	conn   *conn.Connection
	caller string
	typeID string
	defs   map[string]core.PropertyDefinition
}

// NewRepository creates a type-safe wrapper for one document type.
func NewRepository[T any](c *conn.Connection, caller, typeID string) *Repository[T] {
	return &Repository[T]{conn: c, caller: caller, typeID: typeID}
}

// Create makes a new document from the typed data and files it.
func (r *Repository[T]) Create(ctx context.Context, folderID, name string, data T) (string, error) {
	props, err := r.toProperties(ctx, data)
	if err != nil {
		return "", err
	}
	props.SetID(core.PropObjectTypeID, r.typeID)
	props.SetString(core.PropName, name)
	return r.conn.CreateDocument(ctx, r.caller, conn.CreateDocumentRequest{
		FolderID:   folderID,
		Properties: props,
	})
}

// Get retrieves a document and unmarshals its properties into the typed
// model.
func (r *Repository[T]) Get(ctx context.Context, id string) (*DocumentModel[T], error) {
	obj, err := r.conn.GetObject(ctx, r.caller, id, conn.ProjectionOptions{})
	if err != nil {
		return nil, err
	}
	return r.fromData(obj)
}

// Save writes the typed data back as a property update. The model's change
// token guards against concurrent writers; it is refreshed on success.
func (r *Repository[T]) Save(ctx context.Context, doc *DocumentModel[T]) error {
	props, err := r.toProperties(ctx, doc.Data)
	if err != nil {
		return err
	}
	if doc.Name != "" {
		props.SetString(core.PropName, doc.Name)
	}
	if doc.Saver == nil {
		doc.Saver = r
	}
	if _, err := r.conn.UpdateProperties(ctx, r.caller, doc.ID, doc.ChangeToken, props); err != nil {
		return err
	}
	fresh, err := r.conn.GetObject(ctx, r.caller, doc.ID, conn.ProjectionOptions{})
	if err != nil {
		return err
	}
	doc.ChangeToken = fresh.Object.Core().ChangeToken
	return nil
}

// List returns all documents of the wrapped type.
func (r *Repository[T]) List(ctx context.Context) ([]*DocumentModel[T], error) {
	hits, err := r.conn.Query(ctx, r.caller, &core.Query{TypeID: r.typeID, IncludeSubtypes: true}, conn.ProjectionOptions{}, conn.Unbounded)
	if err != nil {
		return nil, err
	}
	result := make([]*DocumentModel[T], 0, len(hits.Objects))
	for _, data := range hits.Objects {
		model, err := r.fromData(data)
		if err != nil {
			return nil, fmt.Errorf("failed to process document %s: %w", data.Object.Core().ID, err)
		}
		result = append(result, model)
	}
	return result, nil
}

// Delete removes a document by id, all versions included.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.conn.DeleteObject(ctx, r.caller, id, nil)
}

// toProperties converts typed data into a property delta, coercing values
// to the shapes the type's property definitions expect.
func (r *Repository[T]) toProperties(ctx context.Context, data T) (core.Properties, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to map: %w", err)
	}

	defs, err := r.definitions(ctx)
	if err != nil {
		return nil, err
	}

	props := make(core.Properties, len(fields))
	for id, v := range fields {
		def, known := defs[id]
		if known {
			v = coerce(v, def.Type)
		}
		var propType core.PropertyType
		if known {
			propType = def.Type
		} else {
			propType = core.PropertyString
		}
		props[id] = core.Property{ID: id, Type: propType, Values: []any{v}}
	}
	return props, nil
}

// fromData converts a projected object back into the typed model.
func (r *Repository[T]) fromData(data *conn.ObjectData) (*DocumentModel[T], error) {
	entry := data.Object.Core()
	fields := make(map[string]any, len(entry.Properties))
	for id, p := range entry.Properties {
		fields[id] = p.First()
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("property marshal failed: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}

	return &DocumentModel[T]{
		ID:          entry.ID,
		Name:        entry.Name,
		ChangeToken: entry.ChangeToken,
		Data:        out,
		Saver:       r,
	}, nil
}

func (r *Repository[T]) definitions(ctx context.Context) (map[string]core.PropertyDefinition, error) {
	if r.defs != nil {
		return r.defs, nil
	}
	defs, err := typesys.EffectiveProperties(ctx, r.conn.Backend(), r.typeID)
	if err != nil {
		return nil, err
	}
	r.defs = defs
	return defs, nil
}

// coerce reshapes a json-decoded value to what the property type expects.
// json numbers always decode as float64; datetimes arrive as RFC 3339
// strings.
func coerce(v any, t core.PropertyType) any {
	switch t {
	case core.PropertyInteger:
		if f, ok := v.(float64); ok {
			return int64(f)
		}
	case core.PropertyDateTime:
		if s, ok := v.(string); ok {
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts
			}
		}
	}
	return v
}
