// Package supplier keeps the seller profile documents and the seller access
// token in the key/value store.
package supplier

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-market-dashboard/components/kvstore"
)

// Document types accepted on the profile page.
var DocumentTypes = []string{"business_registration", "tax_certificate", "id_card", "bank_statement", "other"}

// Document is an uploaded profile document. Only metadata is kept.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	SizeBytes  int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Verified   bool      `json:"verified"`
}

// NewDocument is the add form.
type NewDocument struct {
	Name      string
	Type      string
	SizeBytes int64
}

// Documents manages the document list of each owner.
type Documents struct {
	store kvstore.Store
	now   func() time.Time
}

// NewDocuments wires the document list to store.
func NewDocuments(store kvstore.Store) *Documents {
	return &Documents{store: store, now: time.Now}
}

// List returns the owner's documents, newest first.
func (d *Documents) List(ctx context.Context, owner string) ([]Document, error) {
	raw, ok, err := d.store.Get(ctx, owner, kvstore.KeySupplierDocuments)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "load supplier documents")
	}
	if !ok || len(raw) == 0 {
		return []Document{}, nil
	}
	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return []Document{}, nil
	}
	return docs, nil
}

// Add validates and stores a new document.
func (d *Documents) Add(ctx context.Context, owner string, in NewDocument) (Document, error) {
	name := strings.TrimSpace(in.Name)
	kind := strings.TrimSpace(in.Type)
	var fields []goerrors.FieldError
	if name == "" {
		fields = append(fields, goerrors.FieldError{Field: "name", Message: "document name is required"})
	}
	if kind == "" {
		fields = append(fields, goerrors.FieldError{Field: "type", Message: "document type is required"})
	} else if !slices.Contains(DocumentTypes, kind) {
		fields = append(fields, goerrors.FieldError{Field: "type", Message: "unsupported document type", Value: kind})
	}
	if len(fields) > 0 {
		return Document{}, goerrors.NewValidation("invalid document", fields...)
	}

	docs, err := d.List(ctx, owner)
	if err != nil {
		return Document{}, err
	}
	doc := Document{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       kind,
		SizeBytes:  in.SizeBytes,
		UploadedAt: d.now().UTC(),
	}
	docs = append([]Document{doc}, docs...)
	if err := d.write(ctx, owner, docs); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Remove deletes a document by id.
func (d *Documents) Remove(ctx context.Context, owner, id string) error {
	docs, err := d.List(ctx, owner)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(docs, func(doc Document) bool { return doc.ID == id })
	if idx < 0 {
		return goerrors.New("document not found", goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"id": id})
	}
	docs = slices.Delete(docs, idx, idx+1)
	return d.write(ctx, owner, docs)
}

func (d *Documents) write(ctx context.Context, owner string, docs []Document) error {
	payload, err := json.Marshal(docs)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encode supplier documents")
	}
	if err := d.store.Put(ctx, owner, kvstore.KeySupplierDocuments, payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "save supplier documents")
	}
	return nil
}
