package commands

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
)

// SaveSettings stores the viewer's dashboard settings.
type SaveSettings struct {
	Viewer   panels.Viewer
	Settings settings.Settings
}

// SaveSettingsCommand validates and persists settings.
type SaveSettingsCommand struct {
	deps     Deps
	accessor *settings.Accessor
}

func NewSaveSettingsCommand(deps Deps, accessor *settings.Accessor) *SaveSettingsCommand {
	return &SaveSettingsCommand{deps: deps.normalized(), accessor: accessor}
}

var _ gocommand.Commander[SaveSettings] = (*SaveSettingsCommand)(nil)

func (c *SaveSettingsCommand) Execute(ctx context.Context, msg SaveSettings) error {
	_, err := c.Save(ctx, msg)
	return err
}

// Save returns the stored settings. Maintenance mode is an admin setting and
// is kept unchanged for other viewers.
func (c *SaveSettingsCommand) Save(ctx context.Context, msg SaveSettings) (settings.Settings, error) {
	if c.accessor == nil {
		return settings.Settings{}, missingDependency("settings command requires an accessor")
	}
	if err := requireID("userId", msg.Viewer.UserID); err != nil {
		return settings.Settings{}, err
	}
	next := msg.Settings
	if msg.Viewer.Role != status.RoleAdmin {
		current, err := c.accessor.Load(ctx, msg.Viewer.UserID)
		if err != nil {
			return settings.Settings{}, err
		}
		next.MaintenanceMode = current.MaintenanceMode
	}
	saved, err := c.accessor.Save(ctx, msg.Viewer.UserID, next)
	if err != nil {
		return settings.Settings{}, err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       msg.Viewer.Role.String() + ".settings.save",
		objectType: "settings",
		objectID:   msg.Viewer.UserID,
	})
	return saved, nil
}

// AddDocument uploads a profile document's metadata.
type AddDocument struct {
	Viewer   panels.Viewer
	Document supplier.NewDocument
}

// AddDocumentCommand appends to the seller's documents.
type AddDocumentCommand struct {
	deps      Deps
	documents *supplier.Documents
}

func NewAddDocumentCommand(deps Deps, documents *supplier.Documents) *AddDocumentCommand {
	return &AddDocumentCommand{deps: deps.normalized(), documents: documents}
}

var _ gocommand.Commander[AddDocument] = (*AddDocumentCommand)(nil)

func (c *AddDocumentCommand) Execute(ctx context.Context, msg AddDocument) error {
	_, err := c.Add(ctx, msg)
	return err
}

func (c *AddDocumentCommand) Add(ctx context.Context, msg AddDocument) (supplier.Document, error) {
	if c.documents == nil {
		return supplier.Document{}, missingDependency("document command requires a document store")
	}
	if err := requireID("userId", msg.Viewer.UserID); err != nil {
		return supplier.Document{}, err
	}
	doc, err := c.documents.Add(ctx, msg.Viewer.UserID, msg.Document)
	if err != nil {
		return supplier.Document{}, err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       "seller.document.add",
		objectType: "document",
		objectID:   doc.ID,
		metadata:   map[string]any{"type": doc.Type},
	})
	return doc, nil
}

// RemoveDocument deletes a profile document.
type RemoveDocument struct {
	Viewer     panels.Viewer
	DocumentID string
}

// RemoveDocumentCommand removes one document by id.
type RemoveDocumentCommand struct {
	deps      Deps
	documents *supplier.Documents
}

func NewRemoveDocumentCommand(deps Deps, documents *supplier.Documents) *RemoveDocumentCommand {
	return &RemoveDocumentCommand{deps: deps.normalized(), documents: documents}
}

var _ gocommand.Commander[RemoveDocument] = (*RemoveDocumentCommand)(nil)

func (c *RemoveDocumentCommand) Execute(ctx context.Context, msg RemoveDocument) error {
	if c.documents == nil {
		return missingDependency("document command requires a document store")
	}
	if err := requireID("documentId", msg.DocumentID); err != nil {
		return err
	}
	if err := c.documents.Remove(ctx, msg.Viewer.UserID, msg.DocumentID); err != nil {
		return err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       "seller.document.remove",
		objectType: "document",
		objectID:   msg.DocumentID,
	})
	return nil
}

// SaveToken stores (or, when Token is blank, clears) the seller's backend
// access token.
type SaveToken struct {
	Viewer panels.Viewer
	Token  string
}

// SaveTokenCommand manages the seller access token.
type SaveTokenCommand struct {
	deps   Deps
	tokens *supplier.Tokens
}

func NewSaveTokenCommand(deps Deps, tokens *supplier.Tokens) *SaveTokenCommand {
	return &SaveTokenCommand{deps: deps.normalized(), tokens: tokens}
}

var _ gocommand.Commander[SaveToken] = (*SaveTokenCommand)(nil)

func (c *SaveTokenCommand) Execute(ctx context.Context, msg SaveToken) error {
	if c.tokens == nil {
		return missingDependency("token command requires a token store")
	}
	if err := requireID("userId", msg.Viewer.UserID); err != nil {
		return err
	}
	token := strings.TrimSpace(msg.Token)
	verb := "seller.token.save"
	var err error
	if token == "" {
		verb = "seller.token.clear"
		err = c.tokens.ClearToken(ctx, msg.Viewer.UserID)
	} else {
		err = c.tokens.SaveToken(ctx, msg.Viewer.UserID, token)
	}
	if err != nil {
		return err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       verb,
		objectType: "token",
		objectID:   msg.Viewer.UserID,
	})
	return nil
}
