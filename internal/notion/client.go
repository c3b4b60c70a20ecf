// Package notion persists summarized threads as pages in a Notion
// database.
package notion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jomei/notionapi"

	"threadscribe.app/bot/internal/document"
)

// PersistenceError wraps a failed page creation. StatusCode is the HTTP
// status reported by the Notion API, or 0 when the request never got a
// response.
type PersistenceError struct {
	StatusCode int
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("notion: page creation failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("notion: page creation failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Client writes pages into a single configured database.
type Client struct {
	api        *notionapi.Client
	databaseID notionapi.DatabaseID
}

func New(apiKey, databaseID string) *Client {
	return &Client{
		api:        notionapi.NewClient(notionapi.Token(apiKey)),
		databaseID: notionapi.DatabaseID(databaseID),
	}
}

// SavePage creates a page for the record and returns its URL.
func (c *Client) SavePage(ctx context.Context, rec document.Record) (string, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: c.databaseID,
		},
		Properties: pageProperties(rec),
		Children:   pageChildren(rec),
	}

	page, err := c.api.Page.Create(ctx, req)
	if err != nil {
		var apiErr *notionapi.Error
		if errors.As(err, &apiErr) {
			return "", &PersistenceError{StatusCode: apiErr.Status, Err: err}
		}
		return "", &PersistenceError{Err: err}
	}

	return page.URL, nil
}
