package notionsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
)

// queryPageSize is the largest page size the Notion API accepts.
const queryPageSize = 100

// NotionClient implements NotionService on top of the notionapi page and
// database services.
type NotionClient struct {
	pages     notionapi.PageService
	databases notionapi.DatabaseService
}

// NewNotionClient creates a client authenticated with an integration token.
func NewNotionClient(token string) *NotionClient {
	c := notionapi.NewClient(notionapi.Token(token))
	return &NotionClient{pages: c.Page, databases: c.Database}
}

// PeriodPages queries pages whose Period equals period, following cursors.
// Pages without a Summary Key of that period are skipped.
func (n *NotionClient) PeriodPages(ctx context.Context, databaseID, period string) ([]SummaryPage, error) {
	req := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: PropPeriod,
			RichText: &notionapi.TextFilterCondition{Equals: period},
		},
		PageSize: queryPageSize,
	}

	prefix := period + "|"
	var out []SummaryPage
	for {
		resp, err := n.databases.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, fmt.Errorf("PeriodPages: query %s: %w", databaseID, err)
		}
		for _, page := range resp.Results {
			key := extractSummaryKey(page)
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			out = append(out, SummaryPage{ID: string(page.ID), Key: key})
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return out, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

// CreateSummary adds a page to the database.
func (n *NotionClient) CreateSummary(ctx context.Context, databaseID string, props notionapi.Properties) error {
	_, err := n.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: props,
	})
	if err != nil {
		return fmt.Errorf("CreateSummary: %w", err)
	}
	return nil
}

// UpdateSummary overwrites the properties of an existing page.
func (n *NotionClient) UpdateSummary(ctx context.Context, pageID string, props notionapi.Properties) error {
	if _, err := n.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: props}); err != nil {
		return fmt.Errorf("UpdateSummary %s: %w", pageID, err)
	}
	return nil
}

// ArchiveSummary implements NotionService.
func (n *NotionClient) ArchiveSummary(ctx context.Context, pageID string) error {
	if _, err := n.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Archived: true}); err != nil {
		return fmt.Errorf("ArchiveSummary %s: %w", pageID, err)
	}
	return nil
}

var _ NotionService = (*NotionClient)(nil)
