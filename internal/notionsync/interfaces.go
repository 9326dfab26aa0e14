package notionsync

import (
	"context"

	"github.com/jomei/notionapi"
)

// SummaryPage is an existing summary page and its Summary Key.
type SummaryPage struct {
	ID  string
	Key string
}

// NotionService stores attendant summary pages.
type NotionService interface {
	// PeriodPages lists the summary pages of one period.
	PeriodPages(ctx context.Context, databaseID, period string) ([]SummaryPage, error)

	CreateSummary(ctx context.Context, databaseID string, props notionapi.Properties) error
	UpdateSummary(ctx context.Context, pageID string, props notionapi.Properties) error

	// ArchiveSummary moves a page to the trash.
	ArchiveSummary(ctx context.Context, pageID string) error
}
