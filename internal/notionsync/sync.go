// Package notionsync publishes attendant sales summaries to a Notion
// database, one page per attendant and period.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/posto-dashboard/internal/aggregate"
	"github.com/dvloznov/posto-dashboard/internal/logger"
)

// PublishResult counts what a publish did (or would do, in a dry run).
type PublishResult struct {
	Created  int
	Updated  int
	Archived int
	Failed   int
}

// PublishAttendantSummary upserts one page per group for period, keyed by
// Summary Key. Pages of the same period whose attendant is no longer in
// groups are archived. Individual page failures are logged and counted;
// only failing to read the database is an error.
func PublishAttendantSummary(ctx context.Context, notionClient NotionService, databaseID, period string, groups []aggregate.AttendantDetail, dryRun bool) (PublishResult, error) {
	log := logger.FromContext(ctx).With().
		Str("period", period).
		Bool("dry_run", dryRun).
		Logger()

	var res PublishResult

	pages, err := notionClient.PeriodPages(ctx, databaseID, period)
	if err != nil {
		return res, fmt.Errorf("PublishAttendantSummary: %w", err)
	}

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		existing[page.Key] = page.ID
	}
	log.Info().Int("groups", len(groups)).Int("existing_pages", len(existing)).Msg("Publishing attendant summary")

	current := make(map[string]bool, len(groups))
	for _, g := range groups {
		key := SummaryKey(period, g.Name)
		current[key] = true
		props := AttendantSummaryToProperties(period, g)

		pageID, found := existing[key]
		switch {
		case dryRun && found:
			log.Info().Str("summary_key", key).Str("page_id", pageID).Msg("[DRY RUN] Would update Notion page")
			res.Updated++
		case dryRun:
			log.Info().Str("summary_key", key).Msg("[DRY RUN] Would create Notion page")
			res.Created++
		case found:
			if err := notionClient.UpdateSummary(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("summary_key", key).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++
		default:
			if err := notionClient.CreateSummary(ctx, databaseID, props); err != nil {
				log.Warn().Err(err).Str("summary_key", key).Msg("Failed to create Notion page")
				res.Failed++
				continue
			}
			res.Created++
		}
	}

	for key, pageID := range existing {
		if current[key] {
			continue
		}
		if dryRun {
			log.Info().Str("summary_key", key).Msg("[DRY RUN] Would archive stale Notion page")
			res.Archived++
			continue
		}
		if err := notionClient.ArchiveSummary(ctx, pageID); err != nil {
			log.Warn().Err(err).Str("summary_key", key).Msg("Failed to archive stale Notion page")
			res.Failed++
			continue
		}
		res.Archived++
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Msg("Attendant summary published")

	return res, nil
}
