package notionsync

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/aggregate"
	"github.com/jomei/notionapi"
)

// Property names of the attendant summary database.
const (
	PropAttendant    = "Frentista"
	PropSummaryKey   = "Summary Key"
	PropPeriod       = "Period"
	PropTotal        = "Total"
	PropVolume       = "Volume"
	PropCount        = "Count"
	PropAveragePrice = "Average Price"
)

// Period identifies the filtered date range a summary covers.
func Period(start, end *civil.Date) string {
	from, to := "inicio", "hoje"
	if start != nil {
		from = start.String()
	}
	if end != nil {
		to = end.String()
	}
	return from + "_" + to
}

// SummaryKey is the upsert key of an attendant summary page.
func SummaryKey(period, nickname string) string {
	return fmt.Sprintf("%s|%s", period, nickname)
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

// AttendantSummaryToProperties converts one attendant group to page properties.
func AttendantSummaryToProperties(period string, g aggregate.AttendantDetail) notionapi.Properties {
	total := g.Total.Round(2).InexactFloat64()
	volume := g.Volume.Round(3).InexactFloat64()

	props := notionapi.Properties{
		PropAttendant: notionapi.TitleProperty{
			Title: richText(g.Name),
		},
		PropSummaryKey: notionapi.RichTextProperty{
			RichText: richText(SummaryKey(period, g.Name)),
		},
		PropPeriod: notionapi.RichTextProperty{
			RichText: richText(period),
		},
		PropTotal: notionapi.NumberProperty{
			Number: total,
		},
		PropVolume: notionapi.NumberProperty{
			Number: volume,
		},
		PropCount: notionapi.NumberProperty{
			Number: float64(g.Count),
		},
	}

	// Only meaningful with volume; the zero-volume fallback would be the total.
	if g.Volume.IsPositive() {
		props[PropAveragePrice] = notionapi.NumberProperty{
			Number: g.Total.Div(g.Volume).Round(2).InexactFloat64(),
		}
	}

	return props
}

// extractSummaryKey returns the Summary Key of a page, or "".
func extractSummaryKey(page notionapi.Page) string {
	if prop, ok := page.Properties[PropSummaryKey]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(rt.RichText) > 0 {
				return rt.RichText[0].PlainText
			}
		}
	}
	return ""
}
