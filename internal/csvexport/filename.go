package csvexport

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// DefaultFilenamePrefix names attendant sales exports.
const DefaultFilenamePrefix = "vendas_frentistas"

// Filename builds the download name for an export: <prefix>_<start>_a_<end>.csv
// when both bounds are known, <prefix>_<date>.csv otherwise, where date is
// the one known bound or today's date.
func Filename(prefix string, start, end *civil.Date, now time.Time) string {
	if prefix == "" {
		prefix = DefaultFilenamePrefix
	}
	switch {
	case start != nil && end != nil:
		return fmt.Sprintf("%s_%s_a_%s.csv", prefix, start, end)
	case start != nil:
		return fmt.Sprintf("%s_%s.csv", prefix, start)
	case end != nil:
		return fmt.Sprintf("%s_%s.csv", prefix, end)
	default:
		return fmt.Sprintf("%s_%s.csv", prefix, civil.DateOf(now))
	}
}
