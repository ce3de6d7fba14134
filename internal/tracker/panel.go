package tracker

import (
	"fmt"
	"strings"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// Field is one labelled value of the result panel
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Panel returns the four labelled fields shown for a result, or nil when
// there is no result yet and the panel stays hidden.
func Panel(result *models.LookupResult) []Field {
	if result == nil {
		return nil
	}

	return []Field{
		{Label: "IP ADDRESS", Value: result.IP},
		{Label: "LOCATION", Value: joinNonEmpty(result.Location.City, result.Location.Region)},
		{Label: "TIMEZONE", Value: FormatTimezone(result.Location.Timezone)},
		{Label: "ISP", Value: result.ISP},
	}
}

// FormatTimezone prefixes signed offsets with UTC ("-07:00" becomes
// "UTC -07:00", "2" becomes "UTC +2"). Zone names pass through unchanged.
func FormatTimezone(tz string) string {
	tz = strings.TrimSpace(tz)
	switch {
	case tz == "":
		return ""
	case tz[0] == '+' || tz[0] == '-':
		return "UTC " + tz
	case tz[0] >= '0' && tz[0] <= '9':
		return fmt.Sprintf("UTC +%s", tz)
	default:
		return tz
	}
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}
