package alert

import (
	"strings"

	"github.com/swatto/hooktomattermost/internal/notify"
)

// Classification is the presentation derived from an alert's text.
type Classification struct {
	Priority notify.Priority
	Color    string
	Icon     string
}

// Priority colors, bright enough to stand out in a Mattermost sidebar.
const (
	ColorCritical = "#ff0000"
	ColorWarning  = "#ff8c00"
	ColorInfo     = "#00bfff"
	ColorResolved = "#32cd32"
	ColorMedium   = "#ff6b35"
)

type keywordRule struct {
	keywords []string
	class    Classification
}

// rules are evaluated in order; the first keyword hit wins.
var rules = []keywordRule{
	{[]string{"critical"}, Classification{notify.PriorityCritical, ColorCritical, "🔥"}},
	{[]string{"warning"}, Classification{notify.PriorityWarning, ColorWarning, "⚠️"}},
	{[]string{"info"}, Classification{notify.PriorityInfo, ColorInfo, "💡"}},
	{[]string{"success", "resolved"}, Classification{notify.PriorityResolved, ColorResolved, "✅"}},
}

var defaultClassification = Classification{notify.PriorityMedium, ColorMedium, "📊"}

// Classify infers the priority of an alert from keywords in its type,
// category and description. Keyword precedence, not field order, decides
// ties: "critical" anywhere beats "warning" anywhere.
func Classify(category, alertType, description string) Classification {
	haystack := strings.ToLower(alertType + " " + category + " " + description)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(haystack, kw) {
				return r.class
			}
		}
	}
	return defaultClassification
}
