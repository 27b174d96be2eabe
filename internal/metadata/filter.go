package metadata

import (
	"regexp"
	"strings"

	"github.com/polysentinel/sentinel/internal/domain"
)

// The content policy excludes short-horizon crypto price-movement markets
// ("Bitcoin up or down in the next 5 minutes?") from alerting: they churn
// through outcomes so quickly that fresh-wallet clusters on them are noise.
// Each pattern family below is sufficient on its own to exclude a market.
// The filter is a heuristic; when tuning, false positives (suppressing a
// legitimate market) are the risk to minimize.
var (
	// "5 min", "15 minutes", "next 3 mins"
	minuteMention = regexp.MustCompile(`\b\d+\s*min(ute)?s?\b`)

	// "1-minute", "one minute", "5 minute", "15-minute"
	labeledMinute = regexp.MustCompile(`\b(one|1|5|15)[\s-]min(ute)?s?\b`)

	// "up or down", "higher or lower", "above or below"
	eitherWay = regexp.MustCompile(`\b(up or down|higher or lower|above or below)\b`)

	// "at 3pm", "at 15:00 utc", "by 11:30 am et"
	clockTime = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s*(am|pm|utc|et|pt)\b`)

	// crypto asset name, only excluding in combination with a clock time or
	// a direction word
	cryptoAsset = regexp.MustCompile(`\b(bitcoin|btc|ethereum|eth|solana|sol|xrp|ripple|dogecoin|doge|cardano|ada|crypto)\b`)
	direction   = regexp.MustCompile(`\b(up|down|higher|lower)\b`)
)

// ShouldFilter reports whether a market is excluded from alerting by the
// content policy. Markets without question text are never filtered here;
// the unknown-market policy is decided by the detector.
func ShouldFilter(info domain.MarketInfo) bool {
	if info.Question == "" {
		return false
	}
	q := strings.ToLower(info.Question)

	if minuteMention.MatchString(q) || labeledMinute.MatchString(q) {
		return true
	}
	if eitherWay.MatchString(q) {
		return true
	}
	if clockTime.MatchString(q) {
		return true
	}
	if cryptoAsset.MatchString(q) && (clockTime.MatchString(q) || direction.MatchString(q)) {
		return true
	}

	return false
}
