package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// timeSource answers "time in <place>" queries from worldtimeapi.org.
// It only engages on queries that name a place; everything else passes
// through to the next source in the chain.
type timeSource struct {
	client *http.Client
}

func newTimeSource(timeout time.Duration) *timeSource {
	return &timeSource{client: newHTTPClient(timeout)}
}

func (s *timeSource) Name() string { return "worldtime" }

var reTimeIn = regexp.MustCompile(`(?i)\btime\s+(?:in|at|for)\s+([a-zA-Z][a-zA-Z\s]+)`)

// Common city aliases onto IANA zones. Unlisted places fall through.
var cityZones = map[string]string{
	"london":      "Europe/London",
	"paris":       "Europe/Paris",
	"berlin":      "Europe/Berlin",
	"moscow":      "Europe/Moscow",
	"new york":    "America/New_York",
	"los angeles": "America/Los_Angeles",
	"chicago":     "America/Chicago",
	"toronto":     "America/Toronto",
	"tokyo":       "Asia/Tokyo",
	"beijing":     "Asia/Shanghai",
	"shanghai":    "Asia/Shanghai",
	"singapore":   "Asia/Singapore",
	"hong kong":   "Asia/Hong_Kong",
	"dubai":       "Asia/Dubai",
	"delhi":       "Asia/Kolkata",
	"mumbai":      "Asia/Kolkata",
	"kolkata":     "Asia/Kolkata",
	"bangalore":   "Asia/Kolkata",
	"sydney":      "Australia/Sydney",
	"melbourne":   "Australia/Melbourne",
	"auckland":    "Pacific/Auckland",
}

type worldTimeResponse struct {
	Datetime string `json:"datetime"`
	Timezone string `json:"timezone"`
}

func (s *timeSource) Search(ctx context.Context, q Query) (*Result, error) {
	m := reTimeIn.FindStringSubmatch(q.Raw)
	if m == nil {
		return nil, fmt.Errorf("not a place-time query")
	}
	place := strings.ToLower(strings.TrimSpace(m[1]))
	zone, ok := cityZones[place]
	if !ok {
		return nil, fmt.Errorf("unknown place %q", place)
	}

	data, err := httpGet(ctx, s.client,
		"https://worldtimeapi.org/api/timezone/"+zone, nil)
	if err != nil {
		return nil, err
	}

	var wt worldTimeResponse
	if err := json.Unmarshal(data, &wt); err != nil {
		return nil, fmt.Errorf("failed to parse time response: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, wt.Datetime)
	if err != nil {
		return nil, fmt.Errorf("unparseable datetime %q: %w", wt.Datetime, err)
	}

	text := fmt.Sprintf("The current time in %s is %s (%s).",
		cases.Title(language.English).String(place),
		parsed.Format("3:04 PM"), parsed.Format("Monday, January 2"))
	return &Result{Text: text, Sources: []string{"worldtimeapi.org"}}, nil
}
