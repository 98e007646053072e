package search

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rising-ai-tgbot-go/pkg/logger"
)

// Event is one upcoming happening from any provider.
type Event struct {
	Title    string
	Venue    string
	Date     string
	URL      string
	Provider string
}

// EventProvider lists upcoming events for a location query.
type EventProvider interface {
	Name() string
	Events(ctx context.Context, location string) ([]Event, error)
}

// Aggregator fans one lookup out to every provider at once and merges
// the lists, dropping duplicates.
type Aggregator struct {
	providers []EventProvider
}

func NewAggregator(providers ...EventProvider) *Aggregator {
	return &Aggregator{providers: providers}
}

// Events queries all providers in parallel. A provider failure is
// logged and dropped, the merged list reflects whoever answered.
func (a *Aggregator) Events(ctx context.Context, location string) []Event {
	results := make([][]Event, len(a.providers))
	g, gctx := errgroup.WithContext(ctx)

	for i, p := range a.providers {
		i, p := i, p
		g.Go(func() error {
			events, err := p.Events(gctx, location)
			if err != nil {
				logger.WithField("provider", p.Name()).Warnf("event lookup failed: %v", err)
				return nil
			}
			results[i] = events
			return nil
		})
	}
	g.Wait()

	return dedupeEvents(results)
}

var rePunct = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// titleKey normalizes a title so the same event listed by two
// providers collapses to one entry.
func titleKey(title string) string {
	k := strings.ToLower(title)
	k = rePunct.ReplaceAllString(k, "")
	return strings.Join(strings.Fields(k), " ")
}

func dedupeEvents(lists [][]Event) []Event {
	seen := make(map[string]bool)
	var merged []Event
	for _, list := range lists {
		for _, e := range list {
			key := titleKey(e.Title)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, e)
		}
	}
	return merged
}

// FormatEvents renders the merged list as search-result text.
func FormatEvents(events []Event, location string) *Result {
	if len(events) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Upcoming events near " + location + ":")
	var sources []string
	for i, e := range events {
		if i >= 10 {
			break
		}
		b.WriteString("\n- " + e.Title)
		if e.Date != "" {
			b.WriteString(" (" + e.Date + ")")
		}
		if e.Venue != "" {
			b.WriteString(" at " + e.Venue)
		}
		if e.URL != "" {
			sources = append(sources, e.URL)
		}
	}
	return &Result{Text: b.String(), Sources: sources}
}
