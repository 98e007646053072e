package search

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/rising-ai-tgbot-go/internal/config"
	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

// Resolver walks an ordered chain of sources until one produces an
// adequate result. Source failures never propagate, the chain just
// moves on.
type Resolver struct {
	cfg        config.SearchConfig
	enabled    atomic.Bool
	sources    []Source
	weather    *weatherSource
	aggregator *Aggregator
}

// NewResolver builds the production chain. Order encodes quality:
// synthesized answers first, raw page text last.
func NewResolver(cfg config.SearchConfig) *Resolver {
	t := cfg.Timeout
	r := &Resolver{
		cfg: cfg,
		sources: []Source{
			newTimeSource(t),
			newTavilySource(cfg.TavilyAPIKey, t),
			newGoogleSource(cfg.GoogleAPIKey, cfg.GoogleCXID, t),
			newInstantSource(t),
			newDDGSource(t),
			newWikipediaSource(t),
			newJinaSource(cfg.JinaAPIKey, t),
		},
		weather: newWeatherSource(t),
		aggregator: NewAggregator(
			NewEventbriteProvider(t),
			NewMeetupProvider(t),
		),
	}
	r.enabled.Store(cfg.Enabled)
	return r
}

// newResolverWithSources is the test seam.
func newResolverWithSources(cfg config.SearchConfig, sources ...Source) *Resolver {
	r := &Resolver{cfg: cfg, sources: sources}
	r.enabled.Store(cfg.Enabled)
	return r
}

// SetEnabled flips live search at runtime.
func (r *Resolver) SetEnabled(on bool) {
	r.enabled.Store(on)
}

// Enabled reports the current toggle state.
func (r *Resolver) Enabled() bool {
	return r.enabled.Load()
}

// ShouldSearch is deliberately aggressive: anything that is not pure
// chit-chat gets live context. A wasted search is cheaper than a stale
// answer.
func (r *Resolver) ShouldSearch(message string, it models.Intent) bool {
	if !r.enabled.Load() {
		return false
	}
	if len(strings.TrimSpace(message)) < 3 {
		return false
	}
	switch it {
	case models.IntentGreeting, models.IntentSmallTalk:
		return false
	}
	return true
}

var (
	reEventKeywords  = regexp.MustCompile(`(?i)\b(?:events?|meetups?|conferences?|concerts?)\b`)
	reEventsLocation = regexp.MustCompile(`(?i)\b(?:near|in|around|happening\s+in)\s+([a-zA-Z][a-zA-Z\s]+)`)
)

// Resolve runs the chain for one message and returns the first
// adequate result. Sources carries the name of the step that answered,
// which is what the history markers and metrics report.
func (r *Resolver) Resolve(ctx context.Context, message string) *models.SearchResult {
	q := Query{
		Text:       ExpandQuery(RewriteForSearch(message)),
		Raw:        message,
		Region:     r.cfg.Region,
		News:       IsNewsQuery(message),
		MaxResults: r.cfg.MaxResults,
	}

	// Weather and event questions have dedicated upstreams that beat
	// general search on both accuracy and latency.
	if r.weather != nil && IsWeatherQuery(message) {
		if res, err := r.weather.Search(ctx, q); err == nil && res.Adequate() {
			return &models.SearchResult{Text: res.Text, Sources: []string{r.weather.Name()}}
		} else if err != nil {
			logger.WithField("source", r.weather.Name()).Debugf("weather lookup failed: %v", err)
		}
	}
	if r.aggregator != nil && reEventKeywords.MatchString(message) {
		// Location is optional, "any good meetups this weekend?" still
		// hits the aggregator.
		location := "online"
		if m := reEventsLocation.FindStringSubmatch(message); m != nil {
			location = strings.TrimSpace(m[1])
		}
		if res := FormatEvents(r.aggregator.Events(ctx, location), location); res.Adequate() {
			return &models.SearchResult{Text: res.Text, Sources: []string{"events"}}
		}
	}

	for _, src := range r.sources {
		if ctx.Err() != nil {
			return nil
		}
		res, err := src.Search(ctx, q)
		if err != nil {
			logger.WithField("source", src.Name()).Debugf("source failed: %v", err)
			continue
		}
		if !res.Adequate() {
			logger.WithField("source", src.Name()).Debug("result below adequacy threshold")
			continue
		}
		logger.WithFields(map[string]interface{}{
			"source": src.Name(),
			"chars":  len(res.Text),
		}).Info("search resolved")
		return &models.SearchResult{Text: res.Text, Sources: []string{src.Name()}}
	}
	return nil
}
