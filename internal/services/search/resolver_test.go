package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rising-ai-tgbot-go/internal/config"
	"github.com/rising-ai-tgbot-go/internal/models"
)

type stubSource struct {
	name   string
	result *Result
	err    error
	calls  int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(_ context.Context, _ Query) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func searchCfg() config.SearchConfig {
	return config.SearchConfig{
		Enabled:    true,
		Region:     "IN",
		MaxResults: 10,
		Timeout:    5 * time.Second,
	}
}

func TestResolveStopsAtFirstAdequate(t *testing.T) {
	long := strings.Repeat("x", 80)
	first := &stubSource{name: "first", result: &Result{Text: long, Sources: []string{"a"}}}
	second := &stubSource{name: "second", result: &Result{Text: long}}

	r := newResolverWithSources(searchCfg(), first, second)
	res := r.Resolve(context.Background(), "latest news")
	if res == nil || res.Text != long {
		t.Fatalf("expected first source's result, got %+v", res)
	}
	if second.calls != 0 {
		t.Fatalf("second source called %d times after first succeeded", second.calls)
	}
}

// Failures and thin results both advance the chain: the fourth source
// is the first that answers adequately, and every earlier one must
// have been tried exactly once.
func TestResolveFallsThroughToFourth(t *testing.T) {
	long := strings.Repeat("y", 120)
	chain := []*stubSource{
		{name: "s1", err: errors.New("down")},
		{name: "s2", result: &Result{Text: "too short"}},
		{name: "s3", err: errors.New("also down")},
		{name: "s4", result: &Result{Text: long, Sources: []string{"s4.example"}}},
		{name: "s5", result: &Result{Text: long}},
	}
	sources := make([]Source, len(chain))
	for i, s := range chain {
		sources[i] = s
	}

	r := newResolverWithSources(searchCfg(), sources...)
	res := r.Resolve(context.Background(), "who won the match today")
	if res == nil || res.Sources[0] != "s4" {
		t.Fatalf("expected fourth source to win, got %+v", res)
	}
	for i, s := range chain[:4] {
		if s.calls != 1 {
			t.Errorf("source %d called %d times, want 1", i+1, s.calls)
		}
	}
	if chain[4].calls != 0 {
		t.Errorf("fifth source called after fourth succeeded")
	}
}

type stubEventProvider struct {
	lastLocation string
	events       []Event
}

func (p *stubEventProvider) Name() string { return "stub" }

func (p *stubEventProvider) Events(_ context.Context, location string) ([]Event, error) {
	p.lastLocation = location
	return p.events, nil
}

func eventFixture() []Event {
	return []Event{
		{Title: "Distributed Systems Meetup", Date: "Sat 7pm", Venue: "WeWork BKC", URL: "https://a.example"},
		{Title: "Go Developers Conference", Date: "Sun 10am", Venue: "Convention Hall", URL: "https://b.example"},
	}
}

// Event keywords alone reach the aggregator; a missing location
// defaults rather than skipping the route.
func TestResolveEventsWithoutLocation(t *testing.T) {
	provider := &stubEventProvider{events: eventFixture()}
	chain := &stubSource{name: "chain"}
	r := newResolverWithSources(searchCfg(), chain)
	r.aggregator = NewAggregator(provider)

	res := r.Resolve(context.Background(), "any good tech meetups this weekend?")
	if res == nil || res.Sources[0] != "events" {
		t.Fatalf("expected the events route to answer, got %+v", res)
	}
	if provider.lastLocation != "online" {
		t.Fatalf("expected default location, got %q", provider.lastLocation)
	}
	if chain.calls != 0 {
		t.Error("chain consulted after the events route answered")
	}
}

func TestResolveEventsCapturesLocation(t *testing.T) {
	provider := &stubEventProvider{events: eventFixture()}
	r := newResolverWithSources(searchCfg())
	r.aggregator = NewAggregator(provider)

	res := r.Resolve(context.Background(), "concerts in mumbai")
	if res == nil || !strings.Contains(res.Text, "mumbai") {
		t.Fatalf("expected location in the event summary, got %+v", res)
	}
	if provider.lastLocation != "mumbai" {
		t.Fatalf("location not captured, got %q", provider.lastLocation)
	}
}

func TestResolveAllSourcesFail(t *testing.T) {
	r := newResolverWithSources(searchCfg(),
		&stubSource{name: "a", err: errors.New("down")},
		&stubSource{name: "b", result: &Result{Text: "tiny"}},
	)
	if res := r.Resolve(context.Background(), "anything"); res != nil {
		t.Fatalf("expected nil when no source is adequate, got %+v", res)
	}
}

func TestResolveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &stubSource{name: "a", result: &Result{Text: strings.Repeat("z", 100)}}
	r := newResolverWithSources(searchCfg(), s)
	if res := r.Resolve(ctx, "anything"); res != nil {
		t.Fatalf("expected nil on cancelled context, got %+v", res)
	}
	if s.calls != 0 {
		t.Fatalf("source called despite cancelled context")
	}
}

func TestShouldSearch(t *testing.T) {
	r := newResolverWithSources(searchCfg())
	cases := []struct {
		message string
		intent  models.Intent
		want    bool
	}{
		{"hello", models.IntentGreeting, false},
		{"thanks", models.IntentSmallTalk, false},
		{"ok", models.IntentGeneralTask, false}, // under three chars
		{"write a poem about the sea", models.IntentGeneralTask, true},
		{"what is photosynthesis", models.IntentInfoQuestion, true},
		{"bitcoin price", models.IntentRealTimeData, true},
	}
	for _, tc := range cases {
		if got := r.ShouldSearch(tc.message, tc.intent); got != tc.want {
			t.Errorf("ShouldSearch(%q, %v) = %v, want %v", tc.message, tc.intent, got, tc.want)
		}
	}
}

func TestShouldSearchDisabled(t *testing.T) {
	cfg := searchCfg()
	cfg.Enabled = false
	r := newResolverWithSources(cfg)
	if r.ShouldSearch("what is the latest news", models.IntentRealTimeData) {
		t.Fatal("search should be off when disabled in config")
	}
}

func TestAdequacyThreshold(t *testing.T) {
	if (&Result{Text: strings.Repeat("a", 50)}).Adequate() {
		t.Error("exactly 50 chars should not be adequate")
	}
	if !(&Result{Text: strings.Repeat("a", 51)}).Adequate() {
		t.Error("51 chars should be adequate")
	}
	var nilRes *Result
	if nilRes.Adequate() {
		t.Error("nil result should not be adequate")
	}
}
