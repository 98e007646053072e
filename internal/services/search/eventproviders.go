package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Both event providers read the JSON-LD blocks their public listing
// pages embed, neither needs an API key for that.
var reJSONLD = regexp.MustCompile(`(?s)<script type="application/ld\+json"[^>]*>(.*?)</script>`)

type jsonLDEvent struct {
	Type      string `json:"@type"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	URL       string `json:"url"`
	Location  struct {
		Name string `json:"name"`
	} `json:"location"`
}

func parseJSONLDEvents(page []byte, provider string) []Event {
	var events []Event
	for _, m := range reJSONLD.FindAllSubmatch(page, -1) {
		raw := m[1]
		var one jsonLDEvent
		if err := json.Unmarshal(raw, &one); err == nil && one.Type == "Event" {
			events = append(events, ldToEvent(one, provider))
			continue
		}
		var many []jsonLDEvent
		if err := json.Unmarshal(raw, &many); err == nil {
			for _, e := range many {
				if e.Type == "Event" {
					events = append(events, ldToEvent(e, provider))
				}
			}
		}
	}
	return events
}

func ldToEvent(e jsonLDEvent, provider string) Event {
	date := e.StartDate
	if t, err := time.Parse(time.RFC3339, e.StartDate); err == nil {
		date = t.Format("Jan 2, 3:04 PM")
	}
	return Event{
		Title:    strings.TrimSpace(e.Name),
		Venue:    strings.TrimSpace(e.Location.Name),
		Date:     date,
		URL:      e.URL,
		Provider: provider,
	}
}

// EventbriteProvider lists events from Eventbrite's public search page.
type EventbriteProvider struct {
	client *http.Client
}

func NewEventbriteProvider(timeout time.Duration) *EventbriteProvider {
	return &EventbriteProvider{client: newHTTPClient(timeout)}
}

func (p *EventbriteProvider) Name() string { return "eventbrite" }

func (p *EventbriteProvider) Events(ctx context.Context, location string) ([]Event, error) {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(location)), " ", "-")
	page, err := httpGet(ctx, p.client,
		"https://www.eventbrite.com/d/"+url.PathEscape(slug)+"/events/", nil)
	if err != nil {
		return nil, err
	}
	events := parseJSONLDEvents(page, p.Name())
	if len(events) == 0 {
		return nil, fmt.Errorf("no events parsed for %q", location)
	}
	return events, nil
}

// MeetupProvider lists events from Meetup's public find page.
type MeetupProvider struct {
	client *http.Client
}

func NewMeetupProvider(timeout time.Duration) *MeetupProvider {
	return &MeetupProvider{client: newHTTPClient(timeout)}
}

func (p *MeetupProvider) Name() string { return "meetup" }

func (p *MeetupProvider) Events(ctx context.Context, location string) ([]Event, error) {
	params := map[string]string{"location": location, "source": "EVENTS"}
	page, err := httpGet(ctx, p.client,
		"https://www.meetup.com/find/?"+encodeQuery(params), nil)
	if err != nil {
		return nil, err
	}
	events := parseJSONLDEvents(page, p.Name())
	if len(events) == 0 {
		return nil, fmt.Errorf("no events parsed for %q", location)
	}
	return events, nil
}
