package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rising-ai-tgbot-go/internal/models"
)

type fakeClient struct {
	name      string
	reply     string
	err       error
	delay     time.Duration
	cancelled atomic.Bool
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Complete(ctx context.Context, _ []models.Message, _ int, _ float64) (string, error) {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		f.cancelled.Store(true)
		return "", ctx.Err()
	}
	return f.reply, f.err
}

var msgs = []models.Message{{Role: models.RoleUser, Content: "hi"}}

func TestRaceFastestWins(t *testing.T) {
	fast := &fakeClient{name: "fast", reply: "fast answer", delay: 10 * time.Millisecond}
	slow := &fakeClient{name: "slow", reply: "slow answer", delay: 2 * time.Second}

	res, err := Race(context.Background(), []Client{slow, fast}, msgs, 100, 0.6)
	if err != nil {
		t.Fatalf("race failed: %v", err)
	}
	if res.Provider != "fast" || res.Reply != "fast answer" {
		t.Fatalf("wrong winner: %+v", res)
	}

	// The slow backend must have been cancelled, not left running.
	deadline := time.Now().Add(time.Second)
	for !slow.cancelled.Load() {
		if time.Now().After(deadline) {
			t.Fatal("slow backend was not cancelled after the race was won")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRaceSlowSuccessBeatsFastFailure(t *testing.T) {
	failing := &fakeClient{name: "failing", err: errors.New("boom"), delay: time.Millisecond}
	slow := &fakeClient{name: "slow", reply: "eventually", delay: 50 * time.Millisecond}

	res, err := Race(context.Background(), []Client{failing, slow}, msgs, 100, 0.6)
	if err != nil {
		t.Fatalf("race failed: %v", err)
	}
	if res.Provider != "slow" {
		t.Fatalf("expected slow to win, got %s", res.Provider)
	}
}

func TestRaceAllFailNamesEveryProvider(t *testing.T) {
	a := &fakeClient{name: "alpha", err: errors.New("a down"), delay: time.Millisecond}
	b := &fakeClient{name: "beta", err: errors.New("b down"), delay: time.Millisecond}

	_, err := Race(context.Background(), []Client{a, b}, msgs, 100, 0.6)
	if err == nil {
		t.Fatal("expected error when every provider fails")
	}
	for _, name := range []string{"alpha", "beta"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("failure message missing provider %q: %v", name, err)
		}
	}
}

func TestRaceNoClients(t *testing.T) {
	if _, err := Race(context.Background(), nil, msgs, 100, 0.6); err == nil {
		t.Fatal("expected error for empty client list")
	}
}

func TestRaceParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := &fakeClient{name: "slow", reply: "late", delay: 5 * time.Second}

	done := make(chan error, 1)
	go func() {
		_, err := Race(ctx, []Client{slow}, msgs, 100, 0.6)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected cancellation error")
		}
	case <-time.After(time.Second):
		t.Fatal("race did not return after parent cancellation")
	}
}
