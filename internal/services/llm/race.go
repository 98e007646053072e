package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rising-ai-tgbot-go/internal/models"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

// RaceResult reports which backend won and how long it took.
type RaceResult struct {
	Reply    string
	Provider string
	Elapsed  time.Duration
}

// Race runs the same completion on every client concurrently and
// returns the first successful reply, cancelling the rest. It fails
// only after every client has failed.
func Race(ctx context.Context, clients []Client, messages []models.Message, maxTokens int, temperature float64) (*RaceResult, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		provider string
		reply    string
		err      error
		elapsed  time.Duration
	}

	results := make(chan outcome, len(clients))
	var wg sync.WaitGroup
	start := time.Now()

	for _, client := range clients {
		wg.Add(1)
		go func(c Client) {
			defer wg.Done()
			reply, err := c.Complete(raceCtx, messages, maxTokens, temperature)
			results <- outcome{
				provider: c.Name(),
				reply:    reply,
				err:      err,
				elapsed:  time.Since(start),
			}
		}(client)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var failures []string
	for out := range results {
		if out.err == nil {
			cancel() // losers stop spending tokens
			logger.WithFields(map[string]interface{}{
				"provider": out.provider,
				"elapsed":  out.elapsed.String(),
			}).Info("provider won the generation race")
			// Drain so the goroutines sending on results can exit.
			go func() {
				for range results {
				}
			}()
			return &RaceResult{
				Reply:    out.reply,
				Provider: out.provider,
				Elapsed:  out.elapsed,
			}, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", out.provider, out.err))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("all providers failed: %s", strings.Join(failures, "; "))
}
