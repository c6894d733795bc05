package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dev-shimada/regscan/internal/session"
	"github.com/dev-shimada/regscan/internal/source"
)

type Fetcher interface {
	Fetch(ctx context.Context, location string) (source.Upload, error)
}

// Pool loads uploads concurrently, one session per location.
type Pool struct {
	fetcher   Fetcher
	numWorker int
	rate      int
}

func NewPool(fetcher Fetcher, numWorker, rate int) *Pool {
	if numWorker < 1 {
		numWorker = 1
	}
	return &Pool{
		fetcher:   fetcher,
		numWorker: numWorker,
		rate:      rate,
	}
}

// Run fetches and parses every location and returns the sessions in input
// order. A failed fetch is recorded on its session and does not stop the
// others. Once ctx is done the remaining sessions fail with ctx.Err().
func (p *Pool) Run(ctx context.Context, locations []string) []*session.Session {
	sessions := make([]*session.Session, len(locations))
	jobs := make(chan int, len(locations))
	for i, loc := range locations {
		s := session.New()
		s.Begin(loc)
		sessions[i] = s
		jobs <- i
	}
	close(jobs)

	var ticker *time.Ticker
	if p.rate > 0 {
		ticker = time.NewTicker(time.Second / time.Duration(p.rate))
		defer ticker.Stop()
	}

	var wg sync.WaitGroup
	for i := 0; i < p.numWorker; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				s := sessions[idx]
				loc := locations[idx]
				if err := ctx.Err(); err != nil {
					s.Fail(err)
					continue
				}
				if ticker != nil {
					select {
					case <-ticker.C:
					case <-ctx.Done():
						s.Fail(ctx.Err())
						continue
					}
				}
				up, err := p.fetcher.Fetch(ctx, loc)
				if err != nil {
					slog.Error("load failed", "location", loc, "error", err)
					s.Fail(err)
					continue
				}
				table := s.Load(up.Name, up.Text)
				slog.Info("upload loaded", "session", s.ID, "file", up.Name, "records", table.Len())
			}
		}()
	}
	wg.Wait()

	return sessions
}
