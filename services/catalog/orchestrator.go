package catalog

import (
	"context"
	"sync"

	"github.com/flixplore-io/web-api/services/tmdb"
)

type DetailState int

const (
	StateIdle DetailState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s DetailState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type DetailFetcher interface {
	FetchDetail(ctx context.Context, kind tmdb.ContentType, id int) (*DetailView, error)
}

// Orchestrator tracks a single in-flight detail fetch. Each Load bumps
// the generation counter; a fetch started under an older generation
// discards its result instead of committing, so a slow response can
// never clobber a newer request.
type Orchestrator struct {
	fetcher DetailFetcher

	mux   sync.Mutex
	gen   uint64
	state DetailState
	view  *DetailView
	err   error
}

func NewOrchestrator(fetcher DetailFetcher) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		state:   StateIdle,
	}
}

func (o *Orchestrator) Load(ctx context.Context, kind tmdb.ContentType, id int) {
	o.mux.Lock()
	o.gen++
	gen := o.gen
	o.state = StateLoading
	o.view = nil
	o.err = nil
	o.mux.Unlock()
	go func() {
		view, err := o.fetcher.FetchDetail(ctx, kind, id)
		o.mux.Lock()
		defer o.mux.Unlock()
		if gen != o.gen {
			// superseded by a newer Load
			return
		}
		if err != nil {
			o.state = StateFailed
			o.err = err
			return
		}
		o.state = StateReady
		o.view = view
	}()
}

func (o *Orchestrator) State() DetailState {
	o.mux.Lock()
	defer o.mux.Unlock()
	return o.state
}

func (o *Orchestrator) View() (*DetailView, error) {
	o.mux.Lock()
	defer o.mux.Unlock()
	return o.view, o.err
}
