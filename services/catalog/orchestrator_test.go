package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/flixplore-io/web-api/services/tmdb"
)

type gatedFetcher struct {
	gates map[int]chan *DetailView
}

func (f *gatedFetcher) FetchDetail(ctx context.Context, kind tmdb.ContentType, id int) (*DetailView, error) {
	view := <-f.gates[id]
	if view == nil {
		return nil, errors.New("fetch failed")
	}
	return view, nil
}

func waitForState(t *testing.T, o *Orchestrator, want DetailState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if o.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state never became %v, still %v", want, o.State())
}

func TestOrchestratorLifecycle(t *testing.T) {
	f := &gatedFetcher{gates: map[int]chan *DetailView{
		1: make(chan *DetailView, 1),
	}}
	o := NewOrchestrator(f)
	if o.State() != StateIdle {
		t.Fatalf("got state %v, want %v", o.State(), StateIdle)
	}
	o.Load(context.Background(), tmdb.ContentTypeMovie, 1)
	if o.State() != StateLoading {
		t.Fatalf("got state %v, want %v", o.State(), StateLoading)
	}
	f.gates[1] <- &DetailView{ID: 1}
	waitForState(t, o, StateReady)
	view, err := o.View()
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if view.ID != 1 {
		t.Errorf("got view id %d, want 1", view.ID)
	}
}

func TestOrchestratorFailure(t *testing.T) {
	f := &gatedFetcher{gates: map[int]chan *DetailView{
		1: make(chan *DetailView, 1),
	}}
	o := NewOrchestrator(f)
	o.Load(context.Background(), tmdb.ContentTypeMovie, 1)
	f.gates[1] <- nil
	waitForState(t, o, StateFailed)
	view, err := o.View()
	if err == nil {
		t.Fatal("expected error")
	}
	if view != nil {
		t.Errorf("got view %+v, want nil", view)
	}
}

func TestOrchestratorDiscardsSupersededResult(t *testing.T) {
	f := &gatedFetcher{gates: map[int]chan *DetailView{
		1: make(chan *DetailView, 1),
		2: make(chan *DetailView, 1),
	}}
	o := NewOrchestrator(f)
	o.Load(context.Background(), tmdb.ContentTypeMovie, 1)
	o.Load(context.Background(), tmdb.ContentTypeMovie, 2)
	f.gates[2] <- &DetailView{ID: 2}
	waitForState(t, o, StateReady)

	// the slow first fetch completes after the second one; its result
	// must be discarded
	f.gates[1] <- &DetailView{ID: 1}
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		view, err := o.View()
		if err != nil {
			t.Fatalf("got error: %v", err)
		}
		if view == nil || view.ID != 2 {
			t.Fatalf("stale result overwrote the newer one: %+v", view)
		}
		time.Sleep(time.Millisecond)
	}
}
