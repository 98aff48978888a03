package catalog

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/idilsaglam/taskdeck/internal/model"
	"github.com/idilsaglam/taskdeck/internal/observe"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "idle"
}

// State is one observable step of a fetch. Items is set only when Loaded, Err
// only when Failed.
type State struct {
	Phase Phase
	Items []model.Character
	Err   string
}

// Source yields the characters to show; *Client satisfies it.
type Source interface {
	Characters(ctx context.Context) ([]model.Character, error)
}

// View tracks Idle -> Loading -> Loaded|Failed around a Source. Overlapping Load
// calls are not coalesced; callers serialize them.
type View struct {
	src Source

	mu    sync.RWMutex
	state State

	hub observe.Hub[State]
}

func NewView(src Source) *View {
	return &View{src: src}
}

// Load fetches from the source and returns the final state.
func (v *View) Load(ctx context.Context) State {
	v.set(State{Phase: Loading})

	items, err := v.src.Characters(ctx)
	if err != nil {
		log.WithError(err).Warn("catalog load failed")
		return v.set(State{Phase: Failed, Err: err.Error()})
	}
	if items == nil {
		items = []model.Character{}
	}
	return v.set(State{Phase: Loaded, Items: items})
}

func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Subscribe calls fn on every transition until cancel is called.
func (v *View) Subscribe(fn func(State)) (cancel func()) {
	return v.hub.Subscribe(fn)
}

func (v *View) set(s State) State {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
	v.hub.Publish(s)
	return s
}
