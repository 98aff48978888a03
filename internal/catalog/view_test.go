package catalog

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/idilsaglam/taskdeck/internal/model"
)

type stubSource struct {
	charactersFn func(ctx context.Context) ([]model.Character, error)
}

func (s *stubSource) Characters(ctx context.Context) ([]model.Character, error) {
	if s.charactersFn == nil {
		return nil, errors.New("unexpected Characters call")
	}
	return s.charactersFn(ctx)
}

func record(v *View) *[]Phase {
	var phases []Phase
	v.Subscribe(func(s State) { phases = append(phases, s.Phase) })
	return &phases
}

func TestViewLoadsTwentyItems(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, pageJSON(20))
	v := NewView(New(srv.URL, srv.Client()))
	if v.State().Phase != Idle {
		t.Fatalf("new view should be idle, got %v", v.State().Phase)
	}
	phases := record(v)

	final := v.Load(context.Background())
	if final.Phase != Loaded || len(final.Items) != 20 {
		t.Fatalf("final state = %v with %d items", final.Phase, len(final.Items))
	}
	if !reflect.DeepEqual(*phases, []Phase{Loading, Loaded}) {
		t.Fatalf("transitions = %v", *phases)
	}
	if got := v.State(); got.Phase != Loaded || len(got.Items) != 20 {
		t.Fatalf("State() = %v", got.Phase)
	}
}

func TestViewMalformedResponseFails(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"info": [`)
	v := NewView(New(srv.URL, srv.Client()))
	phases := record(v)

	final := v.Load(context.Background())
	if final.Phase != Failed || final.Err == "" {
		t.Fatalf("expected Failed with message, got %#v", final)
	}
	if final.Items != nil {
		t.Fatalf("failed state carries items: %#v", final.Items)
	}
	if !reflect.DeepEqual(*phases, []Phase{Loading, Failed}) {
		t.Fatalf("transitions = %v", *phases)
	}
}

func TestViewEmptyResultIsLoaded(t *testing.T) {
	v := NewView(&stubSource{charactersFn: func(context.Context) ([]model.Character, error) {
		return nil, nil
	}})
	final := v.Load(context.Background())
	if final.Phase != Loaded {
		t.Fatalf("expected Loaded, got %v", final.Phase)
	}
	if final.Items == nil || len(final.Items) != 0 {
		t.Fatalf("expected empty items, got %#v", final.Items)
	}
}

func TestViewReloadAfterFailure(t *testing.T) {
	calls := 0
	v := NewView(&stubSource{charactersFn: func(context.Context) ([]model.Character, error) {
		calls++
		if calls == 1 {
			return nil, &NetworkError{Op: "transport", URL: "x", Err: errors.New("offline")}
		}
		return []model.Character{{ID: 1, Name: "Rick Sanchez"}}, nil
	}})
	phases := record(v)

	if s := v.Load(context.Background()); s.Phase != Failed || s.Err != "catalog: transport x: offline" {
		t.Fatalf("first load = %#v", s)
	}
	if s := v.Load(context.Background()); s.Phase != Loaded || len(s.Items) != 1 {
		t.Fatalf("second load = %#v", s)
	}
	want := []Phase{Loading, Failed, Loading, Loaded}
	if !reflect.DeepEqual(*phases, want) {
		t.Fatalf("transitions = %v, want %v", *phases, want)
	}
}

func TestViewStateDuringLoad(t *testing.T) {
	var v *View
	var during Phase
	v = NewView(&stubSource{charactersFn: func(context.Context) ([]model.Character, error) {
		during = v.State().Phase
		return []model.Character{}, nil
	}})
	v.Load(context.Background())
	if during != Loading {
		t.Fatalf("state during fetch = %v", during)
	}
}
