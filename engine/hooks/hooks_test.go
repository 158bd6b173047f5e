package hooks

import (
	"errors"
	"testing"

	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// fakeContext implements only what these tests exercise.
type fakeContext struct {
	Context
	room  *types.Room
	lines []string
}

func (f *fakeContext) Println(text string)       { f.lines = append(f.lines, text) }
func (f *fakeContext) CurrentRoom() *types.Room { return f.room }

func TestRegistry_InvokeEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.Invoke("", &fakeContext{}, Target{}); err != nil {
		t.Errorf("empty name should be a no-op, got %v", err)
	}
}

func TestRegistry_InvokeMissing(t *testing.T) {
	r := NewRegistry()
	err := r.Invoke("lamp.onUse", &fakeContext{}, Target{Hook: OnUse})
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_CancelPassesThrough(t *testing.T) {
	r := NewRegistry()
	r.Register("idol.onTake", func(Context, Target) error { return ErrCancel })
	err := r.Invoke("idol.onTake", &fakeContext{}, Target{Hook: OnTake})
	if err != ErrCancel {
		t.Errorf("expected bare ErrCancel, got %v", err)
	}
}

func TestRegistry_WrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	r.Register("door.onUse", func(Context, Target) error { return boom })
	err := r.Invoke("door.onUse", &fakeContext{}, Target{Hook: OnUse})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if err.Error() != `onUse handler "door.onUse": boom` {
		t.Errorf("error text = %q", err.Error())
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("b", Say("b"))
	r.Register("a", Say("a"))
	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names = %v", names)
	}
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.OnClose(func() { order = append(order, "first") })
	r.OnClose(func() { order = append(order, "second") })

	r.Close()
	r.Close()
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("close order = %v", order)
	}
}

func TestByRoom(t *testing.T) {
	h := ByRoom(map[string]Handler{
		"foyer":   Say("splash"),
		"chamber": Say("clink"),
	}, Say("nothing"))

	tests := []struct {
		room string
		want string
	}{
		{"foyer", "splash"},
		{"chamber", "clink"},
		{"attic", "nothing"},
	}
	for _, tt := range tests {
		ctx := &fakeContext{room: &types.Room{ID: tt.room}}
		if err := h(ctx, Target{}); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if len(ctx.lines) != 1 || ctx.lines[0] != tt.want {
			t.Errorf("room %s: got %v, want %q", tt.room, ctx.lines, tt.want)
		}
	}
}

func TestByRoom_NilFallback(t *testing.T) {
	h := ByRoom(map[string]Handler{}, nil)
	ctx := &fakeContext{room: &types.Room{ID: "x"}}
	if err := h(ctx, Target{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(ctx.lines) != 0 {
		t.Errorf("unexpected output: %v", ctx.lines)
	}
}
