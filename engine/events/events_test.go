package events

import (
	"errors"
	"testing"

	"github.com/nathoo/gamedisk/types"
)

func TestDispatch_MatchesEventType(t *testing.T) {
	listeners := map[string][]string{
		"item_taken":   {"cheer", "count"},
		"room_entered": {"welcome"},
	}
	var calls []string
	err := Dispatch([]types.Event{
		{Type: "item_taken", Data: map[string]any{"item": "key"}},
	}, listeners, func(name string, ev types.Event) error {
		calls = append(calls, name+":"+ev.Data["item"].(string))
		return nil
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(calls) != 2 || calls[0] != "cheer:key" || calls[1] != "count:key" {
		t.Errorf("calls = %v", calls)
	}
}

func TestDispatch_NoListeners(t *testing.T) {
	called := false
	err := Dispatch([]types.Event{{Type: "flag_changed"}}, nil, func(string, types.Event) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Errorf("err=%v called=%v", err, called)
	}
}

func TestDispatch_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	listeners := map[string][]string{"a": {"first", "second"}}
	var calls []string
	err := Dispatch([]types.Event{{Type: "a"}}, listeners, func(name string, _ types.Event) error {
		calls = append(calls, name)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("calls = %v", calls)
	}
}

func TestListen_Dedupes(t *testing.T) {
	d := &types.Disk{}
	Listen(d, "room_entered", "welcome")
	Listen(d, "room_entered", "welcome")
	Listen(d, "room_entered", "count")
	if got := d.Listeners["room_entered"]; len(got) != 2 {
		t.Errorf("listeners = %v", got)
	}
}
