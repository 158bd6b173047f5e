// Package events implements single-pass event listener dispatch.
// Listeners may emit further events, but those are not dispatched again.
package events

import (
	"github.com/nathoo/gamedisk/types"
)

// Invoker runs the named listener for an event.
type Invoker func(handler string, ev types.Event) error

// Dispatch runs every listener registered for each event's type, in event
// order and then registration order. The first error stops dispatch.
func Dispatch(evs []types.Event, listeners map[string][]string, invoke Invoker) error {
	for _, ev := range evs {
		for _, name := range listeners[ev.Type] {
			if err := invoke(name, ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Listen registers handler for an event type. Registering the same handler
// twice for one type is a no-op.
func Listen(d *types.Disk, eventType, handler string) {
	if d.Listeners == nil {
		d.Listeners = map[string][]string{}
	}
	for _, h := range d.Listeners[eventType] {
		if h == handler {
			return
		}
	}
	d.Listeners[eventType] = append(d.Listeners[eventType], handler)
}
