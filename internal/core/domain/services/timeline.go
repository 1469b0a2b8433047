package services

import (
	"slices"

	"ordermgmt/internal/core/domain/model/history"
)

// Visibility selects which events a viewer may see.
type Visibility int

const (
	// PublicOnly hides internal notes.
	PublicOnly Visibility = iota
	// IncludeInternal shows every event.
	IncludeInternal
)

// BuildTimeline returns the events ascending by (occurredAt, sequence) with
// internal notes removed unless the viewer may see them. The input slice is
// not modified.
//
// Business rules:
//   - status changes are always visible
//   - public notes are always visible
//   - internal notes need IncludeInternal
//   - nil entries are dropped
//
// Example:
//
//	events, err := historyRepo.ListByOrder(ctx, orderID)
//	if err != nil {
//	    return nil, err
//	}
//	return services.BuildTimeline(events, services.PublicOnly), nil
func BuildTimeline(events []*history.Event, visibility Visibility) []*history.Event {
	out := make([]*history.Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if e.Kind() == history.KindNote && e.IsInternal() && visibility != IncludeInternal {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b *history.Event) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})
	return out
}
