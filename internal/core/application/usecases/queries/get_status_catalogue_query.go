package queries

import "ordermgmt/internal/core/domain/model/order"

// StatusInfo describes one node of the status graph.
type StatusInfo struct {
	Status      order.Status
	Description string
	Terminal    bool
	Next        []order.Status
}

// GetStatusCatalogueQueryHandler lists every status in graph order. It needs no
// storage.
type GetStatusCatalogueQueryHandler struct{}

// NewGetStatusCatalogueQueryHandler creates the handler.
//
// Example:
//
//	for _, info := range NewGetStatusCatalogueQueryHandler().Handle() {
//	    fmt.Println(info.Status, info.Terminal, info.Next)
//	}
func NewGetStatusCatalogueQueryHandler() GetStatusCatalogueQueryHandler {
	return GetStatusCatalogueQueryHandler{}
}

// Handle returns a fresh slice on every call; callers may modify it.
func (GetStatusCatalogueQueryHandler) Handle() []StatusInfo {
	statuses := order.AllStatuses()
	out := make([]StatusInfo, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, StatusInfo{
			Status:      s,
			Description: s.Description(),
			Terminal:    order.IsTerminal(s),
			Next:        order.NextStates(s),
		})
	}
	return out
}
