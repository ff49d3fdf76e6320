package api

import (
	"net/http"
	"strconv"

	"soultrack/followup/internal/models/dtos"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// listFilter reads ?status=&limit=&offset= from the query string.
func listFilter(r *http.Request) dtos.ListFilter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return dtos.ListFilter{
		Status: q.Get("status"),
		Limit:  limit,
		Offset: offset,
	}
}
