package inbound

import "github.com/shandysiswandi/waitlist/internal/pkg/router"

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/waitlist", end.Join)
}
