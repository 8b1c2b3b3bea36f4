package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthStatus struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// HealthHandler reports liveness plus a database ping. A failing ping still
// answers 200 with a degraded database status so the process itself reads as
// alive.
func HealthHandler(service, version string, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "ok", Service: service, Version: version, Database: "ok"}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status.Database = "unreachable"
			}
		} else {
			status.Database = "not configured"
		}

		WriteSuccess(w, status)
	}
}
