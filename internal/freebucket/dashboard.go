package freebucket

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"freebucket/internal/storage"
	"freebucket/internal/ui"
)

// handleRoot serves GET /. S3 clients signing their requests get the XML
// bucket listing; everyone else (browsers) gets the dashboard.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Authorization"), "AWS") {
		s.handleS3ListBuckets(w, r)
		return
	}
	s.handleDashboard(w, r)
}

// handleDashboard renders the HTML storage overview.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Stats()
	buckets := s.engine.ListBuckets()

	uiBuckets := make([]ui.Bucket, 0, len(buckets))
	for _, b := range buckets {
		uiBuckets = append(uiBuckets, ui.Bucket{
			Name:        b.Name,
			Region:      b.Region,
			CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
			ObjectCount: b.ObjectCount,
			SizeHuman:   storage.HumanSize(b.TotalSize),
		})
	}

	page := ui.DashboardPage(ui.Stats{
		TotalBuckets:   stats.TotalBuckets,
		TotalObjects:   stats.TotalObjects,
		TotalSizeHuman: stats.TotalSizeHuman,
		APIAddr:        "http://" + s.cfg.Addr() + "/api",
	}, uiBuckets)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("Render dashboard", "err", err)
	}
}
