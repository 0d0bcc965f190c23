package models

import "github.com/anime-shed/blur-inspector-go/internal/observer"

// StatsResponse is served by GET /stats
type StatsResponse struct {
	Ready         bool           `json:"ready"`
	UptimeSec     float64        `json:"uptime_sec"`
	Scoring       observer.Stats `json:"scoring"`
	Modes         []string       `json:"modes"`
	Sources       []string       `json:"sources"`
	Workers       int            `json:"workers"`
	CompletedJobs int64          `json:"completed_jobs"`
}
