package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gradsift/gradsift/app/analysis"
	"github.com/gradsift/gradsift/app/database"
	"github.com/gradsift/gradsift/app/ingest"
)

func NewHandler(runner PullRunner, analysisService AnalysisProvider, gate GateStatus,
	applicantRepo database.ApplicantRepository, defaults ingest.Options) *Handler {
	return &Handler{
		runner:          runner,
		analysisService: analysisService,
		gate:            gate,
		applicantRepo:   applicantRepo,
		defaults:        defaults,
	}
}

// pullRequest carries optional overrides for the configured pull defaults.
type pullRequest struct {
	StartPage int `json:"start_page"`
	Pages     int `json:"pages"`
	DelayMs   int `json:"delay_ms"`
}

func (h *Handler) GetAnalysis(c *gin.Context) {
	snapshot := h.analysisService.Snapshot()
	if snapshot == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analysis has not been computed yet"})
		return
	}

	c.JSON(http.StatusOK, h.buildAnalysisResponse(snapshot))
}

func (h *Handler) buildAnalysisResponse(snapshot *analysis.Snapshot) gin.H {
	universities := make([]gin.H, 0, len(snapshot.TopUniversities))
	for _, entry := range snapshot.TopUniversities {
		universities = append(universities, gin.H{
			"university":      entry.University,
			"applications":    entry.Applications,
			"acceptances":     entry.Acceptances,
			"acceptance_rate": entry.AcceptanceRate,
		})
	}

	degrees := make([]gin.H, 0, len(snapshot.DegreeStats))
	for _, entry := range snapshot.DegreeStats {
		degrees = append(degrees, gin.H{
			"degree":          entry.Degree,
			"applications":    entry.Applications,
			"average_gpa":     entry.AverageGPA,
			"acceptance_rate": entry.AcceptanceRate,
		})
	}

	return gin.H{
		"generated_at":          snapshot.GeneratedAt.Format(time.RFC3339),
		"term":                  snapshot.Term,
		"total_entries":         snapshot.TotalEntries,
		"term_entries":          snapshot.TermEntries,
		"international_percent": snapshot.InternationalPercent,
		"average_scores": gin.H{
			"gpa":    snapshot.AverageScores.GPA,
			"gre":    snapshot.AverageScores.GRE,
			"gre_v":  snapshot.AverageScores.GREVerbal,
			"gre_aw": snapshot.AverageScores.GREAW,
		},
		"american_average_gpa": snapshot.AmericanAverageGPA,
		"acceptance_rate":      snapshot.AcceptanceRate,
		"accepted_average_gpa": snapshot.AcceptedAverageGPA,
		"top_universities":     universities,
		"degree_stats":         degrees,
		"is_running":           h.gate.Status().State == ingest.StateRunning,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.applicantRepo.GetApplicantCount(); err == nil {
		health["applicants"] = count
	}

	if snapshot := h.analysisService.Snapshot(); snapshot != nil {
		health["analysis_generated_at"] = snapshot.GeneratedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

// PullData starts a background pull. A pull or refresh already holding the
// gate yields an immediate 409; the caller polls scrape-status for progress.
func (h *Handler) PullData(c *gin.Context) {
	opts := h.defaults

	if c.Request.ContentLength > 0 {
		var req pullRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid request body"})
			return
		}

		if req.StartPage > 0 {
			opts.StartPage = req.StartPage
		}
		if req.Pages > 0 {
			opts.Pages = req.Pages
		}
		if req.DelayMs > 0 {
			opts.Delay = time.Duration(req.DelayMs) * time.Millisecond
		}
	}

	if err := h.runner.Start(opts); err != nil {
		if errors.Is(err, ingest.ErrBusy) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "busy": true})
			return
		}

		slog.Error("Failed to start data pull", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to start data pull"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"message":    "Data pull started",
		"start_page": opts.StartPage,
		"pages":      opts.Pages,
	})
}

func (h *Handler) UpdateAnalysis(c *gin.Context) {
	if err := h.analysisService.Refresh(); err != nil {
		if errors.Is(err, ingest.ErrBusy) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "busy": true})
			return
		}

		slog.Error("Failed to refresh analysis", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to refresh analysis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Analysis updated"})
}

func (h *Handler) GetScrapeStatus(c *gin.Context) {
	status := h.gate.Status()

	c.JSON(http.StatusOK, gin.H{
		"is_running": status.State == ingest.StateRunning,
		"operation":  status.Operation,
		"message":    status.Message,
	})
}
