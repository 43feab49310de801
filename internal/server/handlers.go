package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/WSG23/overlayreview/internal/decision"
	"github.com/WSG23/overlayreview/internal/filter"
	"github.com/WSG23/overlayreview/internal/logger"
	"github.com/WSG23/overlayreview/internal/output"
	"github.com/WSG23/overlayreview/internal/review"
	"github.com/WSG23/overlayreview/internal/types"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Source lists the raw suggestions of a project.
type Source interface {
	ListSuggestions(ctx context.Context, projectID string) ([]types.Suggestion, error)
}

// Defaults are the filter and gate settings used when a request does not
// override them.
type Defaults struct {
	Statuses          []types.Status
	Severities        []types.Severity
	UnitSpacePrefixes []string
	Gate              filter.ExportGate
}

type ReviewHandler struct {
	source      Source
	decider     decision.Decider
	defaults    Defaults
	concurrency int
	log         *logger.Logger
}

// NewReviewHandler wires a handler. A nil decider disables the decisions endpoint.
func NewReviewHandler(source Source, decider decision.Decider, defaults Defaults, concurrency int, log *logger.Logger) *ReviewHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReviewHandler{
		source:      source,
		decider:     decider,
		defaults:    defaults,
		concurrency: concurrency,
		log:         log,
	}
}

// reportContentTypes maps the non-JSON report formats to their content type.
var reportContentTypes = map[string]string{
	"markdown": "text/markdown; charset=utf-8",
	"md":       "text/markdown; charset=utf-8",
	"html":     "text/html; charset=utf-8",
	"terminal": "text/plain; charset=utf-8",
	"text":     "text/plain; charset=utf-8",
}

// GET /api/projects/:projectID/review?status=&severity=&format=
func (h *ReviewHandler) Review(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	contentType, rendered := reportContentTypes[format]
	if !rendered && format != "" && format != "json" {
		RespondError(c, http.StatusBadRequest, "invalid_format",
			fmt.Errorf("unknown format %q (want json, markdown, html or terminal)", format))
		return
	}

	report, ok := h.build(c, c.QueryArray("status"), c.QueryArray("severity"))
	if !ok {
		return
	}
	if !rendered {
		RespondOK(c, report)
		return
	}

	var buf bytes.Buffer
	if err := output.New(format, true).Format(&buf, report); err != nil {
		RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// GET /api/projects/:projectID/export-gate?status=&severity=
func (h *ReviewHandler) ExportGate(c *gin.Context) {
	report, ok := h.build(c, c.QueryArray("status"), c.QueryArray("severity"))
	if !ok {
		return
	}
	RespondOK(c, report.Export)
}

type decideRequest struct {
	Decision string   `json:"decision" binding:"required"`
	Status   []string `json:"status"`
	Severity []string `json:"severity"`
}

// POST /api/projects/:projectID/decisions
func (h *ReviewHandler) Decide(c *gin.Context) {
	if h.decider == nil {
		RespondError(c, http.StatusNotImplemented, "decisions_disabled", errors.New("no decision backend configured"))
		return
	}

	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	d, err := types.ParseDecision(req.Decision)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_decision", err)
		return
	}

	report, ok := h.build(c, req.Status, req.Severity)
	if !ok {
		return
	}

	runner := decision.NewRunner(h.decider, h.concurrency, h.log)
	sum, err := runner.Run(c.Request.Context(), report.Project, d, report.DecisionTargets)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "decisions_interrupted", err)
		return
	}
	RespondOK(c, sum)
}

// build fetches the project's suggestions and runs the pipeline under the
// requested filters. It writes the error response itself and reports false
// when the request cannot proceed.
func (h *ReviewHandler) build(c *gin.Context, status, severity []string) (*review.Report, bool) {
	projectID := strings.TrimSpace(c.Param("projectID"))
	if projectID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_project", errors.New("project id is required"))
		return nil, false
	}

	statusFilter, severityFilter, err := h.filters(status, severity)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return nil, false
	}

	suggestions, err := h.source.ListSuggestions(c.Request.Context(), projectID)
	if err != nil {
		h.log.Warn("listing suggestions failed", "project", projectID, "error", err)
		RespondError(c, http.StatusBadGateway, "source_failed", err)
		return nil, false
	}

	return review.Build(suggestions, review.Options{
		Project:           projectID,
		UnitSpacePrefixes: h.defaults.UnitSpacePrefixes,
		Status:            statusFilter,
		Severity:          severityFilter,
		Gate:              h.defaults.Gate,
	}), true
}

func (h *ReviewHandler) filters(status, severity []string) (*filter.StatusFilter, *filter.SeverityFilter, error) {
	sf := filter.NewStatusFilter(h.defaults.Statuses...)
	if len(status) > 0 {
		values, err := filter.ParseStatuses(status)
		if err != nil {
			return nil, nil, err
		}
		if err := sf.Set(values...); err != nil {
			return nil, nil, err
		}
	}

	vf := filter.NewSeverityFilter(h.defaults.Severities...)
	if len(severity) > 0 {
		values, err := filter.ParseSeverities(severity)
		if err != nil {
			return nil, nil, err
		}
		if err := vf.Set(values...); err != nil {
			return nil, nil, err
		}
	}
	return sf, vf, nil
}
