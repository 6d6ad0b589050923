// Package httpapi exposes the report engine as a small JSON API.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyreport/internal/engine"
	"github.com/abhisek/studyreport/internal/learning"
	"github.com/abhisek/studyreport/internal/logger"
	"github.com/abhisek/studyreport/internal/report"
)

// Service is the part of *engine.Engine the API needs.
type Service interface {
	GenerateReport(ctx context.Context, req engine.GenerateRequest) (*report.Report, error)
	CategoryReport(ctx context.Context, userID, category string) (*engine.CategoryView, error)
	Progress(ctx context.Context, userID string) (*learning.ProgressSummary, error)
	DeleteCategory(ctx context.Context, userID, category string) error
}

// ReportHandler serves the report endpoints.
type ReportHandler struct {
	log *logger.Logger
	svc Service
}

// NewReportHandler returns a handler backed by svc.
func NewReportHandler(log *logger.Logger, svc Service) *ReportHandler {
	return &ReportHandler{log: logger.OrNop(log).With("handler", "ReportHandler"), svc: svc}
}

type generateBody struct {
	Category     string `json:"category"`
	Score        int    `json:"score"`
	Total        int    `json:"total"`
	WrongIndices []int  `json:"wrongIndices"`
	Sequence     int    `json:"testCount"`
}

// GenerateResponse is returned by POST .../reports. Persisted is false when
// the report was computed but could not be stored.
type GenerateResponse struct {
	Report    *report.Report `json:"report"`
	Persisted bool           `json:"persisted"`
	Warning   string         `json:"warning,omitempty"`
}

// POST /v1/users/:userID/reports
func (h *ReportHandler) Generate(c *gin.Context) {
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, APIError{Message: "malformed JSON body: " + err.Error(), Code: codeInvalid})
		return
	}

	rep, err := h.svc.GenerateReport(c.Request.Context(), engine.GenerateRequest{
		UserID:       c.Param("userID"),
		Category:     body.Category,
		Score:        body.Score,
		Total:        body.Total,
		WrongIndices: body.WrongIndices,
		Sequence:     body.Sequence,
	})
	var pe *engine.PersistenceError
	if errors.As(err, &pe) && rep != nil {
		h.log.Warn("returning unpersisted report", "user_id", c.Param("userID"), "error", err)
		respondOK(c, GenerateResponse{Report: rep, Persisted: false, Warning: err.Error()})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, GenerateResponse{Report: rep, Persisted: true})
}

// GET /v1/users/:userID/categories/:category/report
func (h *ReportHandler) CategoryReport(c *gin.Context) {
	view, err := h.svc.CategoryReport(c.Request.Context(), c.Param("userID"), c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, view)
}

// GET /v1/users/:userID/progress
func (h *ReportHandler) Progress(c *gin.Context) {
	summary, err := h.svc.Progress(c.Request.Context(), c.Param("userID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, summary)
}

// DELETE /v1/users/:userID/categories/:category
func (h *ReportHandler) DeleteCategory(c *gin.Context) {
	if err := h.svc.DeleteCategory(c.Request.Context(), c.Param("userID"), c.Param("category")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(c, http.StatusBadRequest, APIError{Message: ve.Error(), Code: codeInvalid, Field: ve.Field})
	case errors.Is(err, engine.ErrDuplicateRequest):
		respondError(c, http.StatusConflict, APIError{Message: err.Error(), Code: codeDuplicate})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, APIError{Message: "internal error", Code: codeInternal})
	}
}

// HealthCheck reports liveness and, when a pinger is set, storage reachability.
func HealthCheck(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				c.String(http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		c.String(http.StatusOK, "ok")
	}
}
