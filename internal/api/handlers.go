package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"NewsAnalyzer/internal/domain"
)

type waterBatchRequest struct {
	Items []domain.WaterRequest `json:"items" binding:"required,min=1,dive"`
}

type waterBatchResponse struct {
	Results []domain.WaterReport `json:"results"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req domain.AnalyzeRequest
	if !bind(c, &req) {
		return
	}
	if req.RequestID == nil {
		if id := requestID(c); id != "" {
			req.RequestID = &id
		}
	}

	envelope, err := h.svc.Analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope)
}

func (h *Handler) water(c *gin.Context) {
	var req domain.WaterRequest
	if !bind(c, &req) {
		return
	}

	report, err := h.svc.Water.Analyze(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) waterBatch(c *gin.Context) {
	var req waterBatchRequest
	if !bind(c, &req) {
		return
	}

	reports, err := h.svc.Water.AnalyzeBatch(c.Request.Context(), req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, waterBatchResponse{Results: reports})
}

func (h *Handler) clickbait(c *gin.Context) {
	var req domain.ClickbaitRequest
	if !bind(c, &req) {
		return
	}

	report, err := h.svc.Clickbait.Analyze(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return false
	}
	return true
}
