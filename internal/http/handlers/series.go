package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/http/response"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
	"github.com/Brooks-Cole/brooks-books/internal/services"
)

type SeriesHandler struct {
	log    *logger.Logger
	series services.SeriesService
}

func NewSeriesHandler(series services.SeriesService, baseLog *logger.Logger) *SeriesHandler {
	return &SeriesHandler{
		log:    baseLog.With("handler", "SeriesHandler"),
		series: series,
	}
}

type seriesRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Author      string                 `json:"author"`
	Genres      []string               `json:"genres"`
	Books       []domain.SeriesBookRef `json:"books"`
}

func (h *SeriesHandler) List(c *gin.Context) {
	series, err := h.series.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to list series"))
		return
	}
	response.RespondOK(c, series)
}

func (h *SeriesHandler) Get(c *gin.Context) {
	series, err := h.series.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	response.RespondOK(c, series)
}

func (h *SeriesHandler) Upsert(c *gin.Context) {
	var req seriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	series := &domain.Series{
		Name:        req.Name,
		Description: req.Description,
		Author:      req.Author,
		Genres:      datatypes.NewJSONSlice(req.Genres),
		Books:       datatypes.NewJSONSlice(req.Books),
	}
	saved, err := h.series.Upsert(c.Request.Context(), series)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "upsert_failed", err)
		return
	}
	response.RespondOK(c, saved)
}
