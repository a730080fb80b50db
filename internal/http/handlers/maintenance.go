package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brooks-Cole/brooks-books/internal/http/response"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
	"github.com/Brooks-Cole/brooks-books/internal/services"
)

type MaintenanceHandler struct {
	log   *logger.Logger
	maint services.MaintenanceService
	sync  services.GraphSyncService
}

func NewMaintenanceHandler(maint services.MaintenanceService, sync services.GraphSyncService, baseLog *logger.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		log:   baseLog.With("handler", "MaintenanceHandler"),
		maint: maint,
		sync:  sync,
	}
}

func (h *MaintenanceHandler) SyncGraph(c *gin.Context) {
	if _, err := h.sync.SyncAll(c.Request.Context()); err != nil {
		h.log.Error("graph sync failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to sync graph database"))
		return
	}
	response.RespondOK(c, gin.H{"message": "Graph sync completed successfully"})
}

func (h *MaintenanceHandler) GraphState(c *gin.Context) {
	counts, err := h.maint.Stats(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to check graph state"))
		return
	}
	response.RespondOK(c, gin.H{
		"books":             counts.Books,
		"authors":           counts.Authors,
		"genres":            counts.Genres,
		"tags":              counts.Tags,
		"series":            counts.Series,
		"relationships":     counts.Relationships,
		"relationshipKinds": counts.RelationshipKinds,
	})
}

func (h *MaintenanceHandler) CleanupTags(c *gin.Context) {
	removed, err := h.maint.CleanupOrphanedTags(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	response.RespondOK(c, gin.H{
		"message":     "Orphaned tag cleanup completed",
		"removedTags": removed,
	})
}

func (h *MaintenanceHandler) RelinkTags(c *gin.Context) {
	report, err := h.maint.RelinkTags(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	response.RespondOK(c, gin.H{
		"message": "Tag relink completed",
		"report":  report,
	})
}
