package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph"
	"github.com/Brooks-Cole/brooks-books/internal/http/middleware"
	"github.com/Brooks-Cole/brooks-books/internal/http/response"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
	"github.com/Brooks-Cole/brooks-books/internal/services"
)

type RecommendationHandler struct {
	log  *logger.Logger
	recs services.RecommendationService
	sync services.GraphSyncService
}

func NewRecommendationHandler(recs services.RecommendationService, sync services.GraphSyncService, baseLog *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		log:  baseLog.With("handler", "RecommendationHandler"),
		recs: recs,
		sync: sync,
	}
}

type bookRefDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type similarBookDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	SimilarityScore int64  `json:"similarityScore"`
}

type graphNodeDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MinAge      int    `json:"minAge,omitempty"`
	MaxAge      int    `json:"maxAge,omitempty"`
	BookCount   int    `json:"bookCount,omitempty"`
}

type graphLinkDTO struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

type graphViewDTO struct {
	Nodes []graphNodeDTO `json:"nodes"`
	Links []graphLinkDTO `json:"links"`
}

func (h *RecommendationHandler) ForUser(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	recs, err := h.recs.ForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("recommendations failed", "userId", userID, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to get recommendations"))
		return
	}
	response.RespondOK(c, recs)
}

func (h *RecommendationHandler) Similar(c *gin.Context) {
	bookID := c.Param("bookId")
	similar, err := h.recs.SimilarBooks(c.Request.Context(), bookID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	out := make([]similarBookDTO, 0, len(similar))
	for _, s := range similar {
		out = append(out, similarBookDTO{ID: s.ID, Title: s.Title, SimilarityScore: s.Score})
	}
	response.RespondOK(c, out)
}

func (h *RecommendationHandler) ByTag(c *gin.Context) {
	books, err := h.recs.BooksByTag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to find books by tag"))
		return
	}
	response.RespondOK(c, bookRefDTOs(books))
}

func (h *RecommendationHandler) SeriesBooks(c *gin.Context) {
	books, err := h.recs.SeriesBooks(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to fetch series books"))
		return
	}
	response.RespondOK(c, bookRefDTOs(books))
}

func (h *RecommendationHandler) Graph(c *gin.Context) {
	var filter graph.Filter
	if nodeType := c.Query("nodeType"); nodeType != "" {
		kind, ok := graph.ParseNodeKind(nodeType)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("unknown node type %q", nodeType))
			return
		}
		filter.Kind = kind
		filter.Value = c.Query("value")
	}
	view, err := h.recs.FullGraph(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("graph fetch failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to fetch graph data"))
		return
	}
	response.RespondOK(c, viewDTO(view))
}

type seriesUpsertRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Genres      []string     `json:"genres"`
	Books       []bookRefDTO `json:"books"`
}

func (h *RecommendationHandler) UpsertSeries(c *gin.Context) {
	var req seriesUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	up := graph.SeriesUpsert{
		Name:        req.Name,
		Description: req.Description,
		Genres:      req.Genres,
	}
	for _, b := range req.Books {
		up.Books = append(up.Books, graph.BookRef{ID: b.ID, Title: b.Title})
	}
	if err := h.recs.UpsertSeries(c.Request.Context(), up); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to update series"))
		return
	}
	response.RespondOK(c, gin.H{"message": "Series updated successfully"})
}

func (h *RecommendationHandler) Sync(c *gin.Context) {
	summary, err := h.sync.SyncAll(c.Request.Context())
	if err != nil {
		h.log.Error("graph sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to sync graph",
			"details": err.Error(),
		})
		return
	}
	response.RespondOK(c, gin.H{
		"message": "Graph sync completed successfully",
		"summary": summary,
	})
}

func bookRefDTOs(books []graph.BookRef) []bookRefDTO {
	out := make([]bookRefDTO, 0, len(books))
	for _, b := range books {
		out = append(out, bookRefDTO{ID: b.ID, Title: b.Title})
	}
	return out
}

func viewDTO(view *graph.View) graphViewDTO {
	out := graphViewDTO{
		Nodes: make([]graphNodeDTO, 0, len(view.Nodes)),
		Links: make([]graphLinkDTO, 0, len(view.Links)),
	}
	for _, n := range view.Nodes {
		dto := graphNodeDTO{
			ID:   n.ID(),
			Type: string(n.Kind),
			Name: n.Name(),
		}
		switch n.Kind {
		case graph.NodeBook:
			if n.Book != nil {
				dto.Description = n.Book.Description
				dto.MinAge = n.Book.AgeMin
				dto.MaxAge = n.Book.AgeMax
			}
		case graph.NodeSeries:
			if n.Series != nil {
				dto.Description = n.Series.Description
				dto.BookCount = n.Series.BookCount
			}
		}
		out.Nodes = append(out.Nodes, dto)
	}
	for _, l := range view.Links {
		out.Links = append(out.Links, graphLinkDTO{Source: l.Source, Target: l.Target, Type: string(l.Kind)})
	}
	return out
}
