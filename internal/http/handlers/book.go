package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/http/middleware"
	"github.com/Brooks-Cole/brooks-books/internal/http/response"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
	"github.com/Brooks-Cole/brooks-books/internal/services"
)

type BookHandler struct {
	log   *logger.Logger
	books services.BookService
}

func NewBookHandler(books services.BookService, baseLog *logger.Logger) *BookHandler {
	return &BookHandler{
		log:   baseLog.With("handler", "BookHandler"),
		books: books,
	}
}

type bookRequest struct {
	Title       string   `json:"title" binding:"required"`
	Author      string   `json:"author" binding:"required"`
	Description string   `json:"description"`
	CoverImage  string   `json:"coverImage"`
	SeriesName  string   `json:"seriesName"`
	SeriesOrder int      `json:"seriesOrder"`
	Genres      []string `json:"genres"`
	Tags        []string `json:"tags"`
	Themes      []string `json:"themes"`
	AgeMin      int      `json:"ageMin"`
	AgeMax      int      `json:"ageMax"`
}

func (r bookRequest) toDomain() *domain.Book {
	return &domain.Book{
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		CoverImage:  r.CoverImage,
		SeriesName:  r.SeriesName,
		SeriesOrder: r.SeriesOrder,
		Genres:      datatypes.NewJSONSlice(r.Genres),
		Tags:        datatypes.NewJSONSlice(r.Tags),
		Themes:      datatypes.NewJSONSlice(r.Themes),
		AgeMin:      r.AgeMin,
		AgeMax:      r.AgeMax,
	}
}

func (h *BookHandler) List(c *gin.Context) {
	books, err := h.books.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("failed to list books"))
		return
	}
	response.RespondOK(c, books)
}

func (h *BookHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid book id"))
		return
	}
	book, err := h.books.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	response.RespondOK(c, book)
}

func (h *BookHandler) Create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	book, err := h.books.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "create_failed", err)
		return
	}
	response.RespondCreated(c, book)
}

func (h *BookHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid book id"))
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	book := req.toDomain()
	book.ID = id
	updated, err := h.books.Update(c.Request.Context(), book)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "update_failed", err)
		return
	}
	response.RespondOK(c, updated)
}

type tagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

func (h *BookHandler) UpdateTags(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid book id"))
		return
	}
	var req tagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	book, err := h.books.UpdateTags(c.Request.Context(), id, req.Tags)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "update_failed", err)
		return
	}
	response.RespondOK(c, book)
}

type ratingRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

func (h *BookHandler) Rate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid book id"))
		return
	}
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	userID := middleware.UserID(c)
	if err := h.books.Rate(c.Request.Context(), id, userID, req.Rating, req.Review); err != nil {
		response.RespondError(c, http.StatusBadRequest, "rate_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Rating saved"})
}

type readStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *BookHandler) SetReadStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid book id"))
		return
	}
	var req readStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	userID := middleware.UserID(c)
	if err := h.books.SetReadStatus(c.Request.Context(), id, userID, req.Status); err != nil {
		response.RespondError(c, http.StatusBadRequest, "status_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Read status saved"})
}
