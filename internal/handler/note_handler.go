package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/internal/dto"
	"github.com/prperemyshlev/notes-service/internal/service"
	"go.uber.org/zap"
)

// NoteHandler handles note requests; every route runs behind AuthMiddleware
type NoteHandler struct {
	noteService service.NoteService
	logger      *zap.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService service.NoteService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{noteService: noteService, logger: logger}
}

func (h *NoteHandler) caller(c *gin.Context) (string, bool) {
	user := currentUser(c)
	if user == nil {
		writeError(c, h.logger, domain.ErrNoToken)
		return "", false
	}
	return user.ID, true
}

// List returns the caller's notes
func (h *NoteHandler) List(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	notes, err := h.noteService.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotesResponse{
		Message: "Notes retrieved successfully",
		Notes:   dto.NewNoteResponses(notes),
	})
}

// Search returns the caller's notes matching the path query
func (h *NoteHandler) Search(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	query := c.Param("query")
	notes, err := h.noteService.Search(c.Request.Context(), userID, query)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NotesResponse{
		Message: "Search completed successfully",
		Notes:   dto.NewNoteResponses(notes),
		Query:   query,
	})
}

// Create stores a new note
func (h *NoteHandler) Create(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	note, err := h.noteService.Create(c.Request.Context(), userID, &service.NoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NoteEnvelope{
		Message: "Note created successfully",
		Note:    dto.NewNoteResponse(note),
	})
}

// Get returns a single note
func (h *NoteHandler) Get(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	note, err := h.noteService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NoteEnvelope{
		Message: "Note retrieved successfully",
		Note:    dto.NewNoteResponse(note),
	})
}

// Update applies a partial update
func (h *NoteHandler) Update(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	note, err := h.noteService.Update(c.Request.Context(), userID, c.Param("id"), domain.NoteUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NoteEnvelope{
		Message: "Note updated successfully",
		Note:    dto.NewNoteResponse(note),
	})
}

// Delete removes a note
func (h *NoteHandler) Delete(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.noteService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Note deleted successfully",
	})
}
