package handler

import (
	"net/http"

	"bookshelf-backend/internal/domains/entry/model"
	"bookshelf-backend/internal/domains/entry/service"
	"bookshelf-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EntryHandler - HTTP layer of the entry domain
type EntryHandler struct {
	service service.ServiceInterface
	appName string
}

// NewEntryHandler - constructor with DI
func NewEntryHandler(service service.ServiceInterface, appName string) *EntryHandler {
	return &EntryHandler{
		service: service,
		appName: appName,
	}
}

// Index - GET /
func (h *EntryHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"AppName": h.appName,
	})
}

// CreateBook - POST /create-book
// Form: title, author, start_date, end_date?, rating?, notes?
func (h *EntryHandler) CreateBook(c *gin.Context) {
	var form model.CreateEntryForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req, err := form.ToRequest()
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.CreateEntry(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListEntries - GET /entries
func (h *EntryHandler) ListEntries(c *gin.Context) {
	result, err := h.service.ListEntries(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ExportEntries - GET /entries/export
func (h *EntryHandler) ExportEntries(c *gin.Context) {
	f, err := h.service.ExportEntries(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="bookshelf.xlsx"`)
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("[EntryHandler] Failed to write workbook")
	}
}

// GetBook - GET /get-book/:title
func (h *EntryHandler) GetBook(c *gin.Context) {
	result, err := h.service.GetEntry(c.Request.Context(), c.Param("title"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// UpdateBook - PUT /update-book
// Form: gettitle, getauthor?, getstart_date?, getend_date?, getrating?, getnotes?
func (h *EntryHandler) UpdateBook(c *gin.Context) {
	var form model.UpdateEntryForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req, err := form.ToRequest()
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.UpdateEntry(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// DeleteBook - DELETE /delete-book/:title
func (h *EntryHandler) DeleteBook(c *gin.Context) {
	msg, err := h.service.DeleteEntry(c.Request.Context(), c.Param("title"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, msg)
}

// Health - GET /health
func (h *EntryHandler) Health(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("[EntryHandler] Health check failed")
		response.ServiceUnavailable(c, "database unavailable")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *EntryHandler) handleError(c *gin.Context, err error) {
	status, detail := model.MapErrorToHTTP(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("[EntryHandler] Request failed")
	}
	_ = c.Error(err)
	response.Error(c, status, detail)
}
