package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timesaver/backend/internal/service"
)

type EntryHandler struct {
	entryService *service.EntryService
}

type entryRequest struct {
	Category    string `json:"category"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Note        string `json:"note"`
	BaseVersion int    `json:"baseVersion"`
}

func (r entryRequest) input() service.EntryInput {
	return service.EntryInput{
		Category:    r.Category,
		Start:       r.Start,
		End:         r.End,
		Note:        r.Note,
		BaseVersion: r.BaseVersion,
	}
}

func NewEntryHandler(entryService *service.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

func (h *EntryHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	entries, apiErr := h.entryService.List(c.Request.Context(), userID, service.ListInput{
		From:  c.Query("from"),
		To:    c.Query("to"),
		Order: c.Query("order"),
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *EntryHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	entry, apiErr := h.entryService.Create(c.Request.Context(), userID, req.input())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *EntryHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	entry, apiErr := h.entryService.Get(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

func (h *EntryHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	entry, apiErr := h.entryService.Update(c.Request.Context(), userID, c.Param("id"), req.input())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

func (h *EntryHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if apiErr := h.entryService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
