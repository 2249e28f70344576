package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talhabinjaved/HireMatch/internal/middleware"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/services"
)

// DocumentHandler serves the tenant CV and job description endpoints. Every
// operation is keyed by the calling client's ID, so one tenant can never see
// another tenant's documents.
type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(ds *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: ds}
}

type cvJSON struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	CandidateName string    `json:"candidate_name,omitempty"`
	Content       string    `json:"content,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toCVJSON(cv *models.CV, includeContent bool) cvJSON {
	out := cvJSON{
		ID:            cv.ID,
		Filename:      cv.Filename,
		CandidateName: cv.CandidateName,
		CreatedAt:     cv.CreatedAt,
	}
	if includeContent {
		out.Content = cv.Content
	}
	return out
}

type jobJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toJobJSON(job *models.JobDescription, includeContent bool) jobJSON {
	out := jobJSON{
		ID:        job.ID,
		Title:     job.Title,
		Summary:   job.Summary,
		CreatedAt: job.CreatedAt,
	}
	if includeContent {
		out.Content = job.Content
	}
	return out
}

// CreateCV stores a CV for the calling client
func (h *DocumentHandler) CreateCV(c *gin.Context) {
	clientID, ok := callerClientID(c)
	if !ok {
		return
	}

	var req struct {
		Filename      string `json:"filename" binding:"required"`
		CandidateName string `json:"candidate_name"`
		Content       string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "filename is required",
		})
		return
	}

	cv, err := h.documentService.CreateCV(clientID, services.CreateCVRequest{
		Filename:      req.Filename,
		CandidateName: req.CandidateName,
		Content:       req.Content,
	})
	if err != nil {
		documentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"cv": toCVJSON(cv, true)})
}

// ListCVs returns the calling client's CVs without content
func (h *DocumentHandler) ListCVs(c *gin.Context) {
	clientID, ok := callerClientID(c)
	if !ok {
		return
	}

	cvs, err := h.documentService.ListCVs(clientID)
	if err != nil {
		documentError(c, err)
		return
	}

	out := make([]cvJSON, 0, len(cvs))
	for i := range cvs {
		out = append(out, toCVJSON(&cvs[i], false))
	}

	c.JSON(http.StatusOK, gin.H{"cvs": out, "count": len(out)})
}

// GetCV returns one CV with content
func (h *DocumentHandler) GetCV(c *gin.Context) {
	clientID, ok := callerClientID(c)
	if !ok {
		return
	}

	cv, err := h.documentService.GetCV(clientID, c.Param("id"))
	if err != nil {
		documentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cv": toCVJSON(cv, true)})
}

// DeleteCV removes one of the calling client's CVs
func (h *DocumentHandler) DeleteCV(c *gin.Context) {
	clientID, ok := callerClientID(c)
	if !ok {
		return
	}

	if err := h.documentService.DeleteCV(clientID, c.Param("id")); err != nil {
		documentError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateJob stores a job description for the calling client
func (h *DocumentHandler) CreateJob(c *gin.Context) {
	clientID, ok := callerClientID(c)
	if !ok {
		return
	}

	var req struct {
		Title   string `json:"title" binding:"required"`
		Summary string `json:"summary"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "title is required",
		})
		return
	}

	job, err := h.documentService.CreateJobDescription(clientID, services.CreateJobRequest{
		Title:   req.Title,
		Summary: req.Summary,
		Content: req.Content,
	})
	if err != nil {
		documentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"job": toJobJSON(job, true)})
}

// ListJobs returns the calling client's job descriptions without content
func (h *DocumentHandler) ListJobs(c *gin.Context) {
	clientID, ok := callerClientID(c)
	if !ok {
		return
	}

	jobs, err := h.documentService.ListJobDescriptions(clientID)
	if err != nil {
		documentError(c, err)
		return
	}

	out := make([]jobJSON, 0, len(jobs))
	for i := range jobs {
		out = append(out, toJobJSON(&jobs[i], false))
	}

	c.JSON(http.StatusOK, gin.H{"jobs": out, "count": len(out)})
}

// GetJob returns one job description with content
func (h *DocumentHandler) GetJob(c *gin.Context) {
	clientID, ok := callerClientID(c)
	if !ok {
		return
	}

	job, err := h.documentService.GetJobDescription(clientID, c.Param("id"))
	if err != nil {
		documentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": toJobJSON(job, true)})
}

// DeleteJob removes one of the calling client's job descriptions
func (h *DocumentHandler) DeleteJob(c *gin.Context) {
	clientID, ok := callerClientID(c)
	if !ok {
		return
	}

	if err := h.documentService.DeleteJobDescription(clientID, c.Param("id")); err != nil {
		documentError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// callerClientID extracts the authenticated client's ID. The auth middleware
// guarantees a ClientPrincipal on tenant routes; anything else aborts here.
func callerClientID(c *gin.Context) (string, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_token",
			"error_description": "The access token is invalid",
		})
		return "", false
	}
	clientPrincipal, ok := principal.(services.ClientPrincipal)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":             "access_denied",
			"error_description": "Super admin tokens cannot access tenant data",
		})
		return "", false
	}
	return clientPrincipal.Client.ClientID, true
}

func documentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "Document not found",
		})
	case errors.Is(err, services.ErrFilenameRequired),
		errors.Is(err, services.ErrTitleRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Operation failed",
		})
	}
}
