package api

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumehub/internal/account"
)

type hrURI struct {
	HRID string `uri:"hrId" binding:"required,uuid"`
}

type selectionURI struct {
	ResumeID string `uri:"resumeId" binding:"required,uuid"`
	HRID     string `uri:"hrId" binding:"required,uuid"`
}

type resumeIDURI struct {
	ResumeID string `uri:"resumeId" binding:"required,uuid"`
}

type selectionRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

type viewedRequest struct {
	ViewedBy string `json:"viewedBy" binding:"required"`
}

type hrSettingsRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}

type settingsURI struct {
	Email string `uri:"email" binding:"required,email"`
}

func (h *handler) listAllForHR(c *gin.Context) {
	var uri hrURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.ensureSelf(c, uri.HRID) {
		return
	}
	res, err := h.HR.ListAllAnnotated(c.Request.Context(), uri.HRID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) listSelectedForHR(c *gin.Context) {
	var uri hrURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.ensureSelf(c, uri.HRID) {
		return
	}
	res, err := h.HR.ListSelected(c.Request.Context(), uri.HRID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) setSelection(c *gin.Context) {
	var uri selectionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.ensureSelf(c, uri.HRID) {
		return
	}
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rec, err := h.HR.SetSelection(c.Request.Context(), uri.ResumeID, uri.HRID, *req.Selected)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Resume selection updated", "resume": rec})
}

func (h *handler) markViewed(c *gin.Context) {
	var uri resumeIDURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	var req viewedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.ensureSelf(c, req.ViewedBy) {
		return
	}
	if _, err := h.HR.MarkViewed(c.Request.Context(), uri.ResumeID, req.ViewedBy); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Resume marked as viewed"})
}

func (h *handler) download(c *gin.Context) {
	var uri resumeIDURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	f, err := h.HR.Download(c.Request.Context(), uri.ResumeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Body.Close()
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": f.FileName})
	c.DataFromReader(http.StatusOK, f.Size, f.ContentType, f.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (h *handler) totalResumes(c *gin.Context) {
	n, err := h.HR.TotalResumes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalResumes": n})
}

func (h *handler) getHRProfile(c *gin.Context) {
	var uri hrURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := h.Accounts.GetHRProfile(c.Request.Context(), uri.HRID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) updateHRProfile(c *gin.Context) {
	var uri hrURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.ensureSelf(c, uri.HRID) {
		return
	}
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := h.Accounts.UpdateHRProfile(c.Request.Context(), uri.HRID, req.toUpdate())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) getSettings(c *gin.Context) {
	var uri settingsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.ensureSelfEmail(c, uri.Email) {
		return
	}
	s, err := h.Accounts.GetHRSettings(c.Request.Context(), uri.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) updateSettings(c *gin.Context) {
	var uri settingsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.ensureSelfEmail(c, uri.Email) {
		return
	}
	var req hrSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	s, err := h.Accounts.UpdateHRSettings(c.Request.Context(), uri.Email, account.HRSettingsUpdate{
		Name: req.Name, Phone: req.Phone, Company: req.Company,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) adminStats(c *gin.Context) {
	st, err := h.Stats.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
