package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"resumehub/internal/resume"
	"resumehub/internal/storage"
)

// multipart and JSON envelopes add some overhead on top of the file itself
const envelopeBytes = 1 << 20

type base64UploadRequest struct {
	FileName   string `json:"fileName" binding:"required"`
	FileData   string `json:"fileData" binding:"required"`
	UploadedBy string `json:"uploadedBy"`
	CollegeID  string `json:"collegeId" binding:"omitempty,uuid"`
}

type multipartUploadForm struct {
	Department  string `form:"department"`
	CollegeID   string `form:"collegeId" binding:"omitempty,uuid"`
	CollegeName string `form:"collegeName"`
	State       string `form:"state"`
	District    string `form:"district"`
}

type collegeURI struct {
	CollegeID string `uri:"collegeId" binding:"required,uuid"`
}

type resumeURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

func (h *handler) uploadBase64(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes*4/3+envelopeBytes)
	var req base64UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rec, err := h.Resumes.UploadBase64(c.Request.Context(), resume.Base64Upload{
		FileName: req.FileName, Data: req.FileData, UploadedBy: req.UploadedBy, CollegeID: req.CollegeID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "PDF uploaded successfully", "resume": rec})
}

func (h *handler) uploadMultipart(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+envelopeBytes)
	fh, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	if fh.Size > h.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File too large"})
		return
	}
	var form multipartUploadForm
	if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		respondBindError(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	rec, err := h.Resumes.UploadMultipart(c.Request.Context(),
		resume.FileUpload{FileName: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data},
		resume.UploadMeta{
			Department: form.Department, CollegeID: form.CollegeID, CollegeName: form.CollegeName,
			State: form.State, District: form.District,
		})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Resume uploaded successfully", "resume": rec})
}

func (h *handler) searchResumes(c *gin.Context) {
	res, err := h.Resumes.Search(c.Request.Context(), c.Query("q"), c.Query("collegeId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) countByCollege(c *gin.Context) {
	var uri collegeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	n, err := h.Resumes.CountByCollege(c.Request.Context(), uri.CollegeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collegeId": uri.CollegeID, "count": n})
}

func (h *handler) listByCollege(c *gin.Context) {
	var uri collegeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.Resumes.ListByCollege(c.Request.Context(), uri.CollegeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) deleteResume(c *gin.Context) {
	var uri resumeURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.Resumes.Delete(c.Request.Context(), uri.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Resume deleted successfully"})
}

// serveUpload streams a stored file inline from whichever backend holds it.
func (h *handler) serveUpload(c *gin.Context) {
	obj, err := h.Files.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	defer obj.Body.Close()
	ct := obj.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, obj.Size, ct, obj.Body, nil)
}
