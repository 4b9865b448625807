package resume

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"resumehub/internal/apperr"
	"resumehub/internal/metrics"
	"resumehub/internal/model"
	"resumehub/internal/storage"
)

const (
	MimePDF  = "application/pdf"
	MimeDoc  = "application/msword"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedMultipartTypes = map[string]bool{MimePDF: true, MimeDoc: true, MimeDocx: true}

// Store is the resume persistence the service needs.
type Store interface {
	Insert(ctx context.Context, r *model.Resume) error
	Get(ctx context.Context, id string) (*model.Resume, error)
	Delete(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, query, collegeID string) ([]model.Resume, error)
	ListByCollege(ctx context.Context, collegeID string) ([]model.Resume, error)
	CountByCollege(ctx context.Context, collegeID string) (int64, error)
	CountByUploader(ctx context.Context, kind model.UploaderKind) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// Service ingests, searches and deletes resumes.
type Service struct {
	store     Store
	files     storage.Backend
	extractor Extractor
	urlPrefix string
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a service. urlPrefix is the public path files are served
// under, e.g. /uploads/resumes.
func NewService(st Store, files storage.Backend, extractor Extractor, urlPrefix string, logger *slog.Logger) *Service {
	return &Service{
		store:     st,
		files:     files,
		extractor: extractor,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		logger:    logger.With("component", "resume"),
		now:       time.Now,
	}
}

// Base64Upload is an admin or college PDF upload sent as JSON.
type Base64Upload struct {
	FileName   string
	Data       string
	UploadedBy string
	CollegeID  string
}

// FileUpload is a file received from a multipart form.
type FileUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// UploadMeta is the form metadata sent with a multipart upload.
type UploadMeta struct {
	Department  string
	CollegeID   string
	CollegeName string
	State       string
	District    string
}

// UploadBase64 decodes a base64 PDF and stores it.
func (s *Service) UploadBase64(ctx context.Context, in Base64Upload) (model.Resume, error) {
	if strings.TrimSpace(in.FileName) == "" || strings.TrimSpace(in.Data) == "" {
		return model.Resume{}, apperr.Validation("File name and data are required")
	}
	if !strings.EqualFold(path.Ext(in.FileName), ".pdf") {
		return model.Resume{}, apperr.Validation("Only PDF files are allowed")
	}
	kind, err := model.ParseUploaderKind(in.UploadedBy)
	if err != nil {
		return model.Resume{}, apperr.Validation("uploadedBy must be admin or college")
	}
	data, err := decodeBase64(in.Data)
	if err != nil || len(data) == 0 {
		return model.Resume{}, apperr.Validation("Invalid base64 data")
	}

	rec := model.Resume{
		FileName:   in.FileName,
		UploadedBy: kind,
		CollegeID:  optional(in.CollegeID),
	}
	return s.ingest(ctx, rec, data, MimePDF)
}

// UploadMultipart stores a PDF or Word document uploaded by a college.
func (s *Service) UploadMultipart(ctx context.Context, file FileUpload, meta UploadMeta) (model.Resume, error) {
	if len(file.Data) == 0 {
		return model.Resume{}, apperr.Validation("No file uploaded")
	}
	if !allowedMultipartTypes[file.ContentType] {
		return model.Resume{}, apperr.Validation("Only PDF and Word documents are allowed")
	}
	if strings.TrimSpace(meta.Department) == "" || strings.TrimSpace(meta.CollegeID) == "" {
		return model.Resume{}, apperr.Validation("Department and college id are required")
	}

	rec := model.Resume{
		FileName:    file.FileName,
		UploadedBy:  model.UploaderCollege,
		CollegeID:   optional(meta.CollegeID),
		CollegeName: optional(meta.CollegeName),
		Department:  strings.TrimSpace(meta.Department),
		State:       strings.TrimSpace(meta.State),
		District:    strings.TrimSpace(meta.District),
	}
	return s.ingest(ctx, rec, file.Data, file.ContentType)
}

// ingest writes the file, extracts text from PDFs and inserts the record. The
// file is removed again if the insert fails.
func (s *Service) ingest(ctx context.Context, rec model.Resume, data []byte, contentType string) (model.Resume, error) {
	rec.StoredName = strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + sanitizeFileName(rec.FileName)
	rec.FileURL = s.urlPrefix + "/" + rec.StoredName
	rec.UploadedAt = s.now().UTC()

	if err := s.files.Save(ctx, rec.StoredName, data, contentType); err != nil {
		return model.Resume{}, apperr.Internal("Failed to store file", err)
	}

	if contentType == MimePDF {
		text, err := s.extractor.Extract(data)
		if err != nil {
			metrics.ExtractionFailures.Inc()
			s.logger.Warn("text extraction failed, storing without content", "file", rec.StoredName, "error", err)
		} else {
			rec.Content = text
		}
	}

	if err := s.store.Insert(ctx, &rec); err != nil {
		if rmErr := s.files.Remove(ctx, rec.StoredName); rmErr != nil && !errors.Is(rmErr, storage.ErrNotFound) {
			s.logger.Error("remove orphaned file", "file", rec.StoredName, "error", rmErr)
		}
		return model.Resume{}, apperr.Internal("Server error", fmt.Errorf("insert resume: %w", err))
	}
	metrics.Uploads.WithLabelValues(string(rec.UploadedBy)).Inc()
	s.logger.Info("resume stored", "id", rec.ID, "file", rec.StoredName, "uploadedBy", rec.UploadedBy)
	return rec, nil
}

// Search returns resumes whose text contains query, optionally within one college.
func (s *Service) Search(ctx context.Context, query, collegeID string) ([]model.Resume, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Search query is required")
	}
	res, err := s.store.Search(ctx, query, strings.TrimSpace(collegeID))
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("search resumes: %w", err))
	}
	return res, nil
}

func (s *Service) CountByCollege(ctx context.Context, collegeID string) (int64, error) {
	if collegeID == "" {
		return 0, apperr.Validation("College id is required")
	}
	n, err := s.store.CountByCollege(ctx, collegeID)
	if err != nil {
		return 0, apperr.Internal("Server error", fmt.Errorf("count resumes: %w", err))
	}
	return n, nil
}

// ListByCollege returns a college's resumes, newest first.
func (s *Service) ListByCollege(ctx context.Context, collegeID string) ([]model.Resume, error) {
	if collegeID == "" {
		return nil, apperr.Validation("College id is required")
	}
	res, err := s.store.ListByCollege(ctx, collegeID)
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list resumes: %w", err))
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Resume, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Resume{}, apperr.Internal("Server error", fmt.Errorf("load resume: %w", err))
	}
	if rec == nil {
		return model.Resume{}, apperr.NotFound("Resume not found")
	}
	return *rec, nil
}

// Delete removes the backing file and then the record. A failed file removal
// is logged and does not keep the record.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.files.Remove(ctx, rec.StoredName); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("backing file already missing", "id", id, "file", rec.StoredName)
		} else {
			s.logger.Error("remove backing file", "id", id, "file", rec.StoredName, "error", err)
		}
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperr.Internal("Server error", fmt.Errorf("delete resume: %w", err))
	}
	if !ok {
		return apperr.NotFound("Resume not found")
	}
	s.logger.Info("resume deleted", "id", id)
	return nil
}

func (s *Service) CountAll(ctx context.Context) (int64, error) {
	n, err := s.store.CountAll(ctx)
	if err != nil {
		return 0, apperr.Internal("Server error", fmt.Errorf("count resumes: %w", err))
	}
	return n, nil
}

// CountByUploader is used by the stats service.
func (s *Service) CountByUploader(ctx context.Context, kind model.UploaderKind) (int64, error) {
	return s.store.CountByUploader(ctx, kind)
}

// decodeBase64 strips an optional data URL header and whitespace.
func decodeBase64(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ";base64,"); i >= 0 {
			data = data[i+len(";base64,"):]
		}
	}
	data = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, data)
	var firstErr error
	for _, enc := range base64Encodings {
		b, err := enc.DecodeString(data)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// standard first; URL-safe and unpadded input is accepted too
var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// sanitizeFileName keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if cleaned == "" || cleaned == "." || cleaned == ".." || cleaned == "/" {
		return "file"
	}
	return cleaned
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
