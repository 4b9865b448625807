// Package hr implements the HR browsing, shortlist and download workflow.
package hr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"resumehub/internal/apperr"
	"resumehub/internal/model"
	"resumehub/internal/storage"
)

// Store is the resume persistence HR actions need.
type Store interface {
	Get(ctx context.Context, id string) (*model.Resume, error)
	ListAll(ctx context.Context) ([]model.Resume, error)
	ListSelectedBy(ctx context.Context, hrID string) ([]model.Resume, error)
	UpsertSelection(ctx context.Context, resumeID, hrID string, selected bool) (bool, error)
	AddViewer(ctx context.Context, resumeID, viewerID string) (bool, error)
	CountAll(ctx context.Context) (int64, error)
}

type Service struct {
	store  Store
	files  storage.Backend
	logger *slog.Logger
}

func NewService(st Store, files storage.Backend, logger *slog.Logger) *Service {
	return &Service{store: st, files: files, logger: logger.With("component", "hr")}
}

// File is an open resume document ready to stream. Callers must close Body.
type File struct {
	Body        io.ReadCloser
	Size        int64
	FileName    string
	ContentType string
}

// ListAllAnnotated returns every resume with hrID's selection flag.
func (s *Service) ListAllAnnotated(ctx context.Context, hrID string) ([]model.AnnotatedResume, error) {
	if strings.TrimSpace(hrID) == "" {
		return nil, apperr.Validation("HR id is required")
	}
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list resumes: %w", err))
	}
	res := make([]model.AnnotatedResume, 0, len(all))
	for _, r := range all {
		res = append(res, model.AnnotatedResume{Resume: r, SelectedByHR: r.IsSelectedBy(hrID)})
	}
	return res, nil
}

// ListSelected returns the resumes hrID has shortlisted.
func (s *Service) ListSelected(ctx context.Context, hrID string) ([]model.Resume, error) {
	if strings.TrimSpace(hrID) == "" {
		return nil, apperr.Validation("HR id is required")
	}
	res, err := s.store.ListSelectedBy(ctx, hrID)
	if err != nil {
		return nil, apperr.Internal("Server error", fmt.Errorf("list selected: %w", err))
	}
	return res, nil
}

// SetSelection records hrID's decision, replacing any earlier one.
func (s *Service) SetSelection(ctx context.Context, resumeID, hrID string, selected bool) (model.Resume, error) {
	if strings.TrimSpace(hrID) == "" {
		return model.Resume{}, apperr.Validation("HR id is required")
	}
	ok, err := s.store.UpsertSelection(ctx, resumeID, hrID, selected)
	if err != nil {
		return model.Resume{}, apperr.Internal("Server error", fmt.Errorf("upsert selection: %w", err))
	}
	if !ok {
		return model.Resume{}, apperr.NotFound("Resume not found")
	}
	s.logger.Debug("selection set", "resume", resumeID, "hr", hrID, "selected", selected)
	return s.get(ctx, resumeID)
}

// MarkViewed adds viewerID to the viewer set. Repeating it is a no-op.
func (s *Service) MarkViewed(ctx context.Context, resumeID, viewerID string) (model.Resume, error) {
	if strings.TrimSpace(viewerID) == "" {
		return model.Resume{}, apperr.Validation("viewedBy is required")
	}
	ok, err := s.store.AddViewer(ctx, resumeID, viewerID)
	if err != nil {
		return model.Resume{}, apperr.Internal("Server error", fmt.Errorf("add viewer: %w", err))
	}
	if !ok {
		return model.Resume{}, apperr.NotFound("Resume not found")
	}
	return s.get(ctx, resumeID)
}

// Download opens the backing file under its original name.
func (s *Service) Download(ctx context.Context, resumeID string) (File, error) {
	rec, err := s.get(ctx, resumeID)
	if err != nil {
		return File{}, err
	}
	obj, err := s.files.Open(ctx, rec.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("record without backing file", "resume", resumeID, "file", rec.StoredName)
			return File{}, apperr.NotFound("File not found")
		}
		return File{}, apperr.Internal("Server error", fmt.Errorf("open file: %w", err))
	}
	ct := obj.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return File{Body: obj.Body, Size: obj.Size, FileName: rec.FileName, ContentType: ct}, nil
}

func (s *Service) TotalResumes(ctx context.Context) (int64, error) {
	n, err := s.store.CountAll(ctx)
	if err != nil {
		return 0, apperr.Internal("Server error", fmt.Errorf("count resumes: %w", err))
	}
	return n, nil
}

func (s *Service) get(ctx context.Context, id string) (model.Resume, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Resume{}, apperr.Internal("Server error", fmt.Errorf("load resume: %w", err))
	}
	if rec == nil {
		return model.Resume{}, apperr.NotFound("Resume not found")
	}
	return *rec, nil
}
