package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// allowedUploads maps accepted file extensions to the content type recorded
// for them. Extensions, not sniffing, gate the upload.
var allowedUploads = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
}

// MediaService stores uploads on local disk under the configured directory
// and records them for later cleanup.
type MediaService struct {
	repo      repositories.MediaRepository
	users     repositories.UserRepository
	uploadDir string
	maxSize   int64
	logger    *slog.Logger
}

// NewMediaService creates a media service rooted at uploadDir.
func NewMediaService(
	repo repositories.MediaRepository,
	users repositories.UserRepository,
	uploadDir string,
	maxSize int64,
	logger *slog.Logger,
) *MediaService {
	return &MediaService{
		repo:      repo,
		users:     users,
		uploadDir: uploadDir,
		maxSize:   maxSize,
		logger:    logger,
	}
}

// Upload saves the file under a random name, keeping the original extension,
// and records the upload. The caller is expected to have bounded the reader
// at the HTTP layer; size here is the declared length.
func (s *MediaService) Upload(ctx context.Context, filename string, size int64, r io.Reader, userID string) (*models.Media, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedUploads[ext]
	if !ok {
		return nil, fmt.Errorf("file type %q not allowed: %w", ext, domain.ErrValidation)
	}
	if size <= 0 || size > s.maxSize {
		return nil, fmt.Errorf("file size %d out of range: %w", size, domain.ErrValidation)
	}

	uploader, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("uploader: %w", err)
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	saved := uuid.NewString() + ext
	path := filepath.Join(s.uploadDir, saved)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return nil, fmt.Errorf("file exceeds %d bytes: %w", s.maxSize, domain.ErrValidation)
	}

	media := &models.Media{
		OriginalFilename: filepath.Base(filename),
		SavedFilename:    saved,
		FilePath:         path,
		FileURL:          "/uploads/" + saved,
		ContentType:      contentType,
		FileSize:         written,
		Uploader: models.AuthorInfo{
			ID:   uploader.ID,
			Name: uploader.DisplayName(),
		},
	}
	if err := s.repo.Create(ctx, media); err != nil {
		os.Remove(path)
		return nil, err
	}

	s.logger.Info("media uploaded", "id", media.ID, "url", media.FileURL, "size", written)
	return media, nil
}

// DeleteByFileURL removes the record and the file behind the URL. A missing
// file on disk is not an error; the record is still removed.
func (s *MediaService) DeleteByFileURL(ctx context.Context, fileURL string) error {
	media, err := s.repo.GetByFileURL(ctx, fileURL)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, media.ID); err != nil {
		return err
	}
	if err := os.Remove(media.FilePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("media file removal failed", "path", media.FilePath, "error", err)
	}
	s.logger.Info("media deleted", "id", media.ID, "url", fileURL)
	return nil
}
