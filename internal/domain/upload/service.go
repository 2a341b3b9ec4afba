package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"snapbook/internal/pkg/session"
)

const MaxFileSize = 10 * 1024 * 1024 // 10 MB

// AllowedMimeTypes lists the image types accepted after content sniffing.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Service validates images, hands them to the configured Uploader and
// records the result.
type Service struct {
	repo     Repository
	uploader Uploader
	maxSize  int64
	log      logrus.FieldLogger
}

func NewService(repo Repository, up Uploader, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, uploader: up, maxSize: MaxFileSize, log: log}
}

// UploadImage stores an image for the caller. The type is taken from the
// content, never from the file name or a client header.
func (s *Service) UploadImage(ctx context.Context, sess session.Session, r io.Reader, name, folder string) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	mimeType := strings.Split(mt.String(), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}

	id := uuid.New().String()
	filename := fmt.Sprintf("%s_%s%s", id, sanitizeName(name), mt.Extension())

	stored, err := s.uploader.Upload(ctx, bytes.NewReader(data), filename, folder)
	if err != nil {
		s.log.WithError(err).WithField("provider", s.uploader.Name()).Warn("image upload failed")
		if errors.Is(err, ErrUploadFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	upload := &Upload{
		ID:           id,
		UserID:       sess.UserID,
		OriginalName: name,
		Provider:     s.uploader.Name(),
		StorageKey:   stored.Key,
		FileURL:      stored.URL,
		Folder:       sanitizeFolder(folder),
		MimeType:     mimeType,
		Size:         int64(len(data)),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		_ = s.uploader.Delete(ctx, stored.Key)
		return nil, fmt.Errorf("save upload record: %w", err)
	}
	return upload, nil
}

// ResolveImageRef returns a hosted URL for ref. Empty stays empty, http(s)
// URLs pass through, base64 data URIs are uploaded.
func (s *Service) ResolveImageRef(ctx context.Context, sess session.Session, ref, folder string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "http://"):
		return ref, nil
	case IsDataURI(ref):
		data, err := decodeDataURI(ref)
		if err != nil {
			return "", err
		}
		u, err := s.UploadImage(ctx, sess, bytes.NewReader(data), "illustration", folder)
		if err != nil {
			return "", err
		}
		return u.FileURL, nil
	default:
		return "", ErrUnsupportedImageRef
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*Upload, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Upload, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Delete removes the hosted file and the record. Admins may delete any upload.
func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	upload, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if upload.UserID != sess.UserID && !sess.IsAdmin() {
		return ErrNotOwner
	}
	if err := s.uploader.Delete(ctx, upload.StorageKey); err != nil {
		s.log.WithError(err).WithField("upload_id", id).Warn("delete hosted file failed")
	}
	return s.repo.Delete(ctx, id)
}

// IsDataURI reports whether ref is an inline data: URI.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), "data:")
}

func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrUnsupportedImageRef
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImageRef, err)
	}
	return data, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "_" {
		return "file"
	}
	return name
}
