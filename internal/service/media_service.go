package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"realtime/internal/models"
	"realtime/internal/repository"
)

// maxBlobSize caps uploads at 10 MiB.
const maxBlobSize = 10 << 20

// MediaService stores media blobs on disk, content-addressed by sha256,
// and hands out opaque URL refs that embed no storage detail.
type MediaService struct {
	repo    repository.MediaRepository
	dir     string
	baseURL string
}

func NewMediaService(repo repository.MediaRepository, dir, baseURL string) *MediaService {
	return &MediaService{repo: repo, dir: dir, baseURL: baseURL}
}

// Upload persists data and returns the blob record. Identical content
// dedupes to the existing record regardless of uploader.
func (s *MediaService) Upload(ctx context.Context, uploaderID, contentType string, data []byte) (*models.MediaBlob, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("empty upload")
	}
	if len(data) > maxBlobSize {
		return nil, models.NewValidationError(fmt.Sprintf("upload exceeds %d bytes", maxBlobSize))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if existing, err := s.repo.GetByHash(ctx, hash); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, models.NewTransientError("create media dir", err)
	}

	path := filepath.Join(s.dir, hash)
	if err := writeBlobAtomic(s.dir, path, data); err != nil {
		return nil, models.NewTransientError("write media blob", err)
	}

	blob := &models.MediaBlob{
		Hash:        hash,
		ContentType: contentType,
		Bytes:       int64(len(data)),
		Path:        path,
		UploaderID:  uploaderID,
	}
	if err := s.repo.Create(ctx, blob); err != nil {
		// No record means no ref can be handed out; don't leave the file.
		os.Remove(path)
		return nil, err
	}
	return blob, nil
}

// Download returns the raw bytes and content type for a stored hash.
func (s *MediaService) Download(ctx context.Context, hash string) ([]byte, string, error) {
	blob, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(blob.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", models.NewNotFoundError("Media", hash)
		}
		return nil, "", models.NewTransientError("read media blob", err)
	}
	return data, blob.ContentType, nil
}

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}

// RefFor builds the opaque URL ref clients embed in messages and stories.
func (s *MediaService) RefFor(blob *models.MediaBlob) string {
	return s.baseURL + "/api/media/" + blob.Hash
}

// writeBlobAtomic writes through a temp file and renames, so a crash mid-write
// never leaves a partial blob at the final path.
func writeBlobAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
