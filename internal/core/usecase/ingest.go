package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
)

// uploadMimeByExt covers the formats the decomposition pipeline understands.
// Anything else is rejected at upload time instead of failing in the worker.
var uploadMimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
}

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the file, records the registry row and publishes the
// ingestion event. Once the row exists, downstream failures mark it failed
// rather than leaving it stuck in uploaded.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	mimeType, err := resolveUploadType(filename, mimeType)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		if markErr := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusFailed, err.Error()); markErr != nil {
			return nil, fmt.Errorf("publish ingestion event: %w (mark failed: %w)", err, markErr)
		}
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

// resolveUploadType validates the upload against the supported formats and
// fills in a missing mime type from the extension.
func resolveUploadType(filename, mimeType string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("filename is required"))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	extMime, extKnown := uploadMimeByExt[ext]
	if mimeType == "" || mimeType == "application/octet-stream" {
		if !extKnown {
			return "", domain.WrapError(domain.ErrInvalidInput, "upload",
				fmt.Errorf("unsupported document type %q", ext))
		}
		return extMime, nil
	}

	if extKnown || supportedMime(mimeType) {
		return mimeType, nil
	}
	return "", domain.WrapError(domain.ErrInvalidInput, "upload",
		fmt.Errorf("unsupported document type %q (%s)", ext, mimeType))
}

func supportedMime(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	for _, known := range uploadMimeByExt {
		if mimeType == known {
			return true
		}
	}
	return false
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
