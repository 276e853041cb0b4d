package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ametelin/docinsight/internal/core/domain"
)

type repoFake struct {
	created  *domain.Document
	statuses []domain.DocumentStatus
	getDoc   *domain.Document
	getErr   error
	counts   [3]int
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	f.created = doc
	return nil
}

func (f *repoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getDoc, nil
}

func (f *repoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, _ string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *repoFake) SaveCounts(_ context.Context, _ string, pages, chunks, visuals int) error {
	f.counts = [3]int{pages, chunks, visuals}
	return nil
}

type storageFake struct {
	saved map[string][]byte
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.saved[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadStoresRecordsAndPublishes(t *testing.T) {
	repo := &repoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "Annual Report 2025.pdf", "application/pdf", bytes.NewReader([]byte("%PDF")))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %s", doc.Status)
	}
	if repo.created == nil {
		t.Fatalf("expected document record created")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("expected ingestion event for %s, got %v", doc.ID, queue.published)
	}
	if len(storage.saved) != 1 {
		t.Fatalf("expected one stored object")
	}
	for key := range storage.saved {
		if key == "" || key == doc.ID {
			t.Fatalf("storage key should combine id and sanitized filename, got %q", key)
		}
	}
}

func TestUploadPublishFailureMarksDocumentFailed(t *testing.T) {
	repo := &repoFake{}
	uc := NewIngestDocumentUseCase(repo, &storageFake{}, &queueFake{err: errors.New("nats down")})

	_, err := uc.Upload(context.Background(), "x.txt", "text/plain", bytes.NewReader([]byte("hello")))
	if err == nil {
		t.Fatalf("expected error when publish fails")
	}
	if len(repo.statuses) != 1 || repo.statuses[0] != domain.StatusFailed {
		t.Fatalf("expected document marked failed after publish failure, got %v", repo.statuses)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	uc := NewIngestDocumentUseCase(&repoFake{}, &storageFake{}, &queueFake{})

	cases := []struct {
		filename string
		mime     string
	}{
		{"malware.exe", "application/octet-stream"},
		{"archive.zip", "application/zip"},
		{"", "application/pdf"},
	}
	for _, tc := range cases {
		_, err := uc.Upload(context.Background(), tc.filename, tc.mime, bytes.NewReader([]byte("data")))
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("Upload(%q, %q): expected invalid input, got %v", tc.filename, tc.mime, err)
		}
	}
}

func TestUploadInfersMimeFromExtension(t *testing.T) {
	repo := &repoFake{}
	uc := NewIngestDocumentUseCase(repo, &storageFake{}, &queueFake{})

	doc, err := uc.Upload(context.Background(), "report.pdf", "", bytes.NewReader([]byte("%PDF")))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.MimeType != "application/pdf" {
		t.Fatalf("expected inferred pdf mime type, got %q", doc.MimeType)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Annual Report 2025.pdf": "Annual_Report_2025.pdf",
		"../../etc/passwd":       "passwd",
		"отчёт.pdf":              "_____.pdf",
		"":                       "document.bin",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
