package decompose

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ametelin/docinsight/internal/core/domain"
)

type storageFake struct {
	files map[string][]byte
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.files[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.files[key])), nil
}

func TestDecomposePlainTextProducesPagedChunks(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)
	storage := &storageFake{files: map[string][]byte{"doc-1_notes.txt": []byte(text)}}
	d := New(storage, 900, 150)

	doc := &domain.Document{ID: "doc-1", Filename: "notes.txt", StoragePath: "doc-1_notes.txt"}
	chunks, visuals, err := d.Decompose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if len(chunks) == 0 {
		t.Fatalf("expected chunks")
	}
	if len(visuals) != 0 {
		t.Fatalf("prose must not produce visuals, got %d", len(visuals))
	}

	pages := map[int]bool{}
	for _, c := range chunks {
		if c.ContentType != domain.ContentText {
			t.Fatalf("unexpected content type %s", c.ContentType)
		}
		pages[c.PageNumber] = true
	}
	if len(pages) < 2 {
		t.Fatalf("long text should span synthetic pages, got %d", len(pages))
	}
}

func TestDecomposePlainTextDetectsCaptions(t *testing.T) {
	text := "Quarterly results were strong.\nFigure 1: revenue trend by quarter\nMore prose follows here."
	storage := &storageFake{files: map[string][]byte{"doc-1_report.txt": []byte(text)}}
	d := New(storage, 900, 150)

	doc := &domain.Document{ID: "doc-1", Filename: "report.txt", StoragePath: "doc-1_report.txt"}
	chunks, visuals, err := d.Decompose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if len(visuals) != 1 {
		t.Fatalf("expected 1 visual, got %d", len(visuals))
	}
	if visuals[0].Kind != "figure" || visuals[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected visual: %+v", visuals[0])
	}

	var visualChunk *domain.DocumentChunk
	for i := range chunks {
		if chunks[i].ContentType == domain.ContentVisual {
			visualChunk = &chunks[i]
		}
	}
	if visualChunk == nil {
		t.Fatalf("expected synthetic visual chunk")
	}
	if visualChunk.VisualRef != visuals[0].ID {
		t.Fatalf("visual chunk must reference the registry entry")
	}
	if !strings.Contains(visualChunk.Content, "revenue trend") {
		t.Fatalf("visual chunk must carry the caption, got %q", visualChunk.Content)
	}
}

func TestDecomposePlainTextIgnoresProseStartingWithTable(t *testing.T) {
	text := "Table stakes for this market are high.\nFigure skating is popular."
	storage := &storageFake{files: map[string][]byte{"k": []byte(text)}}
	d := New(storage, 900, 150)

	_, visuals, err := d.Decompose(context.Background(), &domain.Document{ID: "d", Filename: "a.txt", StoragePath: "k"})
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if len(visuals) != 0 {
		t.Fatalf("caption heuristic must require a number, got %+v", visuals)
	}
}

func TestDecomposePlainTextRejectsBinary(t *testing.T) {
	storage := &storageFake{files: map[string][]byte{"k": {0xff, 0xfe, 0x00, 0x01}}}
	d := New(storage, 900, 150)

	_, _, err := d.Decompose(context.Background(), &domain.Document{ID: "d", Filename: "a.bin", StoragePath: "k"})
	if err == nil {
		t.Fatalf("expected error for binary content")
	}
}

func TestDecomposeSpreadsheetEmitsTableVisualPerSheet(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	_ = book.SetCellValue(sheet, "A1", "quarter")
	_ = book.SetCellValue(sheet, "B1", "revenue")
	_ = book.SetCellValue(sheet, "A2", "Q1")
	_ = book.SetCellValue(sheet, "B2", 1000)
	_ = book.SetCellValue(sheet, "A3", "Q2")
	_ = book.SetCellValue(sheet, "B3", 1400)
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	storage := &storageFake{files: map[string][]byte{"doc-1_data.xlsx": buf.Bytes()}}
	d := New(storage, 900, 150)

	doc := &domain.Document{ID: "doc-1", Filename: "data.xlsx", StoragePath: "doc-1_data.xlsx"}
	chunks, visuals, err := d.Decompose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if len(visuals) != 1 {
		t.Fatalf("expected 1 table visual, got %d", len(visuals))
	}
	if visuals[0].Kind != "table" || visuals[0].PageNumber != 0 {
		t.Fatalf("unexpected visual: %+v", visuals[0])
	}

	foundProxy := false
	foundText := false
	for _, c := range chunks {
		switch c.ContentType {
		case domain.ContentVisual:
			foundProxy = true
			if c.VisualRef != visuals[0].ID {
				t.Fatalf("proxy chunk must reference the visual")
			}
			if !strings.Contains(c.Content, "quarter") {
				t.Fatalf("proxy chunk must embed sample rows, got %q", c.Content)
			}
		case domain.ContentText:
			foundText = true
		}
	}
	if !foundProxy || !foundText {
		t.Fatalf("expected both proxy and text chunks, got proxy=%v text=%v", foundProxy, foundText)
	}
}
