package decompose

import (
	"strings"
	"testing"
)

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(100, 20)
	if got := s.Split("   \n  "); got != nil {
		t.Fatalf("expected nil for blank text, got %v", got)
	}
}

func TestSplitShortTextIsOneChunk(t *testing.T) {
	s := NewSplitter(100, 20)
	got := s.Split("short text")
	if len(got) != 1 || got[0] != "short text" {
		t.Fatalf("unexpected chunks: %v", got)
	}
}

func TestSplitSnapsToWordBoundary(t *testing.T) {
	s := NewSplitter(20, 5)
	text := "alpha bravo charlie delta echo foxtrot golf hotel"
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	for _, chunk := range chunks {
		for _, word := range strings.Fields(chunk) {
			if !strings.Contains(text, word) {
				t.Fatalf("chunk %q cut word %q in half", chunk, word)
			}
		}
	}
}

func TestSplitUnbrokenTextStillProgresses(t *testing.T) {
	s := NewSplitter(10, 3)
	text := strings.Repeat("x", 95)
	chunks := s.Split(text)
	if len(chunks) == 0 {
		t.Fatalf("expected chunks for unbroken text")
	}
	total := 0
	for _, chunk := range chunks {
		if len(chunk) > 10 {
			t.Fatalf("chunk exceeds size: %q", chunk)
		}
		total += len(chunk)
	}
	if total < 95 {
		t.Fatalf("chunks lost content: total %d", total)
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	s := NewSplitter(30, 10)
	text := "one two three four five six seven eight nine ten eleven twelve"
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected overlap to need at least 2 chunks, got %v", chunks)
	}
	// Overlapping windows share at least one word.
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	shared := false
	for _, w := range first {
		for _, v := range second {
			if w == v {
				shared = true
			}
		}
	}
	if !shared {
		t.Fatalf("expected overlapping chunks to share words: %v", chunks)
	}
}
