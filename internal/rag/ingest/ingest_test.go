package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/rag/ragMocks"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB/localDB"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"REPORT.PDF", commonModels.PDF},
		{"notes.txt", commonModels.TXT},
		{"DOC.DOCX", commonModels.ERR},
		{"image.png", commonModels.ERR},
		{"no_extension", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestLoadDocuments_AssignsIdsByPosition(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.txt", "first document"),
		writeFile(t, dir, "b.txt", "second document"),
		writeFile(t, dir, "c.txt", "third document"),
	}

	records, err := LoadDocuments(context.Background(), "s1", paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, r := range records {
		if r.DocId != fmt.Sprintf("doc_%d", i) {
			t.Errorf("record %d has doc id %s", i, r.DocId)
		}
		if r.DocName != filepath.Base(paths[i]) {
			t.Errorf("record %d has name %s", i, r.DocName)
		}
		if r.Page != 1 {
			t.Errorf("text files are a single page 1, got %d", r.Page)
		}
		if r.SessionId != "s1" {
			t.Errorf("record %d has session %s", i, r.SessionId)
		}
	}
}

func TestLoadDocuments_Rejections(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "fine")

	tests := []struct {
		name    string
		paths   []string
		checkFn func(error) bool
	}{
		{
			name:  "Unsupported_Extension",
			paths: []string{good, writeFile(t, dir, "slides.pptx", "x")},
			checkFn: func(err error) bool {
				var target *agentErrors.UnsupportedFormatError
				return errors.As(err, &target) && target.Extension == ".pptx"
			},
		},
		{
			name:  "Missing_File",
			paths: []string{good, filepath.Join(dir, "gone.txt")},
			checkFn: func(err error) bool {
				var target *agentErrors.NotFoundError
				return errors.As(err, &target)
			},
		},
		{
			name:  "Directory",
			paths: []string{dir},
			checkFn: func(err error) bool {
				var target *agentErrors.NotFoundError
				return errors.As(err, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := LoadDocuments(context.Background(), "s1", tt.paths)
			if err == nil || !tt.checkFn(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if len(records) != 0 {
				t.Errorf("got %d records, want none", len(records))
			}
		})
	}
}

func TestUnsupportedFormatMessage(t *testing.T) {
	err := &agentErrors.UnsupportedFormatError{Path: "x.csv", Extension: ".csv"}
	if err.Error() != "Unsupported file type: .csv. Only .txt and .pdf are supported." {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSplit_ShortTextUnchanged(t *testing.T) {
	s := newTextSplitter(800, 150)
	text := strings.Repeat("a short sentence. ", 40)[:700]

	got := s.Split(text)
	if len(got) != 1 || got[0] != text {
		t.Fatalf("text under the window must come back as is, got %d chunks", len(got))
	}

	again := s.Split(got[0])
	if len(again) != 1 || again[0] != got[0] {
		t.Errorf("re-splitting a chunk changed it")
	}
}

func TestSplit_Blank(t *testing.T) {
	s := newTextSplitter(800, 150)
	if got := s.Split(" \n\t "); got != nil {
		t.Errorf("blank text should give no chunks, got %v", got)
	}
}

func TestSplit_WindowAndOverlap(t *testing.T) {
	s := newTextSplitter(800, 150)

	var words []string
	for i := 0; i < 600; i++ {
		words = append(words, fmt.Sprintf("word%04d", i))
	}
	text := strings.Join(words, " ")

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if runeLen(c) > 800 {
			t.Errorf("chunk %d has %d runes", i, runeLen(c))
		}
		if i > 0 {
			first := strings.Fields(c)[0]
			if !strings.Contains(chunks[i-1], first) {
				t.Errorf("chunk %d does not overlap chunk %d", i, i-1)
			}
		}
	}

	joined := strings.Join(chunks, " ")
	for _, w := range words {
		if !strings.Contains(joined, w) {
			t.Fatalf("word %s was lost", w)
		}
	}
}

func TestSplit_PrefersParagraphs(t *testing.T) {
	s := newTextSplitter(800, 150)
	para := strings.Repeat("x", 500)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := s.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want one per paragraph", len(chunks))
	}
	for _, c := range chunks {
		if c != para {
			t.Errorf("paragraph was cut: %d runes", runeLen(c))
		}
	}
}

func TestSplit_Multibyte(t *testing.T) {
	s := newTextSplitter(800, 150)
	text := strings.Repeat("é", 2000)

	for i, c := range s.Split(text) {
		if runeLen(c) > 800 {
			t.Errorf("chunk %d has %d runes", i, runeLen(c))
		}
	}
}

func TestChunkPages_KeepsProvenance(t *testing.T) {
	records := []commonModels.PageRecord{
		{Text: strings.Repeat("alpha beta gamma ", 100), DocId: "doc_0", DocName: "a.pdf", Page: 3, SessionId: "s1"},
		{Text: "tiny", DocId: "doc_1", DocName: "b.txt", Page: 1, SessionId: "s1"},
	}

	passages := ChunkPages(records)
	if len(passages) < 3 {
		t.Fatalf("got %d passages", len(passages))
	}
	last := passages[len(passages)-1]
	if last.Content != "tiny" || last.DocId != "doc_1" || last.Page != 1 {
		t.Errorf("unexpected last passage %+v", last)
	}
	for _, p := range passages[:len(passages)-1] {
		if p.DocId != "doc_0" || p.DocName != "a.pdf" || p.Page != 3 {
			t.Errorf("provenance lost: %+v", p)
		}
	}
}

func TestIngest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "policy.txt", "The refund policy allows returns within 30 days.")

	store := localDB.NewSessionStore(localDB.NewFileSnapshot(filepath.Join(dir, "db")), &ragMocks.MockEmbedder{})

	count, err := Ingest(context.Background(), store, "s1", []string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d passages, want 1", count)
	}

	index, err := store.Open(context.Background(), "s1")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if n, _ := index.Len(context.Background()); n != 1 || !index.Loaded() {
		t.Errorf("persisted index has %d entries, loaded=%v", n, index.Loaded())
	}
}

func TestIngest_ReplacesStaleIndex(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := localDB.NewSessionStore(localDB.NewFileSnapshot(filepath.Join(dir, "db")), &ragMocks.MockEmbedder{})

	stale, err := store.Open(ctx, "s1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := stale.Add(ctx, []commonModels.Passage{
		{Content: "left over", DocId: "doc_0", DocName: "old.txt", Page: 1, SessionId: "s1"},
		{Content: "also left over", DocId: "doc_1", DocName: "old.txt", Page: 1, SessionId: "s1"},
	}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	path := writeFile(t, dir, "policy.txt", "The refund policy allows returns within 30 days.")
	if _, err := Ingest(ctx, store, "s1", []string{path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	index, err := store.Open(ctx, "s1")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	passages, err := index.Search(ctx, "left over", 8)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(passages) != 1 || passages[0].DocName != "policy.txt" {
		t.Errorf("stale passages survived ingestion: %+v", passages)
	}
}

func TestIngest_EmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "policy.txt", "content")

	emb := &ragMocks.MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	store := localDB.NewSessionStore(localDB.NewFileSnapshot(filepath.Join(dir, "db")), emb)

	if _, err := Ingest(context.Background(), store, "s1", []string{path}); err == nil {
		t.Fatal("expected the embedding error to surface")
	}
}

// buildPDF numbers objects from 1 and writes a matching xref table. Object 1
// must be the catalog.
func buildPDF(objects ...string) string {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.String()
}

func textStream(text string) string {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

func twoPagePDF() string {
	return buildPDF(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 5 0 R >> >> /MediaBox [0 0 612 792] /Contents 6 0 R >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 5 0 R >> >> /MediaBox [0 0 612 792] /Contents 7 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		textStream("Refunds are accepted within 30 days."),
		textStream("Shipping takes one week."),
	)
}

func TestLoadDocuments_PDFPages(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "notes.txt", "plain notes"),
		writeFile(t, dir, "policy.pdf", twoPagePDF()),
	}

	records, err := LoadDocuments(context.Background(), "s1", paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want one text page and two pdf pages", len(records))
	}

	tests := []struct {
		docId string
		name  string
		page  int
		text  string
	}{
		{"doc_0", "notes.txt", 1, "plain notes"},
		{"doc_1", "policy.pdf", 1, "Refunds are accepted within 30 days."},
		{"doc_1", "policy.pdf", 2, "Shipping takes one week."},
	}
	for i, tt := range tests {
		r := records[i]
		if r.DocId != tt.docId || r.DocName != tt.name || r.Page != tt.page {
			t.Errorf("record %d is %s/%s page %d, want %s/%s page %d", i, r.DocId, r.DocName, r.Page, tt.docId, tt.name, tt.page)
		}
		if !strings.Contains(r.Text, tt.text) {
			t.Errorf("record %d text %q does not contain %q", i, r.Text, tt.text)
		}
	}
}

func TestLoadDocuments_MalformedPDFPageTree(t *testing.T) {
	previous := documentExtractTimeout
	documentExtractTimeout = 300 * time.Millisecond
	t.Cleanup(func() { documentExtractTimeout = previous })

	tests := []struct {
		name  string
		pages string
	}{
		{"Count_Without_Kids", "<< /Type /Pages /Count 3 >>"},
		{"Dangling_Kid", "<< /Type /Pages /Kids [9 0 R] /Count 3 >>"},
		{"Kid_Not_A_Dict", "<< /Type /Pages /Kids [42] /Count 3 >>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "broken.pdf", buildPDF("<< /Type /Catalog /Pages 2 0 R >>", tt.pages))

			done := make(chan error, 1)
			go func() {
				_, err := LoadDocuments(context.Background(), "s1", []string{path})
				done <- err
			}()

			select {
			case err := <-done:
				var target *agentErrors.ExtractionError
				if !errors.As(err, &target) || target.Name != "broken.pdf" {
					t.Errorf("unexpected error %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("loading a malformed pdf did not return")
			}
		})
	}
}

func TestLoadDocuments_PDFHonoursCancellation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.pdf", buildPDF(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Count 3 >>",
	))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := LoadDocuments(ctx, "s1", []string{path})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want the context deadline", err)
	}
}

func TestLoadDocuments_NotAPDF(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fake.pdf", "just some text")

	_, err := LoadDocuments(context.Background(), "s1", []string{path})
	var target *agentErrors.ExtractionError
	if !errors.As(err, &target) {
		t.Errorf("unexpected error %v", err)
	}
}
