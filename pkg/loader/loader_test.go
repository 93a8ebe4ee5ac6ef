package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("paper.txt", []byte("full text here"))
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "full text here" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextUnsupported(t *testing.T) {
	_, err := ExtractText("paper.docx", []byte("x"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLocalLoaderReadsRelativeKey(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "projects", "p1"), 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "projects", "p1", "paper.txt")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLocalLoader(dir)
	data, err := l.LoadDocument(context.Background(), "projects/p1/paper.txt")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestLocalLoaderRejectsEscapingKey(t *testing.T) {
	l := NewLocalLoader(t.TempDir())
	_, err := l.LoadDocument(context.Background(), "../../etc/passwd")
	if err == nil {
		t.Fatal("expected error for escaping key")
	}
}

func TestWebLoaderFallsBackForNonURLKeys(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "paper.txt"), []byte("stored"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewWebLoader(NewLocalLoader(dir))
	data, err := l.LoadDocument(context.Background(), "paper.txt")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if string(data) != "stored" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestWebLoaderWithoutFallbackRejectsKeys(t *testing.T) {
	l := NewWebLoader(nil)
	_, err := l.LoadDocument(context.Background(), "paper.txt")
	if err == nil {
		t.Fatal("expected error for non-url key without fallback")
	}
}
