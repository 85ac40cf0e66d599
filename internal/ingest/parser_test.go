package ingest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestParseDOCX(t *testing.T) {
	raw := buildDOCX(t, `<w:document><w:body><w:p><w:r><w:t>Chapter 1</w:t></w:r></w:p><w:p><w:r><w:t>Hello world. Bye now!</w:t></w:r></w:p></w:body></w:document>`)
	path := writeFile(t, "notes.docx", raw)

	parsed, err := ParseFile(path, 20)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	want := []string{"Chapter 1", "Hello world.", "Bye now!"}
	if !slices.Equal(parsed.Entries[""], want) {
		t.Fatalf("expected %q, got %q", want, parsed.Entries[""])
	}
	if parsed.Title != "notes" {
		t.Fatalf("expected title notes, got %q", parsed.Title)
	}
}

func TestParseTXT(t *testing.T) {
	path := writeFile(t, "chat.txt", []byte("first line\n\n  second line  \r\nthird\n"))
	parsed, err := ParseFile(path, 0)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if parsed.Count() != 3 || parsed.Entries[""][1] != "second line" {
		t.Fatalf("unexpected entries %q", parsed.Entries[""])
	}
}

func TestParseJSONShapes(t *testing.T) {
	cases := map[string]map[string][]string{
		`{"-100": ["hi there", 5, " yo "], "-200": []}`: {"-100": {"hi there", "yo"}, "-200": nil},
		`["one", "", {"chatId": -300, "messages": ["two", null]}, {"scope": "s", "messages": ["three"]}]`: {
			"":     {"one"},
			"-300": {"two"},
			"s":    {"three"},
		},
	}
	for input, want := range cases {
		got, err := parseJSON([]byte(input))
		if err != nil {
			t.Fatalf("parseJSON(%s): %v", input, err)
		}
		for scope, texts := range want {
			if !slices.Equal(got[scope], texts) {
				t.Fatalf("scope %q: expected %q, got %q", scope, texts, got[scope])
			}
		}
	}

	if _, err := parseJSON([]byte(`{"a": "not a list"}`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParseFileUnsupported(t *testing.T) {
	path := writeFile(t, "sample.csv", []byte("hello"))
	if _, err := ParseFile(path, 0); err == nil {
		t.Fatal("expected unsupported file type error")
	}
}

func TestParsePDFMissing(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("not a pdf"))
	if _, err := ParseFile(path, 0); err == nil {
		t.Fatal("expected pdf error")
	}
}

func writeFile(t *testing.T, name string, raw []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func buildDOCX(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	xml := `<?xml version="1.0" encoding="UTF-8"?>` + bodyXML
	if _, err := f.Write([]byte(xml)); err != nil {
		t.Fatalf("write xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return b.Bytes()
}
