// Package ingest reads corpus files into scoped message texts.
package ingest

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"babble/internal/chunk"
)

// Parsed holds the texts found in one file. Entries maps a scope to its
// texts in file order; formats without scopes use the empty scope.
type Parsed struct {
	Title      string
	SourcePath string
	Entries    map[string][]string
}

func (p *Parsed) Count() int {
	n := 0
	for _, texts := range p.Entries {
		n += len(texts)
	}
	return n
}

// ParseFile reads path by extension. Documents (.docx, .pdf) are split into
// sentences of at most maxTokens tokens.
func ParseFile(path string, maxTokens int) (*Parsed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	entries := map[string][]string{}
	switch ext {
	case ".txt":
		entries[""] = parseLines(raw)
	case ".json":
		entries, err = parseJSON(raw)
		if err != nil {
			return nil, err
		}
	case ".docx":
		text, err := parseDOCX(raw)
		if err != nil {
			return nil, err
		}
		entries[""] = chunk.Sentences(text, maxTokens)
	case ".pdf":
		text, err := parsePDF(path)
		if err != nil {
			return nil, err
		}
		entries[""] = chunk.Sentences(normalizeWhitespace(text), maxTokens)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Parsed{
		Title:      title,
		SourcePath: path,
		Entries:    entries,
	}, nil
}

func parseLines(raw []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}

type scopedDoc struct {
	ChatID   json.RawMessage `json:"chatId"`
	Scope    string          `json:"scope"`
	Messages []any           `json:"messages"`
}

// parseJSON accepts {"scope": ["text", ...]}, a plain array of texts, or an
// array of {"chatId"|"scope", "messages"} documents. Non-string items are
// skipped.
func parseJSON(raw []byte) (map[string][]string, error) {
	raw = bytes.TrimSpace(raw)
	out := map[string][]string{}
	if len(raw) == 0 {
		return out, nil
	}

	if raw[0] == '{' {
		var byScope map[string][]any
		if err := json.Unmarshal(raw, &byScope); err != nil {
			return nil, fmt.Errorf("decode json object: %w", err)
		}
		for scope, items := range byScope {
			out[scope] = append(out[scope], stringsOf(items)...)
		}
		return out, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode json array: %w", err)
	}
	for _, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			if text = strings.TrimSpace(text); text != "" {
				out[""] = append(out[""], text)
			}
			continue
		}
		var doc scopedDoc
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		scope := doc.Scope
		if scope == "" && len(doc.ChatID) > 0 {
			scope = strings.Trim(string(doc.ChatID), `"`)
		}
		out[scope] = append(out[scope], stringsOf(doc.Messages)...)
	}
	return out, nil
}

func stringsOf(items []any) []string {
	var out []string
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, openErr := f.Open()
		if openErr != nil {
			return "", fmt.Errorf("open document.xml: %w", openErr)
		}
		xmlData, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(xmlData) == 0 {
		return "", fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var b strings.Builder
	inText := false
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return "", fmt.Errorf("decode document.xml: %w", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return normalizeWhitespace(b.String()), nil
}

func parsePDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
