package newsthreads

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Document is a parsed news article. Only Embedding is used by clustering;
// the remaining fields serve ranking and presentation.
type Document struct {
	ID          string    `json:"id" jsonschema:"description=Unique document identifier (usually the source file name)"`
	URL         string    `json:"url" jsonschema:"description=Canonical article URL"`
	SiteName    string    `json:"site_name" jsonschema:"description=Publishing site used as the authority table key"`
	Date        int64     `json:"date,omitempty" jsonschema:"description=Publication time in unix seconds"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Text        string    `json:"text,omitempty"`
	OutLinks    []string  `json:"out_links,omitempty"`
	Language    string    `json:"language" jsonschema:"description=Language code such as en or ru"`
	Category    string    `json:"category,omitempty" jsonschema:"description=Topic category; not_news excludes the document from threads"`
	IsNews      bool      `json:"is_news"`
	Embedding   []float32 `json:"embedding,omitempty" jsonschema:"description=Precomputed embedding; computed and cached when absent"`
}

const notNewsCategory = "not_news"

// PublishedAt returns the publication time, or the zero time if unknown.
func (d Document) PublishedAt() time.Time {
	if d.Date <= 0 {
		return time.Time{}
	}
	return time.Unix(d.Date, 0).UTC()
}

// embeddingText is the text handed to the embedding model.
func (d Document) embeddingText(maxRunes int) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{d.Title, d.Description, d.Text} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	text := strings.Join(parts, "\n")
	if maxRunes > 0 {
		r := []rune(text)
		if len(r) > maxRunes {
			text = string(r[:maxRunes])
		}
	}
	return text
}

// LoadDocuments reads a JSON array of documents. A non-negative ndocs keeps
// only the first ndocs documents.
func LoadDocuments(path string, ndocs int) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents file: %w", err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse documents file %s: %w", path, err)
	}

	if ndocs >= 0 && ndocs < len(docs) {
		docs = docs[:ndocs]
	}
	return docs, nil
}

// FilterThreadCandidates keeps news documents in one of the given languages.
func FilterThreadCandidates(docs []Document, languages []string) []Document {
	var out []Document
	for _, doc := range docs {
		if !doc.IsNews || doc.Category == notNewsCategory {
			continue
		}
		if !slices.Contains(languages, doc.Language) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

// FilterWindow keeps documents published within window of the newest dated
// document. Undated documents are kept. A non-positive window disables the filter.
func FilterWindow(docs []Document, window time.Duration) []Document {
	if window <= 0 {
		return docs
	}
	var newest time.Time
	for _, doc := range docs {
		if t := doc.PublishedAt(); t.After(newest) {
			newest = t
		}
	}
	if newest.IsZero() {
		return docs
	}
	cutoff := newest.Add(-window)

	var out []Document
	for _, doc := range docs {
		t := doc.PublishedAt()
		if t.IsZero() || !t.Before(cutoff) {
			out = append(out, doc)
		}
	}
	return out
}

// LanguageBucket is a homogeneous-language slice of documents in input order.
type LanguageBucket struct {
	Language  string
	Documents []Document
}

// SplitByLanguage groups documents by language. Buckets follow the order of
// languages; languages with no documents are omitted.
func SplitByLanguage(docs []Document, languages []string) []LanguageBucket {
	byLang := make(map[string][]Document)
	for _, doc := range docs {
		byLang[doc.Language] = append(byLang[doc.Language], doc)
	}

	var buckets []LanguageBucket
	for _, lang := range languages {
		if len(byLang[lang]) == 0 {
			continue
		}
		buckets = append(buckets, LanguageBucket{Language: lang, Documents: byLang[lang]})
		delete(byLang, lang)
	}
	return buckets
}
