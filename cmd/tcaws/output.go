package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sagarc03/tcaws"
)

// ResolveResult is the outcome of resolving one request path.
type ResolveResult struct {
	Path       string `json:"path"`
	Bucket     string `json:"bucket,omitempty"`
	Key        string `json:"key,omitempty"`
	HTTPLoader bool   `json:"http_loader"`
}

// GetResult describes a loaded object.
type GetResult struct {
	Path        string       `json:"path"`
	Source      tcaws.Source `json:"source"`
	Bucket      string       `json:"bucket,omitempty"`
	Key         string       `json:"key,omitempty"`
	URL         string       `json:"url,omitempty"`
	LocalPath   string       `json:"local_path"`
	ContentType string       `json:"content_type"`
	ETag        string       `json:"etag,omitempty"`
	Size        int64        `json:"size_bytes"`
}

// PutResult describes one stored file.
type PutResult struct {
	LocalPath string `json:"local_path"`
	tcaws.PutResult
}

// DeleteResult describes one removal.
type DeleteResult struct {
	Path    string
	Bucket  string
	Key     string
	Deleted bool
	Err     error
}

// PresignResult is a generated URL.
type PresignResult struct {
	Bucket  string    `json:"bucket"`
	Key     string    `json:"key"`
	Method  string    `json:"method"`
	URL     string    `json:"url"`
	Expires time.Time `json:"expires"`
}

// Formatter formats results for output.
type Formatter interface {
	FormatResolve(w io.Writer, results []ResolveResult) error
	FormatGet(w io.Writer, result GetResult) error
	FormatPut(w io.Writer, result PutResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatPresign(w io.Writer, result PresignResult) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatResolve(w io.Writer, results []ResolveResult) error {
	for _, r := range results {
		if r.HTTPLoader {
			_, _ = fmt.Fprintf(w, "%s -> http loader\n", r.Path)
			continue
		}
		if f.Quiet {
			_, _ = fmt.Fprintf(w, "%s/%s\n", r.Bucket, r.Key)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s -> bucket=%s key=%s\n", r.Path, r.Bucket, r.Key)
	}
	return nil
}

func (f *HumanFormatter) FormatGet(w io.Writer, result GetResult) error {
	if f.Quiet {
		return nil
	}
	from := result.URL
	if result.Source == tcaws.SourceStore {
		from = result.Bucket + "/" + result.Key
	}
	_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s, %s)\n", from, result.LocalPath, formatSize(result.Size), result.ContentType)
	if result.ETag != "" {
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", result.ETag)
	}
	return nil
}

func (f *HumanFormatter) FormatPut(w io.Writer, result PutResult) error {
	if f.Quiet {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s/%s (%s, %s)\n",
		result.LocalPath, result.Bucket, result.Key, formatSize(result.Size), result.ContentType)
	if result.ETag != "" {
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", result.ETag)
	}
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Path, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s/%s\n", r.Bucket, r.Key)
		}
	}
	return nil
}

func (f *HumanFormatter) FormatPresign(w io.Writer, result PresignResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.URL)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s %s/%s (expires %s)\n", result.Method, result.Bucket, result.Key, result.Expires.Format(time.RFC3339))
	_, _ = fmt.Fprintln(w, result.URL)
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatResolve(w io.Writer, results []ResolveResult) error {
	return writeJSON(w, struct {
		Results []ResolveResult `json:"results"`
	}{Results: results})
}

func (f *JSONFormatter) FormatGet(w io.Writer, result GetResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatPut(w io.Writer, result PutResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		Path    string `json:"path"`
		Bucket  string `json:"bucket"`
		Key     string `json:"key"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			Path:    r.Path,
			Bucket:  r.Bucket,
			Key:     r.Key,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatPresign(w io.Writer, result PresignResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", 8)
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
