// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

func writeStubPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAskPDF(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()

	// Upload: the file starts PROCESSING so AskPDF has to poll.
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/related") {
			t.Errorf("upload Content-Type = %q", ct)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]string{
				"name":  "files/abc123",
				"uri":   "https://generativelanguage.googleapis.com/v1beta/files/abc123",
				"state": "PROCESSING",
			},
		})
	})
	mux.HandleFunc("GET /files/abc123", func(w http.ResponseWriter, _ *http.Request) {
		state := "PROCESSING"
		if polls.Add(1) >= 2 {
			state = "ACTIVE"
		}
		json.NewEncoder(w).Encode(map[string]string{
			"name":  "files/abc123",
			"uri":   "https://generativelanguage.googleapis.com/v1beta/files/abc123",
			"state": state,
		})
	})
	mux.HandleFunc("POST /models/{model}", func(w http.ResponseWriter, r *http.Request) {
		var body geminiGenerateRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Contents) != 1 || len(body.Contents[0].Parts) != 2 {
			t.Errorf("contents = %+v", body.Contents)
		} else {
			if body.Contents[0].Parts[0].FileData == nil {
				t.Error("first part missing file_data")
			}
			if body.Contents[0].Parts[1].Text != "what is the main result?" {
				t.Errorf("question part = %+v", body.Contents[0].Parts[1])
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "the answer"}}}},
			},
		})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	origAPI, origUpload, origInterval := geminiAPIBase, geminiUploadBase, filePollInterval
	geminiAPIBase, geminiUploadBase, filePollInterval = ts.URL, ts.URL, time.Millisecond
	defer func() {
		geminiAPIBase, geminiUploadBase, filePollInterval = origAPI, origUpload, origInterval
	}()

	t.Setenv("GEMINI_API_KEY", "AIza-test")
	c, err := NewGeminiClient(types.SummaryConfig{})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	answer, err := c.AskPDF(context.Background(), "what is the main result?", []string{writeStubPDF(t)}, types.SummaryConfig{})
	if err != nil {
		t.Fatalf("AskPDF: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}
	if polls.Load() < 2 {
		t.Errorf("polls = %d, want at least 2", polls.Load())
	}
}

func TestAskPDFMissingFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "AIza-test")
	c, err := NewGeminiClient(types.SummaryConfig{})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = c.AskPDF(context.Background(), "q", []string{filepath.Join(t.TempDir(), "absent.pdf")}, types.SummaryConfig{})
	if !errdefs.IsNotFound(err) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAskPDFNoFiles(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "AIza-test")
	c, err := NewGeminiClient(types.SummaryConfig{})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = c.AskPDF(context.Background(), "q", nil, types.SummaryConfig{})
	if !errdefs.IsRequest(err) {
		t.Errorf("error = %v, want ErrRequest", err)
	}
}

func TestAskPDFFailedProcessing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]string{"name": "files/bad", "uri": "u", "state": "FAILED"},
		})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	origUpload := geminiUploadBase
	geminiUploadBase = ts.URL
	defer func() { geminiUploadBase = origUpload }()

	t.Setenv("GEMINI_API_KEY", "AIza-test")
	c, err := NewGeminiClient(types.SummaryConfig{})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = c.AskPDF(context.Background(), "q", []string{writeStubPDF(t)}, types.SummaryConfig{})
	if !errdefs.IsFormat(err) {
		t.Errorf("error = %v, want ErrFormat", err)
	}
}
