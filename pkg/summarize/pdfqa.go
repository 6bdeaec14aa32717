// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// filePollInterval is the wait between Files API state polls while an
// uploaded PDF is processed. Tests shorten it.
var filePollInterval = 5 * time.Second

// filePollMax bounds how long AskPDF waits for a file to become ACTIVE.
const filePollMax = 2 * time.Minute

// AskPDF uploads one or more PDFs through the Gemini Files API, waits for
// processing, and answers question grounded in the documents. This is
// Gemini-only: the other providers have no comparable file grounding.
func (c *GeminiClient) AskPDF(ctx context.Context, question string, pdfPaths []string, cfg types.SummaryConfig) (string, error) {
	const op = "gemini pdf qa"

	if len(pdfPaths) == 0 {
		return "", errdefs.New(errdefs.ErrRequest, op, "no PDF files given")
	}

	parts := make([]geminiPart, 0, len(pdfPaths)+1)
	for _, path := range pdfPaths {
		uri, err := c.uploadFile(ctx, path)
		if err != nil {
			return "", err
		}
		parts = append(parts, geminiPart{
			FileData: &geminiFileData{MIMEType: "application/pdf", FileURI: uri},
		})
	}
	parts = append(parts, geminiPart{Text: question})

	return c.generate(ctx, "", []geminiContent{{Role: "user", Parts: parts}},
		cfg.MaxTokens, cfg.Temperature)
}

type geminiFile struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	State string `json:"state"`
}

// uploadFile sends one PDF through the multipart media upload endpoint
// and polls until the file is ACTIVE.
func (c *GeminiClient) uploadFile(ctx context.Context, path string) (string, error) {
	const op = "gemini file upload"

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errdefs.New(errdefs.ErrNotFound, op, "no such file: %s", path)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// multipart/related body: a JSON metadata part followed by the media.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	meta := map[string]any{"file": map[string]string{"display_name": filepath.Base(path)}}
	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", "application/pdf")
	mediaPart, err := mw.CreatePart(mediaHeader)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := mediaPart.Write(data); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uploadURL := geminiUploadBase + "/files?uploadType=multipart&key=" + url.QueryEscape(c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	var out struct {
		File geminiFile `json:"file"`
	}
	if err := doJSON(ctx, c.http, op, types.ProviderGemini, req, 0, &out); err != nil {
		return "", err
	}
	if out.File.URI == "" {
		return "", errdefs.New(errdefs.ErrParse, op, "upload response carries no file URI")
	}

	return c.awaitActive(ctx, out.File)
}

// awaitActive polls the file state until Gemini finishes processing it.
func (c *GeminiClient) awaitActive(ctx context.Context, f geminiFile) (string, error) {
	const op = "gemini file processing"

	deadline := time.Now().Add(filePollMax)
	for {
		switch f.State {
		case "ACTIVE":
			return f.URI, nil
		case "FAILED":
			return "", errdefs.New(errdefs.ErrFormat, op, "file %s failed processing", f.Name)
		}

		if time.Now().After(deadline) {
			return "", errdefs.New(errdefs.ErrRequest, op, "file %s still %s after %v", f.Name, f.State, filePollMax)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(filePollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			geminiAPIBase+"/"+f.Name+"?key="+url.QueryEscape(c.key), nil)
		if err != nil {
			return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
		}
		if err := doJSON(ctx, c.http, op, types.ProviderGemini, req, 0, &f); err != nil {
			return "", err
		}
	}
}
