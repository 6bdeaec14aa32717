// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/pdiddy/labmate/pkg/errdefs"
)

// maxPageBytes caps a fetched page at 10 MB.
const maxPageBytes = 10 << 20

var arxivHTMLPattern = regexp.MustCompile(`arxiv\.org/html/`)

// FromURL fetches a web page and reduces it to Markdown. arXiv HTML
// renderings are reduced by isolating the LaTeXML article node; other
// pages go through readability extraction first. Both paths end in an
// HTML-to-Markdown conversion.
func FromURL(ctx context.Context, rawURL string, client *http.Client) (string, error) {
	const op = "convert url"

	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", errdefs.New(errdefs.ErrRequest, op, "not an http(s) URL: %s", rawURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errdefs.FromStatus(op, pageURL.Host, resp.StatusCode, body)
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
	}

	var fragment string
	if arxivHTMLPattern.MatchString(rawURL) {
		fragment, err = isolateArxivArticle(html)
	} else {
		fragment, err = readableContent(html, pageURL)
	}
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrFormat, op, err)
	}

	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrFormat, op, err)
	}
	if strings.TrimSpace(md) == "" {
		return "", errdefs.New(errdefs.ErrFormat, op, "no readable content at %s", rawURL)
	}
	return md, nil
}

// isolateArxivArticle extracts the LaTeXML article node from an arXiv
// HTML rendering, dropping navigation and script chrome.
func isolateArxivArticle(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", err
	}

	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}
	sel.Find("nav,header,footer,script,style").Remove()

	return goquery.OuterHtml(sel)
}

// readableContent runs readability extraction and returns the article
// content HTML.
func readableContent(html []byte, pageURL *url.URL) (string, error) {
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(html), pageURL)
	if err != nil {
		return "", err
	}
	return article.Content, nil
}
