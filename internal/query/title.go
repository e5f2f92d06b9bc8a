package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/spotsearch/internal/shared"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultTitleTimeout bounds a page fetch when none is configured.
	DefaultTitleTimeout = 5 * time.Second

	// maxPageBytes caps how much of a page is read while looking for <title>.
	maxPageBytes = 1 << 20
)

var (
	titlePunct      = regexp.MustCompile(`[#!$]`)
	titleWhitespace = regexp.MustCompile(`\s+`)
)

// TitleFetcher reads the <title> of a web page and cleans it into search keywords.
type TitleFetcher struct {
	client  *http.Client
	timeout time.Duration
	brand   string
}

// NewTitleFetcher creates a TitleFetcher. A nil client uses [http.DefaultClient]; a non-positive timeout uses
// [DefaultTitleTimeout]. brand is the site name stripped from the end of titles.
func NewTitleFetcher(client *http.Client, timeout time.Duration, brand string) *TitleFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTitleTimeout
	}
	return &TitleFetcher{client: client, timeout: timeout, brand: brand}
}

// Fetch downloads pageURL and returns its cleaned title.
//
// Returns [shared.ErrTimeout] when the timeout elapses and a [*shared.UpstreamError] on a non-200 status.
// An empty string with a nil error means the page had no title.
func (f *TitleFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: fetching %s", shared.ErrTimeout, pageURL)
		}
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &shared.UpstreamError{Endpoint: pageURL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	title, err := ExtractTitle(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: reading %s", shared.ErrTimeout, pageURL)
		}
		return "", err
	}

	return CleanTitle(title, f.brand), nil
}

// ExtractTitle returns the text of the first <title> element in an HTML document.
func ExtractTitle(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("failed to parse page: %w", err)
			}
			return b.String(), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Title {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && atom.Lookup(name) == atom.Title {
				return b.String(), nil
			}
		}
	}
}

// CleanTitle reduces a page title such as "Song - song and lyrics by Artist | Brand" to "Song Artist".
//
// The characters #, ! and $ are removed. When the title has a " - " separator and mentions "by", the text before
// the first " - " is joined with the text after the first " by " that follows it. A trailing "| brand" is
// dropped. Unicode is normalized to NFKC and runs of whitespace are collapsed.
func CleanTitle(title, brand string) string {
	title = norm.NFKC.String(title)
	title = titlePunct.ReplaceAllString(title, "")

	if strings.Contains(title, " - ") && strings.Contains(title, "by") {
		head, tail, _ := strings.Cut(title, " - ")
		if _, after, ok := strings.Cut(tail, " by "); ok {
			tail = after
		}
		title = strings.TrimSpace(head) + " " + strings.TrimSpace(tail)
	}

	if brand != "" {
		if before, _, ok := strings.Cut(title, "| "+brand); ok {
			title = before
		}
	}

	return strings.TrimSpace(titleWhitespace.ReplaceAllString(title, " "))
}
