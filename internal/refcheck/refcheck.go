package refcheck

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
)

const defaultOEmbedURL = "https://www.youtube.com/oembed"

// Checker independently verifies external references proposed by the
// generation service. Its failures are never fatal to a record update; an
// unverifiable reference just falls back to the record's existing value.
type Checker struct {
	client    *http.Client
	oembedURL string
}

// NewChecker creates a reference checker with the given per-call timeout.
func NewChecker(timeout time.Duration) *Checker {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		oembedURL: defaultOEmbedURL,
	}
}

// VerifyVideos checks each proposed video reference and returns the refs to
// apply: the proposed ID when it verified, the existing one otherwise. A
// slot is never left with an unverified proposal and never fabricated.
func (c *Checker) VerifyVideos(ctx context.Context, proposed, existing database.VideoRefs) database.VideoRefs {
	verified := existing

	if proposed.ShortID != "" && proposed.ShortID != existing.ShortID {
		if c.videoAvailable(ctx, proposed.ShortID) {
			verified.ShortID = proposed.ShortID
		} else {
			log.Printf("short video %q unavailable, keeping existing reference", proposed.ShortID)
		}
	}

	if proposed.LongID != "" && proposed.LongID != existing.LongID {
		if c.videoAvailable(ctx, proposed.LongID) {
			verified.LongID = proposed.LongID
		} else {
			log.Printf("long video %q unavailable, keeping existing reference", proposed.LongID)
		}
	}

	return verified
}

// videoAvailable asks the oEmbed endpoint whether a video ID resolves.
// Any transport failure counts as unverifiable.
func (c *Checker) videoAvailable(ctx context.Context, videoID string) bool {
	watchURL := "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
	endpoint := fmt.Sprintf("%s?url=%s&format=json", c.oembedURL, url.QueryEscape(watchURL))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// VerifySource fetches a proposed source URL and accepts it only when the
// page extracts to non-trivial readable text. Catches hallucinated URLs
// that resolve to error pages or stubs.
func (c *Checker) VerifySource(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; reelqc/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(article.TextContent)) > 200
}
