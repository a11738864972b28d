package fetcher

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// Fetcher downloads the capacity report PDF
type Fetcher interface {
	Fetch(url string) ([]byte, error)
}

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	timeout time.Duration
}

// NewCollyFetcher creates a new CollyFetcher instance
func NewCollyFetcher(timeout time.Duration) *CollyFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CollyFetcher{timeout: timeout}
}

func (cf *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	c.SetRequestTimeout(cf.timeout)

	// The reporting site is a government server; keep requests sequential and spaced
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*ehealthsask.*",
		Parallelism: 1,
		Delay:       2 * time.Second,
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
	})

	return c
}

// Fetch implements the Fetcher interface. It returns the raw PDF bytes.
func (cf *CollyFetcher) Fetch(url string) ([]byte, error) {
	var body []byte

	c := cf.newCollector()
	c.OnResponse(func(r *colly.Response) {
		body = make([]byte, len(r.Body))
		copy(body, r.Body)
		log.Printf("Fetched %s (%d bytes)\n", r.Request.URL, len(r.Body))
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	if len(body) == 0 {
		return nil, fmt.Errorf("empty response from %s", url)
	}

	return body, nil
}

// DiscoverPDFURL scrapes the reporting page for the current capacity PDF link.
// It returns fallback when the page has no matching link or cannot be fetched.
func (cf *CollyFetcher) DiscoverPDFURL(pageURL, fallback string) string {
	if pageURL == "" {
		return fallback
	}

	found := fallback

	c := cf.newCollector()
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return
		}
		if !strings.Contains(strings.ToLower(href), "bedcapacity") {
			return
		}
		found = e.Request.AbsoluteURL(href)
	})

	if err := c.Visit(pageURL); err != nil {
		log.Printf("Warning: Failed to fetch discovery page %s: %v. Using pinned PDF URL.\n", pageURL, err)
		return fallback
	}
	c.Wait()

	if found != fallback {
		log.Printf("Discovered capacity PDF link: %s\n", found)
	}
	return found
}
