package fetch

import (
	"context"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// maxDiscoveredURLs caps how many links DiscoverPages returns per domain.
const maxDiscoveredURLs = 50

// DiscoverPages fetches a base URL and returns same-domain links found on
// it, resolved to absolute form. Used to grow the monitored set from a
// portal's landing pages.
func (f *Fetcher) DiscoverPages(ctx context.Context, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &FetchError{URL: baseURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, &FetchError{URL: baseURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: baseURL, StatusCode: resp.StatusCode, Err: ErrNoContent}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: baseURL, Err: err}
	}

	seen := make(map[string]struct{})
	var discovered []string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}

		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host {
			return true
		}
		resolved.Fragment = ""

		full := resolved.String()
		if _, ok := seen[full]; ok {
			return true
		}
		seen[full] = struct{}{}
		discovered = append(discovered, full)

		return len(discovered) < maxDiscoveredURLs
	})

	return discovered, nil
}
