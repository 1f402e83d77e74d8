// Package scraper pulls the current listings off the Workana search feed.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/ratelimit"
	"github.com/constadinisio/huntly/internal/webclient"
)

// Ensure WorkanaFetcher implements model.FeedFetcher.
var _ model.FeedFetcher = (*WorkanaFetcher)(nil)

// WorkanaFetcher walks the paginated search feed. Workana embeds the initial
// results as JSON in the ':results-initials' attribute of a <search> tag, so
// no per-listing page fetches are needed.
type WorkanaFetcher struct {
	client    *webclient.Client
	searchURL string
	host      string
	maxPages  int
	limiter   *ratelimit.HostRateLimiter
	logger    *slog.Logger
}

// NewWorkanaFetcher creates a fetcher for the given search URL.
// maxPages <= 0 means walk until a page comes back empty.
func NewWorkanaFetcher(client *webclient.Client, searchURL string, maxPages int, limiter *ratelimit.HostRateLimiter, logger *slog.Logger) (*WorkanaFetcher, error) {
	u, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	return &WorkanaFetcher{
		client:    client,
		searchURL: searchURL,
		host:      u.Host,
		maxPages:  maxPages,
		limiter:   limiter,
		logger:    logger,
	}, nil
}

// FetchJobs walks the feed page by page and returns every listing found.
// Pagination stops at the first empty page, at maxPages, or on a fetch error
// after at least one page succeeded (partial results beat none).
func (f *WorkanaFetcher) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	var all []model.RawJob

	for page := 1; f.maxPages <= 0 || page <= f.maxPages; page++ {
		if err := f.limiter.Wait(ctx, f.host); err != nil {
			return all, err
		}

		jobs, err := f.fetchPage(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			f.logger.Warn("pagination stopped early", "page", page, "error", err)
			break
		}
		if len(jobs) == 0 {
			f.logger.Debug("feed exhausted", "page", page)
			break
		}

		all = append(all, jobs...)
		f.logger.Debug("feed page parsed", "page", page, "listings", len(jobs))
	}

	return all, nil
}

func (f *WorkanaFetcher) fetchPage(ctx context.Context, page int) ([]model.RawJob, error) {
	target, err := buildPageURL(f.searchURL, page)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("fetch %s", target),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}
	return parseJobs(doc), nil
}

// buildPageURL sets the page query parameter on the search URL.
func buildPageURL(searchURL string, page int) (string, error) {
	u, err := url.Parse(searchURL)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// searchResults mirrors the JSON embedded in the <search> tag.
type searchResults struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title       string `json:"title"` // HTML snippet, usually with the listing link
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	PostedDate  string `json:"postedDate"`
}

// parseJobs extracts the listings embedded in a feed page. A page without the
// <search> tag or its results attribute yields no jobs.
func parseJobs(doc *goquery.Document) []model.RawJob {
	attr, ok := doc.Find("search").First().Attr(":results-initials")
	if !ok || attr == "" {
		return nil
	}

	var data searchResults
	if err := json.Unmarshal([]byte(attr), &data); err != nil {
		return nil
	}

	var jobs []model.RawJob
	for _, item := range data.Results {
		title, link := titleAndLink(item)
		if link == "" || title == "" {
			continue
		}
		jobs = append(jobs, model.RawJob{
			Title:       title,
			Description: item.Description,
			Budget:      item.Budget,
			PostedAt:    item.PostedDate,
			URL:         link,
		})
	}
	return jobs
}

// titleAndLink digs the display title and listing URL out of the title HTML
// snippet, falling back to the slug when no anchor is present.
func titleAndLink(item searchResult) (title, link string) {
	frag, err := goquery.NewDocumentFromReader(strings.NewReader(item.Title))
	if err == nil {
		node := frag.Find("span[title]").First()
		if t, ok := node.Attr("title"); ok && t != "" {
			title = t
		} else {
			title = strings.TrimSpace(frag.Text())
		}

		if href, ok := frag.Find("a").First().Attr("href"); ok && href != "" {
			if strings.HasPrefix(href, "/") {
				href = "https://www.workana.com" + href
			}
			link = href
		}
	}

	if link == "" && item.Slug != "" {
		link = "https://www.workana.com/job/" + item.Slug
	}
	if title == "" {
		title = item.Slug
	}
	return title, link
}
