package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const feedPage = `<!DOCTYPE html>
<html><body>
<div id="app">
<search :results-initials='{"results":[
  {"title":"<h2><a href=\"/job/build-a-scraper?ref=projects\"><span title=\"Build a scraper\">Build a scraper</span></a></h2>",
   "slug":"build-a-scraper",
   "description":"Need a scraper for product pages.",
   "budget":"USD 100 - 300",
   "postedDate":"Hace 10 minutos"},
  {"title":"<h2><span>No anchor here</span></h2>",
   "slug":"fix-my-website",
   "description":"CSS is broken.",
   "budget":"USD 50",
   "postedDate":"Hace 2 horas"}
]}'></search>
</div>
</body></html>`

func mustDoc(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestParseJobsExtractsListings(t *testing.T) {
	jobs := parseJobs(mustDoc(t, feedPage))
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}

	first := jobs[0]
	if first.Title != "Build a scraper" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.URL != "https://www.workana.com/job/build-a-scraper?ref=projects" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Budget != "USD 100 - 300" {
		t.Errorf("Budget = %q", first.Budget)
	}
	if first.PostedAt != "Hace 10 minutos" {
		t.Errorf("PostedAt = %q", first.PostedAt)
	}

	second := jobs[1]
	if second.Title != "No anchor here" {
		t.Errorf("Title = %q", second.Title)
	}
	if second.URL != "https://www.workana.com/job/fix-my-website" {
		t.Errorf("slug fallback URL = %q", second.URL)
	}
}

func TestParseJobsMissingSearchTag(t *testing.T) {
	if jobs := parseJobs(mustDoc(t, `<html><body><p>maintenance</p></body></html>`)); jobs != nil {
		t.Errorf("got %d jobs, want none", len(jobs))
	}
}

func TestParseJobsMalformedResults(t *testing.T) {
	doc := mustDoc(t, `<html><body><search :results-initials='{not json'></search></body></html>`)
	if jobs := parseJobs(doc); jobs != nil {
		t.Errorf("got %d jobs from malformed payload, want none", len(jobs))
	}
}

func TestParseJobsSkipsUnlinkableEntries(t *testing.T) {
	doc := mustDoc(t, `<html><body><search :results-initials='{"results":[{"title":"<span>ghost</span>","slug":"","description":"","budget":"","postedDate":""}]}'></search></body></html>`)
	if jobs := parseJobs(doc); len(jobs) != 0 {
		t.Errorf("got %d jobs without any link, want 0", len(jobs))
	}
}

func TestBuildPageURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		page int
		want string
	}{
		{
			name: "adds page param",
			base: "https://www.workana.com/jobs?category=it-programming",
			page: 2,
			want: "https://www.workana.com/jobs?category=it-programming&page=2",
		},
		{
			name: "replaces existing page param",
			base: "https://www.workana.com/jobs?page=9",
			page: 1,
			want: "https://www.workana.com/jobs?page=1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPageURL(tt.base, tt.page)
			if err != nil {
				t.Fatalf("buildPageURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
