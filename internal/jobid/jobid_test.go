package jobid

import (
	"errors"
	"testing"

	"github.com/constadinisio/huntly/internal/model"
)

func TestFromURLStripsQuery(t *testing.T) {
	_, withQuery, err := FromURL("https://x.test/job/42?ref=abc&utm_source=feed")
	if err != nil {
		t.Fatalf("FromURL with query: %v", err)
	}
	canonical, bare, err := FromURL("https://x.test/job/42")
	if err != nil {
		t.Fatalf("FromURL bare: %v", err)
	}
	if withQuery != bare {
		t.Errorf("ids differ for same canonical URL: %q vs %q", withQuery, bare)
	}
	if canonical != "https://x.test/job/42" {
		t.Errorf("canonical = %q, want %q", canonical, "https://x.test/job/42")
	}
}

func TestFromURLStable(t *testing.T) {
	_, a, err := FromURL("https://www.workana.com/job/armado-de-landing")
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	_, b, err := FromURL("https://www.workana.com/job/armado-de-landing")
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if a != b {
		t.Errorf("same URL produced different ids: %q vs %q", a, b)
	}
	if len(a) != 12 {
		t.Errorf("id length = %d, want 12", len(a))
	}
}

func TestFromURLDistinctJobs(t *testing.T) {
	_, a, _ := FromURL("https://x.test/job/1")
	_, b, _ := FromURL("https://x.test/job/2")
	if a == b {
		t.Errorf("distinct URLs produced the same id %q", a)
	}
}

func TestFromURLRejectsBadSchemes(t *testing.T) {
	cases := []string{
		"",
		"N/A",
		"ftp://x.test/job/1",
		"javascript:alert(1)",
		"/job/relative-only",
	}
	for _, raw := range cases {
		if _, _, err := FromURL(raw); !errors.Is(err, model.ErrInvalidURL) {
			t.Errorf("FromURL(%q) = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestFromURLDropsFragment(t *testing.T) {
	_, a, _ := FromURL("https://x.test/job/42#details")
	_, b, _ := FromURL("https://x.test/job/42")
	if a != b {
		t.Errorf("fragment changed id: %q vs %q", a, b)
	}
}
