// Package jobid derives stable job identifiers from listing URLs.
package jobid

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/constadinisio/huntly/internal/model"
)

// idLen is the number of hex characters kept from the hash. 12 is plenty for
// the cardinality of a single marketplace feed; a collision silently merges
// two jobs under one id, an accepted tradeoff.
const idLen = 12

// Canonicalize validates rawURL and strips its query string and fragment, so
// tracking links pointing at the same posting collapse to one URL.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", model.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", model.ErrInvalidURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// FromURL canonicalizes rawURL and returns (canonical URL, derived id).
// Two URLs differing only in query parameters yield the same id.
func FromURL(rawURL string) (canonical, id string, err error) {
	canonical, err = Canonicalize(rawURL)
	if err != nil {
		return "", "", err
	}
	sum := sha1.Sum([]byte(canonical))
	return canonical, hex.EncodeToString(sum[:])[:idLen], nil
}
