package workana

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/constadinisio/huntly/internal/webclient"
)

// sessionState matches the storage-state export produced by logging in with a
// real browser. Only cookies are used; local storage entries are ignored.
type sessionState struct {
	Cookies []sessionCookie `json:"cookies"`
}

type sessionCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// LoadSession reads an exported login session from path and seeds the
// client's cookie jar with it. The session file holds the operator's Workana
// login, so submission fails with an auth wall when it is stale.
func LoadSession(client *webclient.Client, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}

	var state sessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("parse session file %s: %w", path, err)
	}
	if len(state.Cookies) == 0 {
		return fmt.Errorf("session file %s holds no cookies", path)
	}

	byDomain := make(map[string][]*fhttp.Cookie)
	for _, c := range state.Cookies {
		domain := c.Domain
		byDomain[domain] = append(byDomain[domain], &fhttp.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}

	for domain, cookies := range byDomain {
		host := domain
		if len(host) > 0 && host[0] == '.' {
			host = host[1:]
		}
		u := &url.URL{Scheme: "https", Host: host, Path: "/"}
		client.SetCookies(u, cookies)
	}
	return nil
}
