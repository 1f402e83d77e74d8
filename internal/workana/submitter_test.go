package workana

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/webclient"
)

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o600)
}

func newTestClient(t *testing.T) *webclient.Client {
	t.Helper()
	client, err := webclient.New(5 * time.Second)
	if err != nil {
		t.Fatalf("webclient.New: %v", err)
	}
	return client
}

func TestToMessageURL(t *testing.T) {
	tests := []struct {
		name    string
		jobURL  string
		want    string
		wantErr bool
	}{
		{
			name:   "plain listing",
			jobURL: "https://www.workana.com/job/build-a-scraper",
			want:   "https://www.workana.com/messages/bid/build-a-scraper/?tab=message&ref=project_view",
		},
		{
			name:   "query string dropped",
			jobURL: "https://www.workana.com/job/build-a-scraper?ref=home",
			want:   "https://www.workana.com/messages/bid/build-a-scraper/?tab=message&ref=project_view",
		},
		{
			name:    "not a listing path",
			jobURL:  "https://www.workana.com/freelancers/some-user",
			wantErr: true,
		},
		{
			name:    "missing slug",
			jobURL:  "https://www.workana.com/job/",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toMessageURL(tt.jobURL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("got %q, want error", got)
				}
				if !errors.Is(err, model.ErrInvalidURL) {
					t.Errorf("error = %v, want ErrInvalidURL", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("toMessageURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func docFrom(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

const bidPage = `<html><body>
<form action="/messages/bid/build-a-scraper/send" method="post">
  <input type="hidden" name="_token" value="csrf123">
  <input type="hidden" name="bid_id" value="42">
  <textarea name="message"></textarea>
  <button type="submit">Enviar</button>
</form>
</body></html>`

func TestParseBidForm(t *testing.T) {
	form, err := parseBidForm(docFrom(t, bidPage), "https://www.workana.com/messages/bid/build-a-scraper/?tab=message")
	if err != nil {
		t.Fatalf("parseBidForm: %v", err)
	}
	if form.action != "https://www.workana.com/messages/bid/build-a-scraper/send" {
		t.Errorf("action = %q", form.action)
	}
	if form.textarea != "message" {
		t.Errorf("textarea = %q", form.textarea)
	}
	if form.hidden["_token"] != "csrf123" || form.hidden["bid_id"] != "42" {
		t.Errorf("hidden = %v", form.hidden)
	}
}

func TestParseBidFormRejectsAmbiguousPage(t *testing.T) {
	two := `<html><body>
<form><textarea name="a"></textarea></form>
<form><textarea name="b"></textarea></form>
</body></html>`
	if _, err := parseBidForm(docFrom(t, two), "https://www.workana.com/x"); err == nil {
		t.Error("expected error for two candidate forms")
	}

	none := `<html><body><p>nothing here</p></body></html>`
	if _, err := parseBidForm(docFrom(t, none), "https://www.workana.com/x"); err == nil {
		t.Error("expected error for missing form")
	}
}

func TestParseBidFormDetectsLoginWall(t *testing.T) {
	login := `<html><body>
<form action="/login" method="post">
  <input type="email" name="email">
  <input type="password" name="password">
</form>
</body></html>`
	_, err := parseBidForm(docFrom(t, login), "https://www.workana.com/x")
	if err == nil || !strings.Contains(err.Error(), "login wall") {
		t.Errorf("error = %v, want login wall detection", err)
	}
}

func TestLoadSessionRejectsEmptyState(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/state.json"
	if err := writeFile(path, `{"cookies":[]}`); err != nil {
		t.Fatal(err)
	}
	client := newTestClient(t)
	if err := LoadSession(client, path); err == nil {
		t.Error("expected error for cookie-less session file")
	}
}

func TestLoadSessionSeedsCookies(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/state.json"
	state := `{"cookies":[{"name":"wk_session","value":"abc","domain":".workana.com","path":"/"}]}`
	if err := writeFile(path, state); err != nil {
		t.Fatal(err)
	}
	client := newTestClient(t)
	if err := LoadSession(client, path); err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
}
