// Package workana submits approved proposals through the marketplace's own
// bid form, riding the operator's exported login session.
package workana

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/webclient"
)

// Ensure Submitter implements model.ProposalSubmitter.
var _ model.ProposalSubmitter = (*Submitter)(nil)

// Submitter drives the bid form: fetch the message page, pick up the hidden
// form fields (CSRF token included), and post the proposal text. Anything
// unexpected on the page is an error rather than a guess, so a layout change
// never posts garbage into a real bid.
type Submitter struct {
	client *webclient.Client
	logger *slog.Logger
}

// NewSubmitter returns a submitter using the given session-carrying client.
// Call LoadSession on the client before submitting.
func NewSubmitter(client *webclient.Client, logger *slog.Logger) *Submitter {
	return &Submitter{client: client, logger: logger}
}

// Submit posts the proposal through the listing's bid form.
func (s *Submitter) Submit(ctx context.Context, jobURL, proposal string) error {
	if strings.TrimSpace(proposal) == "" {
		return model.ErrNoProposal
	}

	target, err := toMessageURL(jobURL)
	if err != nil {
		return err
	}

	form, err := s.fetchBidForm(ctx, target)
	if err != nil {
		return err
	}

	if err := s.postProposal(ctx, form, proposal); err != nil {
		return err
	}

	s.logger.Info("proposal submitted", "url", target)
	return nil
}

// toMessageURL rewrites a listing URL into its bid message page.
func toMessageURL(jobURL string) (string, error) {
	u, err := url.Parse(jobURL)
	if err != nil {
		return "", fmt.Errorf("parse job url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "job" || parts[1] == "" {
		return "", fmt.Errorf("%w: no job slug in %s", model.ErrInvalidURL, jobURL)
	}
	slug := parts[1]

	return fmt.Sprintf("https://%s/messages/bid/%s/?tab=message&ref=project_view", u.Host, slug), nil
}

// bidForm is the parsed state of the message form on the bid page.
type bidForm struct {
	action   string
	textarea string            // name of the proposal textarea
	hidden   map[string]string // hidden inputs, CSRF token included
}

// fetchBidForm loads the bid page and locates the single message form.
func (s *Submitter) fetchBidForm(ctx context.Context, target string) (*bidForm, error) {
	resp, err := s.client.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch bid page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("fetch bid page %s", target),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse bid page: %w", err)
	}
	return parseBidForm(doc, target)
}

// parseBidForm finds the form holding the proposal textarea. Exactly one such
// form must exist.
func parseBidForm(doc *goquery.Document, pageURL string) (*bidForm, error) {
	if doc.Find("form[action*='login'], input[name='email'][type='email']").Length() > 0 &&
		doc.Find("textarea").Length() == 0 {
		return nil, fmt.Errorf("bid page %s presented a login wall, session is stale", pageURL)
	}

	var forms []*goquery.Selection
	doc.Find("form").Each(func(_ int, f *goquery.Selection) {
		if f.Find("textarea").Length() > 0 {
			forms = append(forms, f)
		}
	})
	if len(forms) != 1 {
		return nil, fmt.Errorf("bid page %s has %d candidate forms, want exactly 1", pageURL, len(forms))
	}
	f := forms[0]

	textareaName, ok := f.Find("textarea").First().Attr("name")
	if !ok || textareaName == "" {
		return nil, fmt.Errorf("bid form on %s has an unnamed textarea", pageURL)
	}

	action, _ := f.Attr("action")
	action, err := resolveAction(pageURL, action)
	if err != nil {
		return nil, err
	}

	hidden := make(map[string]string)
	f.Find("input[type='hidden']").Each(func(_ int, in *goquery.Selection) {
		name, _ := in.Attr("name")
		value, _ := in.Attr("value")
		if name != "" {
			hidden[name] = value
		}
	})

	return &bidForm{action: action, textarea: textareaName, hidden: hidden}, nil
}

// resolveAction makes the form action absolute. An empty action posts back to
// the page itself.
func resolveAction(pageURL, action string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	if action == "" {
		return pageURL, nil
	}
	ref, err := url.Parse(action)
	if err != nil {
		return "", fmt.Errorf("parse form action %q: %w", action, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (s *Submitter) postProposal(ctx context.Context, form *bidForm, proposal string) error {
	values := url.Values{}
	for name, value := range form.hidden {
		values.Set(name, value)
	}
	values.Set(form.textarea, proposal)

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, form.action, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", form.action)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post proposal: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("post proposal to %s", form.action),
		}
	}
	return nil
}
