package akismet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Akismet comment-check API.
type Client struct {
	blog       string
	endpoint   string
	httpClient *http.Client
}

// New creates an Akismet client for the given API key and site URL.
func New(key, blog string) *Client {
	return &Client{
		blog:       blog,
		endpoint:   fmt.Sprintf("https://%s.rest.akismet.com/1.1/comment-check", key),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CheckComment submits a comment to Akismet and reports whether it is spam.
// The caller is expected to bound ctx; a transport or protocol error is
// returned as-is so the caller can decide how to degrade.
func (c *Client) CheckComment(ctx context.Context, ip, ua, author, email, content string) (bool, error) {
	form := url.Values{}
	form.Set("blog", c.blog)
	form.Set("user_ip", ip)
	form.Set("user_agent", ua)
	form.Set("comment_type", "comment")
	form.Set("comment_author", author)
	form.Set("comment_author_email", email)
	form.Set("comment_content", content)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false, err
	}

	switch strings.TrimSpace(string(body)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("akismet: unexpected response %q", string(body))
	}
}
