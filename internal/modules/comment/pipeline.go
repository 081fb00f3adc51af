package comment

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/raline/core/internal/config"
	"github.com/raline/core/internal/models"
	"go.uber.org/zap"
)

const spamCheckTimeout = 5 * time.Second

// Draft is a submission before it becomes a row: the final content (with
// the reply prefix already applied) plus the author fields as entered.
type Draft struct {
	URL     string
	Content string
	Link    *string
	Mail    *string
	Nick    *string
	IP      string
	UA      string
}

// Outcome of a single pipeline check.
type Outcome struct {
	Reject bool
	Status int
	Reason string
}

func pass() Outcome { return Outcome{} }

// Check is one step of the anti-spam chain. Run returns a rejecting
// Outcome to refuse the draft, or an error for infrastructure failures.
type Check interface {
	Name() string
	Run(ctx context.Context, d *Draft) (Outcome, error)
}

// SpamChecker gives a verdict on a draft via an external service.
type SpamChecker interface {
	CheckComment(ctx context.Context, ip, ua, author, email, content string) (bool, error)
}

// Pipeline classifies non-admin submissions. The ordered checks either
// reject the draft outright or let it continue; classification then decides
// the initial moderation status.
type Pipeline struct {
	checks    []Check
	audit     bool
	checker   SpamChecker
	forbidden *regexp.Regexp
	log       *zap.Logger
}

// NewPipeline builds the chain: IP blocklist, duplicate detection, per-IP
// submission throttle. checker may be nil when no external service is
// configured.
func NewPipeline(cfg config.CommentConfig, store Store, checker SpamChecker, log *zap.Logger) (*Pipeline, error) {
	var forbidden *regexp.Regexp
	if len(cfg.ForbiddenWords) > 0 {
		re, err := regexp.Compile("(" + strings.Join(cfg.ForbiddenWords, "|") + ")")
		if err != nil {
			return nil, fmt.Errorf("compile forbidden_words: %w", err)
		}
		forbidden = re
	}

	return &Pipeline{
		checks: []Check{
			&ipBlocklistCheck{disallow: cfg.DisallowIPs},
			&duplicateCheck{store: store},
			&rateLimitCheck{store: store, window: time.Duration(cfg.IPQPS) * time.Second},
		},
		audit:     cfg.Audit,
		checker:   checker,
		forbidden: forbidden,
		log:       log,
	}, nil
}

// Classify runs the chain and returns the initial moderation status for the
// draft. A refused draft comes back as a *RejectionError.
func (p *Pipeline) Classify(ctx context.Context, d *Draft) (models.CommentStatus, error) {
	for _, check := range p.checks {
		out, err := check.Run(ctx, d)
		if err != nil {
			return "", fmt.Errorf("%s check: %w", check.Name(), err)
		}
		if out.Reject {
			return "", rejection(out.Status, out.Reason)
		}
	}

	status := models.CommentApproved
	if p.audit {
		status = models.CommentWaiting
	}

	if status == models.CommentApproved && p.checker != nil {
		cctx, cancel := context.WithTimeout(ctx, spamCheckTimeout)
		spam, err := p.checker.CheckComment(cctx, d.IP, d.UA, deref(d.Nick), deref(d.Mail), d.Content)
		cancel()
		if err != nil {
			// external verdicts are advisory, the draft falls through as ham
			p.log.Warn("spam checker unavailable", zap.String("ip", d.IP), zap.Error(err))
		} else if spam {
			status = models.CommentSpam
		}
	}

	if p.forbidden != nil && p.forbidden.MatchString(d.Content) {
		status = models.CommentSpam
	}

	return status, nil
}

type ipBlocklistCheck struct{ disallow []string }

func (c *ipBlocklistCheck) Name() string { return "ip-blocklist" }

func (c *ipBlocklistCheck) Run(_ context.Context, d *Draft) (Outcome, error) {
	for _, blocked := range c.disallow {
		if blocked == d.IP {
			return Outcome{Reject: true, Status: errForbidden.Status, Reason: errForbidden.Reason}, nil
		}
	}
	return pass(), nil
}

type duplicateCheck struct{ store Store }

func (c *duplicateCheck) Name() string { return "duplicate" }

// Run refuses the draft when an identical comment already exists. The read
// is best-effort under concurrency; two simultaneous twins may both land.
func (c *duplicateCheck) Run(ctx context.Context, d *Draft) (Outcome, error) {
	n, err := c.store.Count(ctx, Filter{Duplicate: &DuplicateKey{
		URL:     d.URL,
		Mail:    d.Mail,
		Link:    d.Link,
		Nick:    d.Nick,
		Content: d.Content,
	}})
	if err != nil {
		return Outcome{}, err
	}
	if n > 0 {
		return Outcome{Reject: true, Status: errDuplicate.Status, Reason: errDuplicate.Reason}, nil
	}
	return pass(), nil
}

type rateLimitCheck struct {
	store  Store
	window time.Duration
}

func (c *rateLimitCheck) Name() string { return "ip-qps" }

func (c *rateLimitCheck) Run(ctx context.Context, d *Draft) (Outcome, error) {
	if c.window <= 0 {
		return pass(), nil
	}
	since := time.Now().Add(-c.window)
	n, err := c.store.Count(ctx, Filter{IP: d.IP, CreatedAfter: &since})
	if err != nil {
		return Outcome{}, err
	}
	if n > 0 {
		return Outcome{Reject: true, Status: errTooFast.Status, Reason: errTooFast.Reason}, nil
	}
	return pass(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
