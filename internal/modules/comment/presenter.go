package comment

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/raline/core/internal/config"
	"github.com/raline/core/internal/models"
	"github.com/raline/core/internal/pkg/identity"
	"github.com/yuin/goldmark"
)

// UAParser splits a raw user-agent into browser and OS labels.
type UAParser func(ua string) (browser, os string)

// RegionResolver maps an IP to a display region.
type RegionResolver func(ip string) string

// Presenter maps comment rows to their wire shape: markdown rendered and
// sanitized, author fields overridden by the linked account, and admin-only
// fields gated by the viewer.
type Presenter struct {
	md      goldmark.Markdown
	policy  *bluemonday.Policy
	cfg     config.CommentConfig
	parseUA UAParser
	region  RegionResolver
}

// NewPresenter builds a presenter. parseUA and region are optional hooks;
// when nil (or disabled in config) the fields stay empty.
func NewPresenter(cfg config.CommentConfig, parseUA UAParser, region RegionResolver) *Presenter {
	return &Presenter{
		md:      goldmark.New(),
		policy:  bluemonday.UGCPolicy(),
		cfg:     cfg,
		parseUA: parseUA,
		region:  region,
	}
}

// Render converts markdown to sanitized HTML.
func (p *Presenter) Render(content string) string {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(content), &buf); err != nil {
		return p.policy.Sanitize(content)
	}
	return p.policy.Sanitize(buf.String())
}

// Present maps a single row. users resolves linked accounts; the raw
// content and IP only surface for logged-in viewers and admins.
func (p *Presenter) Present(c *models.CommentModel, users map[uint]*models.UserModel, viewer *identity.Identity) *CommentResp {
	nick := deref(c.Nick)
	mail := deref(c.Mail)
	link := deref(c.Link)
	avatar := ""
	userType := ""

	if c.UserID != nil {
		if u := users[*c.UserID]; u != nil {
			nick = u.DisplayName
			mail = u.Email
			userType = u.Type
			if u.URL != nil {
				link = *u.URL
			}
			if u.Avatar != nil {
				avatar = *u.Avatar
			}
		}
	}
	if avatar == "" {
		avatar = gravatarURL(mail)
	}

	browser, osName := "", ""
	if !p.cfg.DisableUserAgent && p.parseUA != nil {
		browser, osName = p.parseUA(c.UA)
	}
	addr := ""
	if !p.cfg.DisableRegion && p.region != nil {
		addr = p.region(c.IP)
	}

	resp := &CommentResp{
		Status:     string(c.Status),
		Comment:    p.Render(c.Content),
		InsertedAt: c.CreatedAt,
		Link:       link,
		Mail:       mail,
		Nick:       nick,
		Type:       userType,
		Browser:    browser,
		OS:         osName,
		Addr:       addr,
		Avatar:     avatar,
		Like:       c.Star,
		Sticky:     c.Sticky,
		ObjectID:   c.ID,
		URL:        c.URL,
		Pid:        c.Pid,
		Rid:        c.Rid,
		UserID:     c.UserID,
		Time:       c.CreatedAt.UnixMicro(),
		Children:   []*CommentResp{},
	}
	if viewer != nil {
		resp.Orig = c.Content
	}
	if viewer.IsAdmin() {
		resp.IP = c.IP
	}
	return resp
}

func gravatarURL(mail string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(mail))))
	return fmt.Sprintf("https://gravatar.com/avatar/%x?d=mp", sum)
}
