package comment

import (
	"context"
	"errors"
	"testing"

	"github.com/raline/core/internal/config"
	"github.com/raline/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubChecker struct {
	spam bool
	err  error
	seen int
}

func (s *stubChecker) CheckComment(_ context.Context, _, _, _, _, _ string) (bool, error) {
	s.seen++
	return s.spam, s.err
}

func newTestPipeline(t *testing.T, cfg config.CommentConfig, store Store, checker SpamChecker) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, store, checker, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestClassifyCleanDraft(t *testing.T) {
	p := newTestPipeline(t, config.CommentConfig{}, newMemStore(), nil)

	status, err := p.Classify(context.Background(), &Draft{URL: "/post", Content: "hello", IP: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentApproved, status)
}

func TestClassifyBlocklistWinsOverDuplicate(t *testing.T) {
	store := newMemStore()
	row := models.CommentModel{Content: "twin", URL: "/post", IP: "6.6.6.6"}
	require.NoError(t, store.Insert(context.Background(), &row))

	cfg := config.CommentConfig{DisallowIPs: []string{"6.6.6.6"}}
	p := newTestPipeline(t, cfg, store, nil)

	// the draft is both blocked and a duplicate; the blocklist check runs first
	_, err := p.Classify(context.Background(), &Draft{URL: "/post", Content: "twin", IP: "6.6.6.6"})
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 403, rej.Status)
	assert.Equal(t, "Forbidden", rej.Reason)
}

func TestClassifyDuplicateMatchesAuthorFields(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	row := models.CommentModel{Content: "same", URL: "/post", Nick: strPtr("bob")}
	require.NoError(t, store.Insert(ctx, &row))

	p := newTestPipeline(t, config.CommentConfig{}, store, nil)

	_, err := p.Classify(ctx, &Draft{URL: "/post", Content: "same", Nick: strPtr("bob")})
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "Duplicate Content", rej.Reason)

	// a different author posting the same text is not a duplicate
	status, err := p.Classify(ctx, &Draft{URL: "/post", Content: "same", Nick: strPtr("carol")})
	require.NoError(t, err)
	assert.Equal(t, models.CommentApproved, status)
}

func TestClassifyThrottleDisabledAtZero(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	row := models.CommentModel{Content: "earlier", URL: "/post", IP: "3.3.3.3"}
	require.NoError(t, store.Insert(ctx, &row))

	p := newTestPipeline(t, config.CommentConfig{IPQPS: 0}, store, nil)

	status, err := p.Classify(ctx, &Draft{URL: "/post", Content: "new", IP: "3.3.3.3"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentApproved, status)
}

func TestClassifySpamCheckerVerdict(t *testing.T) {
	checker := &stubChecker{spam: true}
	p := newTestPipeline(t, config.CommentConfig{}, newMemStore(), checker)

	status, err := p.Classify(context.Background(), &Draft{URL: "/post", Content: "buy now", IP: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentSpam, status)
	assert.Equal(t, 1, checker.seen)
}

func TestClassifySpamCheckerErrorIsAdvisory(t *testing.T) {
	checker := &stubChecker{err: errors.New("service down")}
	p := newTestPipeline(t, config.CommentConfig{}, newMemStore(), checker)

	status, err := p.Classify(context.Background(), &Draft{URL: "/post", Content: "hello", IP: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentApproved, status)
}

func TestClassifyAuditSkipsSpamChecker(t *testing.T) {
	checker := &stubChecker{spam: true}
	p := newTestPipeline(t, config.CommentConfig{Audit: true}, newMemStore(), checker)

	status, err := p.Classify(context.Background(), &Draft{URL: "/post", Content: "hello", IP: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentWaiting, status)
	assert.Zero(t, checker.seen)
}

func TestClassifyForbiddenWordsOverrideAudit(t *testing.T) {
	cfg := config.CommentConfig{Audit: true, ForbiddenWords: []string{"casino"}}
	p := newTestPipeline(t, cfg, newMemStore(), nil)

	status, err := p.Classify(context.Background(), &Draft{URL: "/post", Content: "casino night", IP: "1.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentSpam, status)
}

func TestNewPipelineBadForbiddenPattern(t *testing.T) {
	cfg := config.CommentConfig{ForbiddenWords: []string{"("}}
	_, err := NewPipeline(cfg, newMemStore(), nil, zap.NewNop())
	require.Error(t, err)
}
