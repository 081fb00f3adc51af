package comment

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/raline/core/internal/config"
	"github.com/raline/core/internal/models"
	"github.com/raline/core/internal/pkg/identity"
	"go.uber.org/zap"
)

// UserDirectory resolves the accounts linked to comment rows.
type UserDirectory interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.UserModel, error)
}

// Service implements the comment operations on top of the record store.
type Service struct {
	store     Store
	users     UserDirectory
	pipeline  *Pipeline
	presenter *Presenter
	cfg       config.CommentConfig
	log       *zap.Logger
}

func NewService(store Store, users UserDirectory, pipeline *Pipeline, presenter *Presenter, cfg config.CommentConfig, log *zap.Logger) *Service {
	return &Service{
		store:     store,
		users:     users,
		pipeline:  pipeline,
		presenter: presenter,
		cfg:       cfg,
		log:       log,
	}
}

// List returns one page of threads for a page URL. Roots order sticky
// first, then by the sort key; replies are fetched in a single pass under
// the same visibility predicate and attached to their roots.
func (s *Service) List(ctx context.Context, viewer *identity.Identity, q ListQuery) (*ListResp, error) {
	vis := VisibleTo(viewer)
	limit := q.Limit
	if limit <= 0 {
		limit = listLimitDefault
	}
	if limit > listLimitMax {
		limit = listLimitMax
	}
	if q.Rid != nil {
		return s.listReplies(ctx, viewer, vis, q, limit)
	}
	url := q.Path

	total, err := s.store.Count(ctx, Filter{Visibility: &vis, URL: &url, RootsOnly: true})
	if err != nil {
		return nil, err
	}

	roots, err := s.store.Find(ctx, Filter{
		Visibility:  &vis,
		URL:         &url,
		RootsOnly:   true,
		StickyFirst: true,
		SortBy:      q.SortBy,
		Limit:       limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, err
	}

	var replies []models.CommentModel
	if len(roots) > 0 {
		rids := make([]uint, len(roots))
		for i := range roots {
			rids[i] = roots[i].ID
		}
		replies, err = s.store.Find(ctx, Filter{Visibility: &vis, Rids: rids})
		if err != nil {
			return nil, err
		}
	}

	users, err := s.relatedUsers(ctx, roots, replies)
	if err != nil {
		return nil, err
	}
	data := assembleThread(roots, replies, func(c *models.CommentModel) *CommentResp {
		return s.presenter.Present(c, users, viewer)
	})

	return &ListResp{
		Count:      total,
		TotalPages: int(total) / limit,
		Data:       data,
	}, nil
}

// listReplies pages through one thread's replies, flat.
func (s *Service) listReplies(ctx context.Context, viewer *identity.Identity, vis Visibility, q ListQuery, limit int) (*ListResp, error) {
	rids := []uint{*q.Rid}

	total, err := s.store.Count(ctx, Filter{Visibility: &vis, Rids: rids})
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Find(ctx, Filter{
		Visibility: &vis,
		Rids:       rids,
		SortBy:     q.SortBy,
		Limit:      limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}

	users, err := s.relatedUsers(ctx, rows)
	if err != nil {
		return nil, err
	}
	data := make([]*CommentResp, len(rows))
	for i := range rows {
		data[i] = s.presenter.Present(&rows[i], users, viewer)
	}

	return &ListResp{
		Count:      total,
		TotalPages: int(total) / limit,
		Data:       data,
	}, nil
}

// Count returns per-URL comment counts under the viewer's predicate,
// positionally aligned with paths.
func (s *Service) Count(ctx context.Context, viewer *identity.Identity, paths []string) ([]int64, error) {
	vis := VisibleTo(viewer)
	out := make([]int64, len(paths))
	for i := range paths {
		url := paths[i]
		n, err := s.store.Count(ctx, Filter{Visibility: &vis, URL: &url})
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Recent returns the newest comments across all pages, flat.
func (s *Service) Recent(ctx context.Context, viewer *identity.Identity, count int) ([]*CommentResp, error) {
	if count <= 0 {
		count = recentCountDefault
	}
	if count > recentCountMax {
		count = recentCountMax
	}

	vis := VisibleTo(viewer)
	rows, err := s.store.Find(ctx, Filter{Visibility: &vis, SortBy: SortCreatedDesc, Limit: count})
	if err != nil {
		return nil, err
	}

	users, err := s.relatedUsers(ctx, rows, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*CommentResp, len(rows))
	for i := range rows {
		out[i] = s.presenter.Present(&rows[i], users, viewer)
	}
	return out, nil
}

// AdminList is the moderation view: one status at a time, optionally
// scoped to the caller's own comments and a content keyword, plus global
// spam/waiting counters.
func (s *Service) AdminList(ctx context.Context, viewer *identity.Identity, q AdminQuery) (*AdminListResp, error) {
	if !viewer.IsAdmin() {
		return nil, errForbidden
	}

	status, ok := models.ParseCommentStatus(q.Status)
	if !ok {
		return nil, rejection(http.StatusBadRequest, "unknown status "+q.Status)
	}
	size := q.Size
	if size <= 0 {
		size = adminPageSizeDefault
	}
	if size > adminPageSizeMax {
		size = adminPageSizeMax
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	f := Filter{
		Status:  &status,
		Keyword: q.Keyword,
		SortBy:  SortCreatedDesc,
		Limit:   size,
		Offset:  (page - 1) * size,
	}
	if q.Owner == "mine" {
		uid := viewer.UID
		f.OwnerUID = &uid
		if s.cfg.MineMatchMailEnabled() && viewer.Email != "" {
			mail := viewer.Email
			f.OwnerMail = &mail
		}
	}

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Find(ctx, f)
	if err != nil {
		return nil, err
	}

	spam := models.CommentSpam
	spamCount, err := s.store.Count(ctx, Filter{Status: &spam})
	if err != nil {
		return nil, err
	}
	waiting := models.CommentWaiting
	waitingCount, err := s.store.Count(ctx, Filter{Status: &waiting})
	if err != nil {
		return nil, err
	}

	users, err := s.relatedUsers(ctx, rows, nil)
	if err != nil {
		return nil, err
	}
	data := make([]*CommentResp, len(rows))
	for i := range rows {
		data[i] = s.presenter.Present(&rows[i], users, viewer)
	}

	return &AdminListResp{
		Page:         page,
		TotalPages:   int(total) / size,
		PageSize:     size,
		SpamCount:    spamCount,
		WaitingCount: waitingCount,
		Data:         data,
	}, nil
}

// Add accepts a submission. Replies to a non-root are flattened onto the
// thread root before insert, so stored depth never exceeds two levels.
// Admin authors skip the anti-spam pipeline and land approved.
func (s *Service) Add(ctx context.Context, viewer *identity.Identity, ip, ua string, req *AddCommentReq) (*CommentResp, error) {
	content := strings.TrimSpace(req.Comment)
	if req.Pid != nil {
		at := strings.TrimSpace(req.At)
		if at == "" {
			return nil, rejection(http.StatusBadRequest, "at is required when pid is set")
		}
		content = fmt.Sprintf("[@%s](#%d): %s", at, *req.Pid, content)
	}

	rid := req.Rid
	if rid != nil {
		root, err := s.store.Get(ctx, *rid)
		if err != nil {
			return nil, err
		}
		if root == nil {
			return nil, errNotFound
		}
		if root.Rid != nil {
			rid = root.Rid
		}
	}

	if req.UA != "" {
		ua = req.UA
	}
	draft := &Draft{
		URL:     req.URL,
		Content: content,
		Link:    optional(req.Link),
		Mail:    optional(req.Mail),
		Nick:    optional(req.Nick),
		IP:      ip,
		UA:      ua,
	}

	status := models.CommentApproved
	if !viewer.IsAdmin() {
		var err error
		status, err = s.pipeline.Classify(ctx, draft)
		if err != nil {
			return nil, err
		}
	}

	row := models.CommentModel{
		Content: content,
		IP:      ip,
		Link:    draft.Link,
		Mail:    draft.Mail,
		Nick:    draft.Nick,
		Pid:     req.Pid,
		Rid:     rid,
		Status:  status,
		UA:      ua,
		URL:     req.URL,
	}
	if viewer != nil {
		uid := viewer.UID
		row.UserID = &uid
	}
	if err := s.store.Insert(ctx, &row); err != nil {
		return nil, err
	}

	s.log.Info("comment created",
		zap.Uint("id", row.ID),
		zap.String("url", row.URL),
		zap.String("status", string(row.Status)),
	)

	users, err := s.relatedUsers(ctx, []models.CommentModel{row}, nil)
	if err != nil {
		return nil, err
	}
	return s.presenter.Present(&row, users, viewer), nil
}

// Update applies a partial update under the ownership guard. Like/unlike
// is open to everyone; an otherwise empty body just touches updated_at.
func (s *Service) Update(ctx context.Context, viewer *identity.Identity, id uint, req *UpdateCommentReq) (*CommentResp, error) {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errNotFound
	}

	fields, err := authorizeUpdate(viewer, row, req)
	if err != nil {
		return nil, err
	}

	if req.Like != nil {
		delta := -1
		if *req.Like {
			delta = 1
		}
		if err := s.store.AddStar(ctx, id, delta); err != nil {
			return nil, err
		}
	}
	if len(fields) > 0 || req.Like == nil {
		if err := s.store.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errNotFound
	}
	users, err := s.relatedUsers(ctx, []models.CommentModel{*updated}, nil)
	if err != nil {
		return nil, err
	}
	return s.presenter.Present(updated, users, viewer), nil
}

// Delete removes a comment and its whole reply subtree. Owners and admins
// only.
func (s *Service) Delete(ctx context.Context, viewer *identity.Identity, id uint) error {
	row, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return errNotFound
	}
	if err := authorizeDelete(viewer, row); err != nil {
		return err
	}

	n, err := s.store.DeleteThread(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("comment thread deleted", zap.Uint("id", id), zap.Int64("rows", n))
	return nil
}

func (s *Service) relatedUsers(ctx context.Context, rows ...[]models.CommentModel) (map[uint]*models.UserModel, error) {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, batch := range rows {
		for i := range batch {
			if uid := batch[i].UserID; uid != nil {
				if _, ok := seen[*uid]; !ok {
					seen[*uid] = struct{}{}
					ids = append(ids, *uid)
				}
			}
		}
	}
	if len(ids) == 0 {
		return map[uint]*models.UserModel{}, nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]*models.UserModel, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
