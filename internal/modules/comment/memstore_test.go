package comment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raline/core/internal/models"
)

// memStore is an in-memory Store for tests. It interprets Filter the same
// way the gorm store does, including ordering and the visibility predicate.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	clock  time.Time
	rows   []models.CommentModel
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, clock: time.Now()}
}

// tick advances the fake clock so successive inserts get distinct times.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *memStore) Insert(_ context.Context, c *models.CommentModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.tick()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Status == "" {
		c.Status = models.CommentApproved
	}
	s.rows = append(s.rows, *c)
	return nil
}

func (s *memStore) Get(_ context.Context, id uint) (*models.CommentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			c := s.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memStore) Find(_ context.Context, f Filter) ([]models.CommentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.CommentModel
	for i := range s.rows {
		if matchesFilter(f, &s.rows[i]) {
			out = append(out, s.rows[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if f.StickyFirst && a.Sticky != b.Sticky {
			return a.Sticky
		}
		switch f.SortBy {
		case SortLikeDesc:
			if a.Star != b.Star {
				return a.Star > b.Star
			}
			return a.ID < b.ID
		case SortCreatedAsc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memStore) Count(_ context.Context, f Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.rows {
		if matchesFilter(f, &s.rows[i]) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		row := &s.rows[i]
		for col, v := range fields {
			switch col {
			case "content":
				row.Content = v.(string)
			case "link":
				val := v.(string)
				row.Link = &val
			case "mail":
				val := v.(string)
				row.Mail = &val
			case "nick":
				val := v.(string)
				row.Nick = &val
			case "sticky":
				row.Sticky = v.(bool)
			case "status":
				row.Status = v.(models.CommentStatus)
			}
		}
		row.UpdatedAt = s.tick()
		return nil
	}
	return nil
}

func (s *memStore) AddStar(_ context.Context, id uint, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Star += delta
			if s.rows[i].Star < 0 {
				s.rows[i].Star = 0
			}
			return nil
		}
	}
	return nil
}

func (s *memStore) DeleteThread(_ context.Context, id uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []models.CommentModel
	var removed int64
	for i := range s.rows {
		c := &s.rows[i]
		if c.ID == id || (c.Pid != nil && *c.Pid == id) || (c.Rid != nil && *c.Rid == id) {
			removed++
			continue
		}
		kept = append(kept, *c)
	}
	s.rows = kept
	return removed, nil
}

func matchesFilter(f Filter, c *models.CommentModel) bool {
	if f.Visibility != nil && !f.Visibility.Matches(c) {
		return false
	}
	if f.URL != nil && c.URL != *f.URL {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.OwnerUID != nil || f.OwnerMail != nil {
		owned := f.OwnerUID != nil && c.UserID != nil && *c.UserID == *f.OwnerUID
		mailed := f.OwnerMail != nil && c.Mail != nil && *c.Mail == *f.OwnerMail
		if !owned && !mailed {
			return false
		}
	}
	if f.Keyword != "" && !strings.Contains(c.Content, f.Keyword) {
		return false
	}
	if f.IP != "" && c.IP != f.IP {
		return false
	}
	if f.CreatedAfter != nil && !c.CreatedAt.After(*f.CreatedAfter) {
		return false
	}
	if d := f.Duplicate; d != nil {
		if c.URL != d.URL || c.Content != d.Content {
			return false
		}
		if !eqStrPtr(c.Mail, d.Mail) || !eqStrPtr(c.Link, d.Link) || !eqStrPtr(c.Nick, d.Nick) {
			return false
		}
	}
	if f.RootsOnly && c.Rid != nil {
		return false
	}
	if f.Rids != nil {
		if c.Rid == nil {
			return false
		}
		found := false
		for _, rid := range f.Rids {
			if *c.Rid == rid {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func eqStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// memUsers is an in-memory UserDirectory for tests.
type memUsers struct{ users map[uint]models.UserModel }

func (m *memUsers) FindByIDs(_ context.Context, ids []uint) ([]models.UserModel, error) {
	var out []models.UserModel
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
