package comment

import (
	"context"
	"errors"
	"time"

	"github.com/raline/core/internal/models"
	"gorm.io/gorm"
)

// SortKey selects the listing order. Sticky roots always sort first.
type SortKey string

const (
	SortLikeDesc    SortKey = "like_desc"
	SortCreatedAsc  SortKey = "insertedAt_asc"
	SortCreatedDesc SortKey = "insertedAt_desc"
)

// ParseSortKey maps a wire value to a SortKey, defaulting to newest-first.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortLikeDesc, SortCreatedAsc, SortCreatedDesc:
		return SortKey(s)
	}
	return SortCreatedDesc
}

// DuplicateKey identifies an exact resubmission of a prior comment.
type DuplicateKey struct {
	URL     string
	Mail    *string
	Link    *string
	Nick    *string
	Content string
}

// Filter is the composable query over comment rows. Count ignores
// Limit/Offset and ordering.
type Filter struct {
	Visibility   *Visibility
	URL          *string
	Status       *models.CommentStatus
	OwnerUID     *uint
	OwnerMail    *string // OR'd with OwnerUID when both are set
	Keyword      string
	IP           string
	CreatedAfter *time.Time
	Duplicate    *DuplicateKey
	RootsOnly    bool
	Rids         []uint
	StickyFirst  bool
	SortBy       SortKey
	Limit        int
	Offset       int
}

// Store is the comment record store. The service layer depends on this
// interface only; production wires the gorm implementation.
type Store interface {
	Find(ctx context.Context, f Filter) ([]models.CommentModel, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Insert(ctx context.Context, c *models.CommentModel) error
	Get(ctx context.Context, id uint) (*models.CommentModel, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	AddStar(ctx context.Context, id uint, delta int) error
	DeleteThread(ctx context.Context, id uint) (int64, error)
}

type gormStore struct{ db *gorm.DB }

// NewStore creates the MySQL-backed comment store.
func NewStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) apply(ctx context.Context, f Filter) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.CommentModel{})

	if v := f.Visibility; v != nil {
		if v.OwnerUID != nil {
			tx = tx.Where("status IN ? OR user_id = ?", v.Statuses, *v.OwnerUID)
		} else {
			tx = tx.Where("status IN ?", v.Statuses)
		}
	}
	if f.URL != nil {
		tx = tx.Where("url = ?", *f.URL)
	}
	if f.Status != nil {
		tx = tx.Where("status = ?", *f.Status)
	}
	switch {
	case f.OwnerUID != nil && f.OwnerMail != nil:
		tx = tx.Where("user_id = ? OR mail = ?", *f.OwnerUID, *f.OwnerMail)
	case f.OwnerUID != nil:
		tx = tx.Where("user_id = ?", *f.OwnerUID)
	case f.OwnerMail != nil:
		tx = tx.Where("mail = ?", *f.OwnerMail)
	}
	if f.Keyword != "" {
		tx = tx.Where("content LIKE ?", "%"+f.Keyword+"%")
	}
	if f.IP != "" {
		tx = tx.Where("ip = ?", f.IP)
	}
	if f.CreatedAfter != nil {
		tx = tx.Where("created_at > ?", *f.CreatedAfter)
	}
	if d := f.Duplicate; d != nil {
		tx = tx.Where("url = ? AND content = ?", d.URL, d.Content)
		tx = whereNullable(tx, "mail", d.Mail)
		tx = whereNullable(tx, "link", d.Link)
		tx = whereNullable(tx, "nick", d.Nick)
	}
	if f.RootsOnly {
		tx = tx.Where("rid IS NULL")
	}
	if f.Rids != nil {
		tx = tx.Where("rid IN ?", f.Rids)
	}
	return tx
}

func whereNullable(tx *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return tx.Where(column + " IS NULL")
	}
	return tx.Where(column+" = ?", *value)
}

func orderClause(f Filter) string {
	order := ""
	if f.StickyFirst {
		order = "sticky DESC, "
	}
	switch f.SortBy {
	case SortLikeDesc:
		return order + "star DESC, id ASC"
	case SortCreatedAsc:
		return order + "created_at ASC, id ASC"
	default:
		return order + "created_at DESC, id DESC"
	}
}

func (s *gormStore) Find(ctx context.Context, f Filter) ([]models.CommentModel, error) {
	tx := s.apply(ctx, f).Order(orderClause(f))
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	if f.Offset > 0 {
		tx = tx.Offset(f.Offset)
	}
	var rows []models.CommentModel
	err := tx.Find(&rows).Error
	return rows, err
}

func (s *gormStore) Count(ctx context.Context, f Filter) (int64, error) {
	var n int64
	err := s.apply(ctx, f).Count(&n).Error
	return n, err
}

func (s *gormStore) Insert(ctx context.Context, c *models.CommentModel) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *gormStore) Get(ctx context.Context, id uint) (*models.CommentModel, error) {
	var c models.CommentModel
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *gormStore) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		fields = map[string]interface{}{"updated_at": time.Now()}
	}
	return s.db.WithContext(ctx).Model(&models.CommentModel{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// AddStar shifts the like counter atomically; the floor keeps concurrent
// unlikes from driving it negative.
func (s *gormStore) AddStar(ctx context.Context, id uint, delta int) error {
	return s.db.WithContext(ctx).Model(&models.CommentModel{}).
		Where("id = ?", id).
		UpdateColumn("star", gorm.Expr("GREATEST(star + ?, 0)", delta)).Error
}

// DeleteThread removes the comment along with every reply pointing at it
// through pid or rid. Returns the number of rows removed.
func (s *gormStore) DeleteThread(ctx context.Context, id uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? OR pid = ? OR rid = ?", id, id, id).
		Delete(&models.CommentModel{})
	return res.RowsAffected, res.Error
}
