package comment

import (
	"net/http"
	"time"
)

const (
	listLimitDefault     = 10
	listLimitMax         = 200
	recentCountDefault   = 10
	recentCountMax       = 100
	adminPageSizeDefault = 20
	adminPageSizeMax     = 200
)

// RejectionError is a refused operation with the HTTP status it maps to.
type RejectionError struct {
	Status int
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }

func rejection(status int, reason string) *RejectionError {
	return &RejectionError{Status: status, Reason: reason}
}

var (
	errNotFound  = rejection(http.StatusNotFound, "comment not found")
	errForbidden = rejection(http.StatusForbidden, "Forbidden")
	errDuplicate = rejection(http.StatusBadRequest, "Duplicate Content")
	errTooFast   = rejection(http.StatusBadRequest, "Comment too fast!")
)

// AddCommentReq is the submission body. Pid points at the directly answered
// comment and requires At; Rid points at the thread root.
type AddCommentReq struct {
	Comment string `json:"comment" binding:"required"`
	URL     string `json:"url"     binding:"required"`
	Link    string `json:"link"`
	Mail    string `json:"mail"`
	Nick    string `json:"nick"`
	UA      string `json:"ua"`
	Pid     *uint  `json:"pid"`
	Rid     *uint  `json:"rid"`
	At      string `json:"at"`
}

// UpdateCommentReq carries a partial update; nil fields are untouched.
type UpdateCommentReq struct {
	Comment *string `json:"comment"`
	Link    *string `json:"link"`
	Mail    *string `json:"mail"`
	Nick    *string `json:"nick"`
	Sticky  *bool   `json:"sticky"`
	Status  *string `json:"status"`
	Like    *bool   `json:"like"`
}

// ListQuery selects one page of threads for a page URL. When Rid is set the
// query pages through that one thread's replies instead.
type ListQuery struct {
	Path   string
	Rid    *uint
	Limit  int
	Offset int
	SortBy SortKey
}

// AdminQuery filters the moderation listing.
type AdminQuery struct {
	Page    int
	Size    int
	Status  string
	Owner   string // "" | "all" | "mine"
	Keyword string
}

// CommentResp is the waline-compatible wire shape of one comment.
type CommentResp struct {
	Status     string         `json:"status"`
	Comment    string         `json:"comment"`
	InsertedAt time.Time      `json:"insertedAt"`
	Link       string         `json:"link"`
	Mail       string         `json:"mail,omitempty"`
	Nick       string         `json:"nick"`
	Type       string         `json:"type,omitempty"`
	Browser    string         `json:"browser"`
	OS         string         `json:"os"`
	Addr       string         `json:"addr,omitempty"`
	Avatar     string         `json:"avatar"`
	Like       int            `json:"like"`
	Sticky     bool           `json:"sticky"`
	ObjectID   uint           `json:"objectId"`
	Level      int            `json:"level"`
	URL        string         `json:"url"`
	Pid        *uint          `json:"pid,omitempty"`
	Rid        *uint          `json:"rid,omitempty"`
	UserID     *uint          `json:"user_id,omitempty"`
	Time       int64          `json:"time"`
	Orig       string         `json:"orig,omitempty"`
	IP         string         `json:"ip,omitempty"`
	Children   []*CommentResp `json:"children"`
}

// ListResp is the paged thread listing for one page URL.
type ListResp struct {
	Count      int64          `json:"count"`
	TotalPages int            `json:"totalPages"`
	Data       []*CommentResp `json:"data"`
}

// AdminListResp is the moderation listing with global state counters.
type AdminListResp struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"totalPages"`
	PageSize     int            `json:"pageSize"`
	SpamCount    int64          `json:"spamCount"`
	WaitingCount int64          `json:"waitingCount"`
	Data         []*CommentResp `json:"data"`
}
