package comment

import "github.com/raline/core/internal/models"

// assembleThread attaches replies to their fetched roots. Replies keep the
// order the store returned and never carry children of their own; a reply
// whose root fell outside the current page is dropped.
func assembleThread(roots, replies []models.CommentModel, present func(*models.CommentModel) *CommentResp) []*CommentResp {
	out := make([]*CommentResp, 0, len(roots))
	index := make(map[uint]*CommentResp, len(roots))
	for i := range roots {
		resp := present(&roots[i])
		index[roots[i].ID] = resp
		out = append(out, resp)
	}
	for i := range replies {
		r := &replies[i]
		if r.Rid == nil {
			continue
		}
		if root, ok := index[*r.Rid]; ok {
			root.Children = append(root.Children, present(r))
		}
	}
	return out
}
