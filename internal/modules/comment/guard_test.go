package comment

import (
	"testing"

	"github.com/raline/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedTransition(t *testing.T) {
	cases := []struct {
		from, to models.CommentStatus
		want     bool
	}{
		{models.CommentWaiting, models.CommentApproved, true},
		{models.CommentWaiting, models.CommentSpam, true},
		{models.CommentApproved, models.CommentSpam, true},
		{models.CommentSpam, models.CommentApproved, true},
		{models.CommentApproved, models.CommentApproved, true},
		{models.CommentWaiting, models.CommentDeleted, true},
		{models.CommentApproved, models.CommentDeleted, true},
		{models.CommentApproved, models.CommentWaiting, false},
		{models.CommentSpam, models.CommentWaiting, false},
		{models.CommentDeleted, models.CommentApproved, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, allowedTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAuthorizeUpdateAdmin(t *testing.T) {
	row := &models.CommentModel{Status: models.CommentWaiting, UserID: uintPtr(9)}

	fields, err := authorizeUpdate(asAdmin(1), row, &UpdateCommentReq{
		Comment: strPtr("edited"),
		Sticky:  boolPtr(true),
		Status:  strPtr("approved"),
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", fields["content"])
	assert.Equal(t, true, fields["sticky"])
	assert.Equal(t, models.CommentApproved, fields["status"])

	_, err = authorizeUpdate(asAdmin(1), &models.CommentModel{Status: models.CommentApproved}, &UpdateCommentReq{
		Status: strPtr("waiting"),
	})
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 400, rej.Status)
}

func TestAuthorizeUpdateOwner(t *testing.T) {
	row := &models.CommentModel{Status: models.CommentApproved, UserID: uintPtr(9)}

	fields, err := authorizeUpdate(asUser(9), row, &UpdateCommentReq{Comment: strPtr("edited")})
	require.NoError(t, err)
	assert.Len(t, fields, 1)

	var rej *RejectionError
	_, err = authorizeUpdate(asUser(9), row, &UpdateCommentReq{Sticky: boolPtr(true)})
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 403, rej.Status)

	_, err = authorizeUpdate(asUser(9), row, &UpdateCommentReq{Status: strPtr("spam")})
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 403, rej.Status)
}

func TestAuthorizeUpdateStranger(t *testing.T) {
	row := &models.CommentModel{Status: models.CommentApproved, UserID: uintPtr(9)}

	// like-only requests carry no fields and pass for anyone
	fields, err := authorizeUpdate(nil, row, &UpdateCommentReq{Like: boolPtr(true)})
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = authorizeUpdate(asUser(3), row, &UpdateCommentReq{Like: boolPtr(false)})
	require.NoError(t, err)
	assert.Empty(t, fields)

	var rej *RejectionError
	_, err = authorizeUpdate(nil, row, &UpdateCommentReq{Comment: strPtr("x")})
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 403, rej.Status)

	_, err = authorizeUpdate(asUser(3), row, &UpdateCommentReq{Nick: strPtr("x")})
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 403, rej.Status)
}

func TestAuthorizeUpdateUnknownStatus(t *testing.T) {
	row := &models.CommentModel{Status: models.CommentApproved}

	var rej *RejectionError
	_, err := authorizeUpdate(asAdmin(1), row, &UpdateCommentReq{Status: strPtr("nonsense")})
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 400, rej.Status)
}

func TestAuthorizeDelete(t *testing.T) {
	row := &models.CommentModel{UserID: uintPtr(9)}

	assert.NoError(t, authorizeDelete(asUser(9), row))
	assert.NoError(t, authorizeDelete(asAdmin(1), row))
	assert.Error(t, authorizeDelete(asUser(3), row))
	assert.Error(t, authorizeDelete(nil, row))

	anonymousRow := &models.CommentModel{}
	assert.Error(t, authorizeDelete(asUser(9), anonymousRow))
	assert.NoError(t, authorizeDelete(asAdmin(1), anonymousRow))
}
