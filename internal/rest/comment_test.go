package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quillhaven/quillhaven/domain"
	"github.com/quillhaven/quillhaven/internal/rest"
)

type mockCommentUsecase struct {
	mock.Mock
}

func (m *mockCommentUsecase) Create(ctx context.Context, c *domain.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCommentUsecase) FetchByPost(ctx context.Context, postID, page, limit int64) ([]*domain.Comment, domain.Pagination, error) {
	args := m.Called(ctx, postID, page, limit)
	var comments []*domain.Comment
	if v := args.Get(0); v != nil {
		comments = v.([]*domain.Comment)
	}
	return comments, args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *mockCommentUsecase) FetchReplies(ctx context.Context, parentID, page, limit int64) ([]*domain.Comment, domain.Pagination, error) {
	args := m.Called(ctx, parentID, page, limit)
	var replies []*domain.Comment
	if v := args.Get(0); v != nil {
		replies = v.([]*domain.Comment)
	}
	return replies, args.Get(1).(domain.Pagination), args.Error(2)
}

func (m *mockCommentUsecase) Edit(ctx context.Context, actorID, commentID int64, content string) (*domain.Comment, error) {
	args := m.Called(ctx, actorID, commentID, content)
	var c *domain.Comment
	if v := args.Get(0); v != nil {
		c = v.(*domain.Comment)
	}
	return c, args.Error(1)
}

func (m *mockCommentUsecase) SoftDelete(ctx context.Context, actorID, commentID int64) error {
	args := m.Called(ctx, actorID, commentID)
	return args.Error(0)
}

func (m *mockCommentUsecase) ToggleLike(ctx context.Context, actorID, commentID int64) (*domain.LikeResult, error) {
	args := m.Called(ctx, actorID, commentID)
	var res *domain.LikeResult
	if v := args.Get(0); v != nil {
		res = v.(*domain.LikeResult)
	}
	return res, args.Error(1)
}

func (m *mockCommentUsecase) CountByPost(ctx context.Context, postID int64) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

// newCommentRouter wires the handler the way main does, with a fake auth
// middleware that injects uid when it is non-zero.
func newCommentRouter(svc domain.CommentUsecase, uid int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := rest.NewCommentHandler(svc)

	auth := func(c *gin.Context) {
		if uid != 0 {
			c.Set("user_id", uid)
		}
	}

	r := gin.New()
	r.GET("/comments/post/:postId", h.FetchPostComments)
	r.GET("/comments/replies/:commentId", h.FetchCommentReplies)
	r.GET("/comments/count/:postId", h.CountComments)
	r.POST("/comments", auth, h.CreateComment)
	r.PUT("/comments/:commentId", auth, h.EditComment)
	r.DELETE("/comments/:commentId", auth, h.DeleteComment)
	r.PATCH("/comments/:commentId/like", auth, h.ToggleCommentLike)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func sampleComment(id, postID int64) *domain.Comment {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  3,
		Content:   "great post",
		ReplyIDs:  []int64{},
		LikedBy:   []int64{},
		CreatedAt: created,
		UpdatedAt: created,
		Author:    &domain.User{ID: 3, Username: "ada", Email: "ada@example.com"},
	}
}

func TestCreateComment_Unauthenticated(t *testing.T) {
	svc := new(mockCommentUsecase)
	r := newCommentRouter(svc, 0)

	rec, body := doJSON(t, r, http.MethodPost, "/comments", `{"content": "hi", "postId": 7}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.ErrUnauthenticated.Error(), body["message"])
	svc.AssertNotCalled(t, "Create")
}

func TestCreateComment_OK(t *testing.T) {
	svc := new(mockCommentUsecase)
	svc.On("Create", mock.Anything, mock.AnythingOfType("*domain.Comment")).
		Run(func(args mock.Arguments) {
			c := args.Get(1).(*domain.Comment)
			assert.Equal(t, int64(3), c.AuthorID)
			assert.Equal(t, int64(7), c.PostID)
			filled := sampleComment(55, 7)
			*c = *filled
		}).
		Return(nil)

	r := newCommentRouter(svc, 3)
	rec, body := doJSON(t, r, http.MethodPost, "/comments", `{"content": "great post", "postId": 7}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Comment created successfully", body["message"])

	comment, ok := body["comment"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 55, comment["id"])
	assert.Nil(t, comment["parentCommentId"], "top-level comment serializes parentCommentId as null")
	assert.Equal(t, []any{}, comment["replies"])
	assert.Equal(t, []any{}, comment["likedBy"])
	svc.AssertExpectations(t)
}

func TestCreateComment_MissingContent(t *testing.T) {
	svc := new(mockCommentUsecase)
	r := newCommentRouter(svc, 3)

	rec, _ := doJSON(t, r, http.MethodPost, "/comments", `{"postId": 7}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create")
}

func TestCreateComment_BlankContent(t *testing.T) {
	svc := new(mockCommentUsecase)
	r := newCommentRouter(svc, 3)

	rec, _ := doJSON(t, r, http.MethodPost, "/comments", `{"content": "   ", "postId": 7}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create")
}

func TestFetchPostComments(t *testing.T) {
	svc := new(mockCommentUsecase)
	svc.On("FetchByPost", mock.Anything, int64(7), int64(2), int64(10)).
		Return([]*domain.Comment{sampleComment(12, 7)}, domain.NewPagination(2, 10, 25), nil)

	r := newCommentRouter(svc, 0)
	rec, body := doJSON(t, r, http.MethodGet, "/comments/post/7?page=2&limit=10", "")

	require.Equal(t, http.StatusOK, rec.Code)

	comments, ok := body["comments"].([]any)
	require.True(t, ok)
	require.Len(t, comments, 1)

	pagination, ok := body["pagination"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, pagination["currentPage"])
	assert.EqualValues(t, 3, pagination["totalPages"])
	assert.EqualValues(t, 25, pagination["totalComments"])
	assert.Equal(t, true, pagination["hasNextPage"])
	assert.Equal(t, true, pagination["hasPrevPage"])
	svc.AssertExpectations(t)
}

func TestFetchPostComments_BadID(t *testing.T) {
	svc := new(mockCommentUsecase)
	r := newCommentRouter(svc, 0)

	rec, _ := doJSON(t, r, http.MethodGet, "/comments/post/abc", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertNotCalled(t, "FetchByPost")
}

func TestFetchCommentReplies(t *testing.T) {
	reply := sampleComment(34, 7)
	parentID := int64(12)
	reply.ParentID = parentID

	svc := new(mockCommentUsecase)
	svc.On("FetchReplies", mock.Anything, parentID, int64(0), int64(0)).
		Return([]*domain.Comment{reply}, domain.NewPagination(1, 5, 1), nil)

	r := newCommentRouter(svc, 0)
	rec, body := doJSON(t, r, http.MethodGet, "/comments/replies/12", "")

	require.Equal(t, http.StatusOK, rec.Code)

	replies, ok := body["replies"].([]any)
	require.True(t, ok)
	require.Len(t, replies, 1)
	first := replies[0].(map[string]any)
	assert.EqualValues(t, 12, first["parentCommentId"])

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["totalReplies"])
	assert.Equal(t, false, pagination["hasNextPage"])
	svc.AssertExpectations(t)
}

func TestEditComment_Forbidden(t *testing.T) {
	svc := new(mockCommentUsecase)
	svc.On("Edit", mock.Anything, int64(3), int64(55), "nope").
		Return(nil, domain.ErrForbidden)

	r := newCommentRouter(svc, 3)
	rec, body := doJSON(t, r, http.MethodPut, "/comments/55", `{"content": "nope"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domain.ErrForbidden.Error(), body["message"])
	svc.AssertExpectations(t)
}

func TestEditComment_OK(t *testing.T) {
	edited := sampleComment(55, 7)
	edited.Content = "better"
	edited.IsEdited = true

	svc := new(mockCommentUsecase)
	svc.On("Edit", mock.Anything, int64(3), int64(55), "better").
		Return(edited, nil)

	r := newCommentRouter(svc, 3)
	rec, body := doJSON(t, r, http.MethodPut, "/comments/55", `{"content": "better"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Comment updated successfully", body["message"])
	comment := body["comment"].(map[string]any)
	assert.Equal(t, "better", comment["content"])
	assert.Equal(t, true, comment["isEdited"])
	svc.AssertExpectations(t)
}

func TestDeleteComment_OK(t *testing.T) {
	svc := new(mockCommentUsecase)
	svc.On("SoftDelete", mock.Anything, int64(3), int64(55)).Return(nil)

	r := newCommentRouter(svc, 3)
	rec, body := doJSON(t, r, http.MethodDelete, "/comments/55", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Comment deleted successfully", body["message"])
	svc.AssertExpectations(t)
}

func TestDeleteComment_NotFound(t *testing.T) {
	svc := new(mockCommentUsecase)
	svc.On("SoftDelete", mock.Anything, int64(3), int64(55)).Return(domain.ErrNotFound)

	r := newCommentRouter(svc, 3)
	rec, _ := doJSON(t, r, http.MethodDelete, "/comments/55", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleCommentLike(t *testing.T) {
	svc := new(mockCommentUsecase)
	svc.On("ToggleLike", mock.Anything, int64(3), int64(55)).
		Return(&domain.LikeResult{Likes: 4, LikedBy: []int64{1, 2, 3, 9}, Liked: true}, nil)

	r := newCommentRouter(svc, 3)
	rec, body := doJSON(t, r, http.MethodPatch, "/comments/55/like", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Comment liked", body["message"])
	assert.EqualValues(t, 4, body["likes"])
	assert.Equal(t, true, body["hasLiked"])
	assert.Len(t, body["likedBy"].([]any), 4)
	svc.AssertExpectations(t)
}

func TestToggleCommentLike_Unliked(t *testing.T) {
	svc := new(mockCommentUsecase)
	svc.On("ToggleLike", mock.Anything, int64(3), int64(55)).
		Return(&domain.LikeResult{Likes: 0, LikedBy: []int64{}, Liked: false}, nil)

	r := newCommentRouter(svc, 3)
	rec, body := doJSON(t, r, http.MethodPatch, "/comments/55/like", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Comment unliked", body["message"])
	assert.Equal(t, false, body["hasLiked"])
	assert.Equal(t, []any{}, body["likedBy"])
}

func TestCountComments(t *testing.T) {
	svc := new(mockCommentUsecase)
	svc.On("CountByPost", mock.Anything, int64(7)).Return(int64(19), nil)

	r := newCommentRouter(svc, 0)
	rec, body := doJSON(t, r, http.MethodGet, "/comments/count/7", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 19, body["commentCount"])
	svc.AssertExpectations(t)
}
