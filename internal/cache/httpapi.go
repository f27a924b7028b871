package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quillhaven/quillhaven/domain"
	"github.com/quillhaven/quillhaven/internal/rest/response"
)

// HTTPCommentAPI talks the comment wire contract over HTTP. It reuses the
// rest/response shapes for decoding so client and server can never disagree
// on field names.
type HTTPCommentAPI struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ CommentAPI = (*HTTPCommentAPI)(nil)

func NewHTTPCommentAPI(baseURL, token string, client *http.Client) *HTTPCommentAPI {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPCommentAPI{
		baseURL: baseURL,
		token:   token,
		client:  client,
	}
}

func (a *HTTPCommentAPI) FetchComments(ctx context.Context, postID, page int64) (*CommentPage, error) {
	var body struct {
		Comments   []*response.Comment         `json:"comments"`
		Pagination response.CommentsPagination `json:"pagination"`
	}
	url := fmt.Sprintf("%s/comments/post/%d?page=%d", a.baseURL, postID, page)
	if err := a.do(ctx, http.MethodGet, url, nil, &body); err != nil {
		return nil, err
	}

	return &CommentPage{
		Comments: toDomainComments(body.Comments),
		Pagination: domain.Pagination{
			CurrentPage: body.Pagination.CurrentPage,
			TotalPages:  body.Pagination.TotalPages,
			TotalItems:  body.Pagination.TotalComments,
			HasNextPage: body.Pagination.HasNextPage,
			HasPrevPage: body.Pagination.HasPrevPage,
		},
	}, nil
}

func (a *HTTPCommentAPI) FetchReplies(ctx context.Context, commentID, page int64) (*ReplyPage, error) {
	var body struct {
		Replies    []*response.Comment        `json:"replies"`
		Pagination response.RepliesPagination `json:"pagination"`
	}
	url := fmt.Sprintf("%s/comments/replies/%d?page=%d", a.baseURL, commentID, page)
	if err := a.do(ctx, http.MethodGet, url, nil, &body); err != nil {
		return nil, err
	}

	return &ReplyPage{
		Replies: toDomainComments(body.Replies),
		Pagination: domain.Pagination{
			CurrentPage: body.Pagination.CurrentPage,
			TotalPages:  body.Pagination.TotalPages,
			TotalItems:  body.Pagination.TotalReplies,
			HasNextPage: body.Pagination.HasNextPage,
			HasPrevPage: body.Pagination.HasPrevPage,
		},
	}, nil
}

func (a *HTTPCommentAPI) FetchCount(ctx context.Context, postID int64) (int64, error) {
	var body struct {
		CommentCount int64 `json:"commentCount"`
	}
	url := fmt.Sprintf("%s/comments/count/%d", a.baseURL, postID)
	if err := a.do(ctx, http.MethodGet, url, nil, &body); err != nil {
		return 0, err
	}
	return body.CommentCount, nil
}

func (a *HTTPCommentAPI) CreateComment(ctx context.Context, content string, postID, parentCommentID int64) (*domain.Comment, error) {
	payload := map[string]any{
		"content": content,
		"postId":  postID,
	}
	if parentCommentID != 0 {
		payload["parentCommentId"] = parentCommentID
	}

	var body struct {
		Message string            `json:"message"`
		Comment *response.Comment `json:"comment"`
	}
	if err := a.do(ctx, http.MethodPost, a.baseURL+"/comments", payload, &body); err != nil {
		return nil, err
	}
	return toDomainComment(body.Comment), nil
}

func (a *HTTPCommentAPI) UpdateComment(ctx context.Context, commentID int64, content string) (*domain.Comment, error) {
	payload := map[string]any{"content": content}

	var body struct {
		Message string            `json:"message"`
		Comment *response.Comment `json:"comment"`
	}
	url := fmt.Sprintf("%s/comments/%d", a.baseURL, commentID)
	if err := a.do(ctx, http.MethodPut, url, payload, &body); err != nil {
		return nil, err
	}
	return toDomainComment(body.Comment), nil
}

func (a *HTTPCommentAPI) DeleteComment(ctx context.Context, commentID int64) error {
	url := fmt.Sprintf("%s/comments/%d", a.baseURL, commentID)
	return a.do(ctx, http.MethodDelete, url, nil, nil)
}

func (a *HTTPCommentAPI) ToggleLike(ctx context.Context, commentID int64) (*domain.LikeResult, error) {
	var body struct {
		Message  string  `json:"message"`
		Likes    int64   `json:"likes"`
		LikedBy  []int64 `json:"likedBy"`
		HasLiked bool    `json:"hasLiked"`
	}
	url := fmt.Sprintf("%s/comments/%d/like", a.baseURL, commentID)
	if err := a.do(ctx, http.MethodPatch, url, nil, &body); err != nil {
		return nil, err
	}
	return &domain.LikeResult{
		Likes:   body.Likes,
		LikedBy: body.LikedBy,
		Liked:   body.HasLiked,
	}, nil
}

func (a *HTTPCommentAPI) do(ctx context.Context, method, url string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError lifts an error response back into the domain taxonomy so the
// store's callers can errors.Is against the same sentinels the server uses.
func statusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = domain.ErrBadParamInput
	case http.StatusUnauthorized:
		sentinel = domain.ErrUnauthenticated
	case http.StatusForbidden:
		sentinel = domain.ErrForbidden
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusConflict:
		sentinel = domain.ErrConflict
	default:
		sentinel = domain.ErrInternalServerError
	}
	if body.Message == "" {
		return sentinel
	}
	return fmt.Errorf("%s: %w", body.Message, sentinel)
}

func toDomainComment(c *response.Comment) *domain.Comment {
	if c == nil {
		return nil
	}

	res := &domain.Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		ReplyIDs:  c.Replies,
		Likes:     c.Likes,
		LikedBy:   c.LikedBy,
		IsEdited:  c.IsEdited,
		IsDeleted: c.IsDeleted,
	}
	if c.ParentID != nil {
		res.ParentID = *c.ParentID
	}
	if c.Author != nil {
		res.AuthorID = c.Author.ID
		res.Author = &domain.User{
			ID:       c.Author.ID,
			Username: c.Author.Username,
			Email:    c.Author.Email,
			Avatar:   c.Author.Avatar,
		}
	}
	if t, err := time.Parse(response.DateTimeFormat, c.CreatedAt); err == nil {
		res.CreatedAt = t
	}
	if t, err := time.Parse(response.DateTimeFormat, c.UpdatedAt); err == nil {
		res.UpdatedAt = t
	}
	if c.EditedAt != nil {
		if t, err := time.Parse(response.DateTimeFormat, *c.EditedAt); err == nil {
			res.EditedAt = &t
		}
	}
	return res
}

func toDomainComments(comments []*response.Comment) []*domain.Comment {
	res := make([]*domain.Comment, 0, len(comments))
	for _, c := range comments {
		res = append(res, toDomainComment(c))
	}
	return res
}
