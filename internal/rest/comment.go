package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quillhaven/quillhaven/domain"
	"github.com/quillhaven/quillhaven/internal/rest/request"
	"github.com/quillhaven/quillhaven/internal/rest/response"
)

type CommentHandler struct {
	Service domain.CommentUsecase
}

func NewCommentHandler(svc domain.CommentUsecase) *CommentHandler {
	return &CommentHandler{
		Service: svc,
	}
}

// CreateComment handles POST /comments.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ResponseError{Message: domain.ErrUnauthenticated.Error()})
		return
	}

	var req request.CreateComment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	comment := req.ToDomain()
	comment.AuthorID = uid

	ctx := c.Request.Context()
	if err := h.Service.Create(ctx, &comment); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": response.NewCommentFromDomain(&comment),
	})
}

// FetchPostComments handles GET /comments/post/:postId.
func (h *CommentHandler) FetchPostComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}
	page, limit := pageParams(c)

	ctx := c.Request.Context()
	comments, pagination, err := h.Service.FetchByPost(ctx, postID, page, limit)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":   response.NewCommentsFromDomain(comments),
		"pagination": response.NewCommentsPagination(pagination),
	})
}

// FetchCommentReplies handles GET /comments/replies/:commentId.
func (h *CommentHandler) FetchCommentReplies(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("commentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}
	page, limit := pageParams(c)

	ctx := c.Request.Context()
	replies, pagination, err := h.Service.FetchReplies(ctx, commentID, page, limit)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"replies":    response.NewCommentsFromDomain(replies),
		"pagination": response.NewRepliesPagination(pagination),
	})
}

// EditComment handles PUT /comments/:commentId.
func (h *CommentHandler) EditComment(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ResponseError{Message: domain.ErrUnauthenticated.Error()})
		return
	}
	commentID, err := strconv.ParseInt(c.Param("commentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	var req request.EditComment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	ctx := c.Request.Context()
	comment, err := h.Service.Edit(ctx, uid, commentID, req.Content)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully",
		"comment": response.NewCommentFromDomain(comment),
	})
}

// DeleteComment handles DELETE /comments/:commentId.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ResponseError{Message: domain.ErrUnauthenticated.Error()})
		return
	}
	commentID, err := strconv.ParseInt(c.Param("commentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.Service.SoftDelete(ctx, uid, commentID); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// ToggleCommentLike handles PATCH /comments/:commentId/like.
func (h *CommentHandler) ToggleCommentLike(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ResponseError{Message: domain.ErrUnauthenticated.Error()})
		return
	}
	commentID, err := strconv.ParseInt(c.Param("commentId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	ctx := c.Request.Context()
	res, err := h.Service.ToggleLike(ctx, uid, commentID)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	message := "Comment unliked"
	if res.Liked {
		message = "Comment liked"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  message,
		"likes":    res.Likes,
		"likedBy":  res.LikedBy,
		"hasLiked": res.Liked,
	})
}

// CountComments handles GET /comments/count/:postId.
func (h *CommentHandler) CountComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	ctx := c.Request.Context()
	count, err := h.Service.CountByPost(ctx, postID)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"commentCount": count})
}

// pageParams reads page/limit query params; non-numeric or absent values come
// back as zero and the service clamps them to its defaults.
func pageParams(c *gin.Context) (int64, int64) {
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	return page, limit
}
