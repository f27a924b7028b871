package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quillhaven/quillhaven/domain"
	"github.com/quillhaven/quillhaven/internal/rest/request"
	"github.com/quillhaven/quillhaven/internal/rest/response"
)

// PostHandler represent the httphandler for post
type PostHandler struct {
	Service domain.PostUsecase
}

func NewPostHandler(svc domain.PostUsecase) *PostHandler {
	return &PostHandler{
		Service: svc,
	}
}

// Store will store the post by given request body
func (h *PostHandler) Store(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ResponseError{Message: domain.ErrUnauthenticated.Error()})
		return
	}

	var req request.CreatePost
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	post := req.ToDomain()
	post.Author = &domain.User{ID: uid}

	ctx := c.Request.Context()
	if err := h.Service.Store(ctx, &post); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    response.NewPostFromDomain(&post),
	})
}

// GetByID will get post by given id
func (h *PostHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	ctx := c.Request.Context()
	post, err := h.Service.GetByID(ctx, id)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": response.NewPostFromDomain(post)})
}

// Fetch will fetch a page of posts, newest first
func (h *PostHandler) Fetch(c *gin.Context) {
	page, limit := pageParams(c)

	ctx := c.Request.Context()
	posts, pagination, err := h.Service.Fetch(ctx, page, limit)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	res := make([]*response.Post, 0, len(posts))
	for _, p := range posts {
		res = append(res, response.NewPostFromDomain(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":      res,
		"pagination": response.NewPostsPagination(pagination),
	})
}
