package request

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/quillhaven/quillhaven/domain"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// required passes whitespace-only strings, notblank does not
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}

type CreateComment struct {
	Content         string `json:"content" binding:"required,notblank"`
	PostID          int64  `json:"postId" binding:"required"`
	ParentCommentID int64  `json:"parentCommentId"`
}

// ToDomain: Request -> Domain
func (r *CreateComment) ToDomain() domain.Comment {
	return domain.Comment{
		PostID:   r.PostID,
		Content:  r.Content,
		ParentID: r.ParentCommentID,
	}
}

type EditComment struct {
	Content string `json:"content" binding:"required,notblank"`
}
