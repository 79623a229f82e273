package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"atelier/internal/blog"
	"atelier/internal/server/middleware"
)

func GetPostHandler(c echo.Context) error {
	type getPostData struct {
		Slug string `param:"slug" validate:"required"`
	}

	type getPostResponse struct {
		Message string     `json:"message"`
		Post    *blog.Post `json:"post,omitempty"`
	}

	data := new(getPostData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getPostResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getPostResponse{
			Message: "Invalid request params",
		})
	}

	post, err := c.(*middleware.AppContext).App.Blog.Get(data.Slug)
	if err != nil {
		return c.JSON(http.StatusNotFound, getPostResponse{Message: "Post not found"})
	}

	return c.JSON(http.StatusOK, getPostResponse{
		Message: "Post fetched successfully",
		Post:    &post,
	})
}
