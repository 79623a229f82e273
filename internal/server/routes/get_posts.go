package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"atelier/internal/blog"
	"atelier/internal/server/middleware"
)

func GetPostsHandler(c echo.Context) error {
	type getPostsResponse struct {
		Message string      `json:"message"`
		Posts   []blog.Post `json:"posts"`
	}

	posts := c.(*middleware.AppContext).App.Blog.Posts()

	return c.JSON(http.StatusOK, getPostsResponse{
		Message: "Posts fetched successfully",
		Posts:   posts,
	})
}
