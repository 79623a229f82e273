package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"atelier/internal/server/middleware"
	"atelier/pkg/linkmeta"
)

func GetLinkMetadataHandler(c echo.Context) error {
	type linkMetadataData struct {
		URL string `query:"url" validate:"required,url"`
	}

	type linkMetadataResponse struct {
		Message  string             `json:"message"`
		Metadata *linkmeta.Metadata `json:"metadata,omitempty"`
	}

	data := new(linkMetadataData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, linkMetadataResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, linkMetadataResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	meta, err := c.(*middleware.AppContext).App.Links.Fetch(ctx, data.URL)
	if err != nil {
		return c.JSON(http.StatusBadGateway, linkMetadataResponse{Message: "Failed to fetch link metadata"})
	}

	return c.JSON(http.StatusOK, linkMetadataResponse{
		Message:  "Metadata fetched successfully",
		Metadata: &meta,
	})
}
