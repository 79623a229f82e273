package routes

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"atelier/internal/server/middleware"
	"atelier/internal/storage"
)

const maxUploadBytes = 16 << 20

func UploadFileHandler(c echo.Context) error {
	type uploadResponse struct {
		Message string `json:"message"`
		URL     string `json:"url,omitempty"`
		Key     string `json:"key,omitempty"`
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Missing file"})
	}
	if fileHeader.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, uploadResponse{Message: "File too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Failed to read file"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Failed to read file"})
	}
	if len(data) > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, uploadResponse{Message: "File too large"})
	}

	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Only image uploads are supported"})
	}

	key, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	objectKey, err := storage.PutFile(ctx, app.S3, fileHeader.Filename, key, bytes.NewReader(data))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Failed to store file"})
	}

	url, err := storage.PublicFileURL(objectKey)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Failed to build file url"})
	}

	return c.JSON(http.StatusCreated, uploadResponse{
		Message: "File uploaded successfully",
		URL:     url,
		Key:     objectKey,
	})
}
