package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"atelier/internal/blog"
	"atelier/pkg/ai"
	"atelier/pkg/linkmeta"
)

// AppUser is the authenticated caller. A nil user is an anonymous
// visitor, which is a legitimate state: reads are public.
type AppUser struct {
	UserID int64
	Role   string
}

// App bundles the shared server dependencies handed to every request.
type App struct {
	DBConn   *pgxpool.Pool
	Queue    *amqp091.Channel
	Key      *keyfunc.Keyfunc
	S3       *s3.Client
	AiClient ai.ChatClient
	Blog     *blog.Library
	Links    *linkmeta.Fetcher

	MasterAPIKey string
	MasterUserID int64

	// Canvases anyone may mutate without authentication, e.g. a public
	// guestbook board.
	PublicCanvases []string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
