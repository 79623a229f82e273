package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"atelier/internal/db"
	"atelier/internal/storage"
	"atelier/internal/util"
	"atelier/pkg/linkmeta"
	"atelier/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessLinkMeta enriches a link card with page metadata: the favicon
// becomes the icon, and an empty title is filled from the page title. A
// card deleted in the meantime is not an error.
func ProcessLinkMeta(ctx context.Context, links *linkmeta.Fetcher, pgConn *pgxpool.Pool, body string) error {
	var msg struct {
		CardID string `json:"card_id"`
		URL    string `json:"url"`
	}
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("invalid linkmeta message: %w", err)
	}
	if msg.CardID == "" || msg.URL == "" {
		return fmt.Errorf("invalid linkmeta message: missing card_id or url")
	}

	meta, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) (linkmeta.Metadata, error) {
		return links.Fetch(ctx, msg.URL)
	})
	if err != nil {
		return fmt.Errorf("failed to resolve metadata for %s: %w", msg.URL, err)
	}

	q := db.New(pgConn)
	card, err := q.GetCard(ctx, msg.CardID)
	if err != nil {
		if err == pgx.ErrNoRows {
			logger.Info("Card gone before enrichment", "card", msg.CardID)
			return nil
		}
		return err
	}

	params := db.UpdateCardParams{ID: msg.CardID}
	if meta.FaviconURL != "" && card.Icon == "" {
		params.Icon = &meta.FaviconURL
	}
	if meta.Title != "" && card.Title == "" {
		params.Title = &meta.Title
	}
	if params.Icon == nil && params.Title == nil {
		return nil
	}

	if _, err := q.UpdateCard(ctx, params); err != nil {
		return fmt.Errorf("failed to update card %s: %w", msg.CardID, err)
	}

	logger.Info("Enriched link card", "card", msg.CardID, "url", msg.URL)
	return nil
}

// ProcessCleanup removes an orphaned upload from object storage.
func ProcessCleanup(ctx context.Context, client *s3.Client, body string) error {
	var msg struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("invalid cleanup message: %w", err)
	}
	if msg.Key == "" {
		return fmt.Errorf("invalid cleanup message: missing key")
	}

	err := util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
		return storage.DeleteFile(ctx, client, msg.Key)
	})
	if err != nil {
		return err
	}

	logger.Info("Removed orphaned upload", "key", msg.Key)
	return nil
}
