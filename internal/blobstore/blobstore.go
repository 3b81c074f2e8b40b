// Package blobstore implements the BlobStore external collaborator
// (spec §1, §6): campaign image storage keyed by (campaign_id, filename),
// bounded by the configured per-campaign image count, size, and MIME type.
package blobstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subculture-collective/adserve/config"
	"github.com/subculture-collective/adserve/internal/apperr"
)

// Image is one stored campaign image.
type Image struct {
	FileName string
	MIMEType string
	Data     []byte
}

// Store persists campaign images in Postgres, grounded on the original
// service's own choice of storing image bytes alongside the relational
// schema rather than a separate object-storage dependency.
type Store struct {
	pool *pgxpool.Pool
	cfg  config.MediaConfig
}

// New wires a Store to the shared connection pool and media limits.
func New(pool *pgxpool.Pool, cfg config.MediaConfig) *Store {
	return &Store{pool: pool, cfg: cfg}
}

// Upload stores images for campaignID, rejecting the whole batch if it
// would push the campaign over MaxImagesPerCampaign, if any image exceeds
// MaxImageSizeBytes, or if any MIME type is not in AllowedMIMETypes.
func (s *Store) Upload(ctx context.Context, campaignID uuid.UUID, images []Image) error {
	for _, img := range images {
		if int64(len(img.Data)) > s.cfg.MaxImageSizeBytes {
			return apperr.PayloadError("image exceeds maximum allowed size")
		}
		if !s.allowedMIME(img.MIMEType) {
			return apperr.PayloadError("image MIME type not allowed: " + img.MIMEType)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "starting image upload transaction", err)
	}
	defer tx.Rollback(ctx)

	var current int
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM campaign_images WHERE campaign_id = $1`, campaignID,
	).Scan(&current); err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "counting campaign images", err)
	}
	if current+len(images) > s.cfg.MaxImagesPerCampaign {
		return apperr.PayloadError("campaign would exceed maximum images per campaign")
	}

	for _, img := range images {
		_, err := tx.Exec(ctx, `
			INSERT INTO campaign_images (campaign_id, file_name, mime_type, file_size, data)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (campaign_id, file_name) DO UPDATE SET
				mime_type = EXCLUDED.mime_type,
				file_size = EXCLUDED.file_size,
				data = EXCLUDED.data
		`, campaignID, img.FileName, img.MIMEType, len(img.Data), img.Data)
		if err != nil {
			return apperr.Wrap(apperr.CodeUnknown, "storing campaign image", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "committing image upload", err)
	}
	return nil
}

func (s *Store) allowedMIME(mime string) bool {
	for _, allowed := range s.cfg.AllowedMIMETypes {
		if allowed == mime {
			return true
		}
	}
	return false
}

// Names returns every filename stored for campaignID.
func (s *Store) Names(ctx context.Context, campaignID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT file_name FROM campaign_images WHERE campaign_id = $1 ORDER BY file_name ASC`, campaignID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "listing campaign image names", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "scanning campaign image name", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Get returns one campaign image, scoped to advertiserID so an advertiser
// cannot fetch another's campaign image by guessing a filename.
func (s *Store) Get(ctx context.Context, campaignID, advertiserID uuid.UUID, fileName string) (*Image, error) {
	var img Image
	img.FileName = fileName
	err := s.pool.QueryRow(ctx, `
		SELECT mime_type, data FROM campaign_images
		WHERE campaign_id = $1 AND file_name = $2
			AND EXISTS (SELECT 1 FROM campaigns WHERE campaign_id = $1 AND advertiser_id = $3)
	`, campaignID, fileName, advertiserID).Scan(&img.MIMEType, &img.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("image not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "loading campaign image", err)
	}
	return &img, nil
}

// Delete removes one campaign image, scoped to advertiserID.
func (s *Store) Delete(ctx context.Context, campaignID, advertiserID uuid.UUID, fileName string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM campaign_images
		WHERE campaign_id = $1 AND file_name = $2
			AND EXISTS (SELECT 1 FROM campaigns WHERE campaign_id = $1 AND advertiser_id = $3)
	`, campaignID, fileName, advertiserID)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "deleting campaign image", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("image not found")
	}
	return nil
}
