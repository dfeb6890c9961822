package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pebbling/spaarpot/internal/model"
)

// ListGiftTypes returns every gift type, active or not, ordered by id.
func ListGiftTypes(ctx context.Context, q Querier) ([]model.GiftType, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, emoji, description, price, category, active, image_mime
		 FROM gift_types ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing gift types: %w", err)
	}
	defer rows.Close()

	var types []model.GiftType
	for rows.Next() {
		var g model.GiftType
		var description, imageMime sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &g.Emoji, &description, &g.Price, &g.Category, &g.Active, &imageMime); err != nil {
			return nil, fmt.Errorf("scanning gift type: %w", err)
		}
		g.Description = description.String
		g.ImageMime = imageMime.String
		types = append(types, g)
	}
	return types, rows.Err()
}

// SetGiftTypeImage sets a gift type's artwork.
func SetGiftTypeImage(ctx context.Context, q Querier, id int64, image []byte, mime string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE gift_types SET image = ?, image_mime = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting gift type image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("gift type %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// GetGiftTypeImage returns a gift type's artwork and MIME type. Data is nil
// when no artwork was uploaded.
func GetGiftTypeImage(ctx context.Context, q Querier, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM gift_types WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting gift type image: %w", err)
	}
	return image, mime.String, nil
}
