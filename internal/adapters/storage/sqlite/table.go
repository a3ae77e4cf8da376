package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/PabloGalante/planora/internal/domain"
)

// table stores one record kind as JSON rows keyed by id and scoped by user_id.
type table[T any] struct {
	db   *sql.DB
	name string
}

func (t table[T]) insert(ctx context.Context, id string, userID domain.UserID, createdAt, updatedAt time.Time, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", t.name, err)
	}
	_, err = t.db.ExecContext(ctx,
		`INSERT INTO `+t.name+` (id, user_id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(userID), string(data), createdAt.UnixNano(), updatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert %s: %w", t.name, err)
	}
	return nil
}

func (t table[T]) update(ctx context.Context, id string, userID domain.UserID, updatedAt time.Time, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", t.name, err)
	}
	res, err := t.db.ExecContext(ctx,
		`UPDATE `+t.name+` SET data = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(data), updatedAt.UnixNano(), id, string(userID))
	if err != nil {
		return fmt.Errorf("update %s: %w", t.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t table[T]) get(ctx context.Context, userID domain.UserID, id string) (*T, error) {
	var data string
	err := t.db.QueryRowContext(ctx,
		`SELECT data FROM `+t.name+` WHERE id = ? AND user_id = ?`, id, string(userID)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t.name, err)
	}

	v := new(T)
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return nil, fmt.Errorf("decode %s row: %w", t.name, err)
	}
	return v, nil
}

// list returns the user's most recent rows, oldest first. limit <= 0 means all.
func (t table[T]) list(ctx context.Context, userID domain.UserID, limit int) ([]*T, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := t.db.QueryContext(ctx,
		`SELECT data FROM `+t.name+` WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		string(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		v := new(T)
		if err := json.Unmarshal([]byte(data), v); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", t.name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}

	slices.Reverse(out)
	return out, nil
}
