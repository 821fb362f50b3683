// Package repository provides persistence implementations for the chat and
// recipe feeds, backed by PostgreSQL or by process memory.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const messageColumns = `id, text, sender, ts, seen_at`

// PostgresMessageRepository stores chat messages in the messages table.
type PostgresMessageRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresMessageRepository creates a PostgresMessageRepository using the
// provided *sql.DB.
func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{DB: db}
}

// Insert stores m under a freshly generated id and returns that id. Any id
// already present on m is ignored.
func (r *PostgresMessageRepository) Insert(ctx context.Context, m models.ChatMessage) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO messages (id, text, sender, ts, seen_at) VALUES ($1, $2, $3, $4, $5)
	`, id, m.Text, string(m.Sender), m.Timestamp.UTC(), nullTime(m.SeenAt))
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}
	return id, nil
}

// List returns messages ascending by timestamp. With q.Limit set only the
// most recent q.Limit messages are returned; with q.Before set only those
// at or before the cutoff.
func (r *PostgresMessageRepository) List(ctx context.Context, q models.Query) ([]models.ChatMessage, error) {
	query, args := messageListQuery(q)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.ChatMessage{}
	for rows.Next() {
		var (
			m      models.ChatMessage
			sender string
			seenAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.Text, &sender, &m.Timestamp, &seenAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		m.Sender = models.Identity(sender)
		if seenAt.Valid {
			t := seenAt.Time
			m.SeenAt = &t
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func messageListQuery(q models.Query) (string, []any) {
	var args []any
	inner := `SELECT ` + messageColumns + ` FROM messages`
	if q.Before != nil {
		args = append(args, q.Before.UTC())
		inner += ` WHERE ts <= $1`
	}
	if q.Limit <= 0 {
		return inner + ` ORDER BY ts ASC`, args
	}
	args = append(args, q.Limit)
	inner += ` ORDER BY ts DESC LIMIT $` + strconv.Itoa(len(args))
	return `SELECT ` + messageColumns + ` FROM (` + inner + `) recent ORDER BY ts ASC`, args
}

// DeleteMany removes the messages with the given ids and reports how many
// rows went away. Unknown ids are ignored.
func (r *PostgresMessageRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM messages WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteBefore removes every message with a timestamp at or before cutoff.
func (r *PostgresMessageRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM messages WHERE ts <= $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old messages: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// MarkSeen sets seen_at on the given messages that have not been seen yet.
func (r *PostgresMessageRepository) MarkSeen(ctx context.Context, ids []string, at time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET seen_at = $1 WHERE id = ANY($2) AND seen_at IS NULL
	`, at.UTC(), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("mark seen: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
