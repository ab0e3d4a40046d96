package chat

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the chat history store and migrates its schema.
func NewPostgresStore(databaseURL string) (Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s := &postgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *postgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			message TEXT NOT NULL,
			reply TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_user_id ON chat_messages(user_id);
	`)
	return err
}

func (s *postgresStore) Append(ctx context.Context, userID, message, reply string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO chat_messages (user_id, message, reply)
		VALUES ($1, $2, $3)
		RETURNING id
	`, userID, message, reply).Scan(&id)
	return id, err
}

// History returns up to limit most recent messages for the user,
// oldest-to-newest. The query fetches newest-first so LIMIT bounds the
// scan, then the slice is reversed for chronological reading order.
func (s *postgresStore) History(ctx context.Context, userID string, limit int) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, reply, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		var reply sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.Message, &reply, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Reply = reply.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out, nil
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
