// Package leaderboard is the append-only log of final scores.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var schema = `CREATE TABLE IF NOT EXISTS leaderboard (
  id integer PRIMARY KEY AUTOINCREMENT,
  player1_score int NOT NULL,
  player2_score int NOT NULL,
  recorded_at timestamp NOT NULL
);`

type Entry struct {
	ID           int64     `db:"id" json:"id"`
	Player1Score int       `db:"player1_score" json:"player1Score"`
	Player2Score int       `db:"player2_score" json:"player2Score"`
	RecordedAt   time.Time `db:"recorded_at" json:"timestamp"`
}

type Store struct {
	conn *sqlx.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open leaderboard db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create leaderboard schema: %w", err)
	}
	return &Store{conn: db}, nil
}

func (s *Store) Append(ctx context.Context, player1Score, player2Score int) error {
	sql := `INSERT INTO leaderboard(player1_score, player2_score, recorded_at) VALUES(?, ?, ?);`
	_, err := s.conn.ExecContext(ctx, sql, player1Score, player2Score, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to append leaderboard entry: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	entries := []Entry{}
	sql := `SELECT * FROM leaderboard ORDER BY id DESC LIMIT ?;`
	if err := s.conn.SelectContext(ctx, &entries, sql, n); err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}
