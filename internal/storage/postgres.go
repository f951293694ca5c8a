package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
)

var (
	ErrDuplicateGame = errors.New("game already recorded")
	ErrUnexpectedDB  = errors.New("unexpected database error")
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS words (
		word TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id          UUID PRIMARY KEY,
		room_code   TEXT NOT NULL,
		winner      TEXT NOT NULL,
		rounds      INT NOT NULL,
		reason      TEXT NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS game_scores (
		game_id   UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		user_name TEXT NOT NULL,
		score     INT NOT NULL,
		PRIMARY KEY (game_id, user_name)
	)`,
	`CREATE INDEX IF NOT EXISTS games_finished_at_idx ON games (finished_at DESC)`,
}

// Postgres holds the word list and the archive of finished games.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Migrate creates the tables if they do not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) LoadWords(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, "SELECT word FROM words ORDER BY word")
	if err != nil {
		return nil, wrap(err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrap(err)
	}
	return words, nil
}

// AddWords inserts the words that are not stored yet and returns how many
// were new.
func (p *Postgres) AddWords(ctx context.Context, words []string) (int64, error) {
	batch := &pgx.Batch{}
	for _, w := range words {
		batch.Queue("INSERT INTO words (word) VALUES ($1) ON CONFLICT DO NOTHING", w)
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	var added int64
	for range words {
		tag, err := results.Exec()
		if err != nil {
			return added, wrap(err)
		}
		added += tag.RowsAffected()
	}
	return added, nil
}

// RecordGame stores a finished game with its final scores in one
// transaction.
func (p *Postgres) RecordGame(ctx context.Context, result internal.GameResult) error {
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO games (id, room_code, winner, rounds, reason, started_at, finished_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			result.GameID, result.RoomCode, result.Winner, result.Rounds,
			result.Reason, result.StartedAt, result.FinishedAt,
		)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for user, score := range result.Scores {
			batch.Queue("INSERT INTO game_scores (game_id, user_name, score) VALUES ($1, $2, $3)",
				result.GameID, user, score)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateGame
		}
		return wrap(err)
	}

	log.Debug().Str("game", result.GameID).Str("room", result.RoomCode).Msg("[RecordGame] game archived")
	return nil
}

// RecentGames returns up to limit finished games, newest first.
func (p *Postgres) RecentGames(ctx context.Context, limit int) ([]internal.GameResult, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT g.id::text, g.room_code, g.winner, g.rounds, g.reason, g.started_at, g.finished_at,
		       COALESCE(json_object_agg(s.user_name, s.score) FILTER (WHERE s.user_name IS NOT NULL), '{}')
		FROM games g
		LEFT JOIN game_scores s ON s.game_id = g.id
		GROUP BY g.id
		ORDER BY g.finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, wrap(err)
	}

	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (internal.GameResult, error) {
		var g internal.GameResult
		err := row.Scan(&g.GameID, &g.RoomCode, &g.Winner, &g.Rounds, &g.Reason,
			&g.StartedAt, &g.FinishedAt, &g.Scores)
		return g, err
	})
	if err != nil {
		return nil, wrap(err)
	}
	return games, nil
}

func wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedDB, err)
}
