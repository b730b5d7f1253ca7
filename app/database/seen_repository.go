package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-hook/app/dedup"
)

var _ dedup.Store = (*SeenRepository)(nil)

// SeenRepository stores the dedup record in the seen_entries table.
type SeenRepository struct {
	db             *DB
	maxSeenPerFeed int
}

func NewSeenRepository(db *DB, maxSeenPerFeed int) *SeenRepository {
	return &SeenRepository{db: db, maxSeenPerFeed: maxSeenPerFeed}
}

func (r *SeenRepository) Load(ctx context.Context) (*dedup.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT feed_url, entry_id
		FROM seen_entries
		ORDER BY feed_url, position
	`)
	if err != nil {
		return dedup.NewRecord(r.maxSeenPerFeed), fmt.Errorf("failed to load seen entries: %w", err)
	}
	defer rows.Close()

	data := make(map[string][]string)
	for rows.Next() {
		var feedURL, entryID string
		if err := rows.Scan(&feedURL, &entryID); err != nil {
			return dedup.NewRecord(r.maxSeenPerFeed), fmt.Errorf("failed to scan seen entry row: %w", err)
		}
		data[feedURL] = append(data[feedURL], entryID)
	}

	if err := rows.Err(); err != nil {
		return dedup.NewRecord(r.maxSeenPerFeed), fmt.Errorf("error iterating seen entry rows: %w", err)
	}

	record := dedup.FromMap(data, r.maxSeenPerFeed)
	slog.Debug("Dedup state loaded", "path", r.db.path, "feeds", record.FeedCount(), "entries", record.Total())

	return record, nil
}

// Persist replaces the stored record inside a single transaction.
func (r *SeenRepository) Persist(ctx context.Context, record *dedup.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_entries`); err != nil {
		return fmt.Errorf("failed to clear seen entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO seen_entries (feed_url, entry_id, position)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for feedURL, ids := range record.ToMap() {
		for position, entryID := range ids {
			if _, err := stmt.ExecContext(ctx, feedURL, entryID, position); err != nil {
				return fmt.Errorf("failed to insert seen entry: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen entries: %w", err)
	}

	slog.Debug("Dedup state persisted", "path", r.db.path, "feeds", record.FeedCount(), "entries", record.Total())
	return nil
}
