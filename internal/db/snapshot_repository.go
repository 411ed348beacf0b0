package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/snapshot"
)

// SnapshotRepository stores session snapshots in PostgreSQL.
// Implements snapshot.Store.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Save replaces the stored snapshot of a session (upsert + track delete/insert in one tx).
func (r *SnapshotRepository) Save(ctx context.Context, snap snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	acc := snap.Accumulator
	if _, err := tx.Exec(ctx, `
		INSERT INTO game_sessions (session_id, version, saved_at, quantity, capacity, rate, active,
		                           efficiency, balance, total_earned, total_spent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO UPDATE SET
			version      = EXCLUDED.version,
			saved_at     = EXCLUDED.saved_at,
			quantity     = EXCLUDED.quantity,
			capacity     = EXCLUDED.capacity,
			rate         = EXCLUDED.rate,
			active       = EXCLUDED.active,
			efficiency   = EXCLUDED.efficiency,
			balance      = EXCLUDED.balance,
			total_earned = EXCLUDED.total_earned,
			total_spent  = EXCLUDED.total_spent`,
		snap.SessionID, snapshot.CurrentVersion, snap.SavedAt,
		acc.Quantity, acc.Capacity, acc.Rate, acc.Active,
		snap.Efficiency, snap.Balance, snap.TotalEarned, snap.TotalSpent,
	); err != nil {
		return fmt.Errorf("upsert session %s: %w", snap.SessionID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM game_upgrade_tracks WHERE session_id = $1`, snap.SessionID); err != nil {
		return fmt.Errorf("delete tracks session %s: %w", snap.SessionID, err)
	}

	for _, kind := range production.Kinds() {
		track, _ := snap.Track(kind)
		if track.NextCost <= 0 {
			// Zero track: not purchased or not saved, restored from config.
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_upgrade_tracks (session_id, track, level, next_cost) VALUES ($1, $2, $3, $4)`,
			snap.SessionID, string(kind), track.Level, track.NextCost); err != nil {
			return fmt.Errorf("insert %s track: %w", kind, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}

// Load returns the stored snapshot of a session, or snapshot.ErrNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, sessionID string) (snapshot.Snapshot, error) {
	snap := snapshot.Default()
	snap.SessionID = sessionID

	acc := &snap.Accumulator
	err := r.pool.QueryRow(ctx, `
		SELECT version, saved_at, quantity, capacity, rate, active,
		       efficiency, balance, total_earned, total_spent
		FROM game_sessions WHERE session_id = $1`, sessionID,
	).Scan(&snap.Version, &snap.SavedAt, &acc.Quantity, &acc.Capacity, &acc.Rate, &acc.Active,
		&snap.Efficiency, &snap.Balance, &snap.TotalEarned, &snap.TotalSpent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapshot.Snapshot{}, fmt.Errorf("%w: session %s", snapshot.ErrNotFound, sessionID)
		}
		return snapshot.Snapshot{}, fmt.Errorf("query session %s: %w", sessionID, err)
	}
	if snap.Version > snapshot.CurrentVersion {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %d", snapshot.ErrUnsupportedVersion, snap.Version)
	}
	snap.Version = snapshot.CurrentVersion
	snap.SavedAt = snap.SavedAt.UTC()

	rows, err := r.pool.Query(ctx,
		`SELECT track, level, next_cost FROM game_upgrade_tracks WHERE session_id = $1`, sessionID)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("query tracks session %s: %w", sessionID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			track production.UpgradeTrack
		)
		if err := rows.Scan(&kind, &track.Level, &track.NextCost); err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("scan track row: %w", err)
		}
		// Unknown tracks from newer builds are ignored.
		snap.SetTrack(production.TrackKind(kind), track)
	}
	if err := rows.Err(); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("iterate track rows: %w", err)
	}

	return snap, nil
}

// Delete removes a session and its tracks.
func (r *SnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM game_sessions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// ListSessions returns the ids of all stored sessions, most recently saved first.
func (r *SnapshotRepository) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT session_id::text FROM game_sessions ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return ids, nil
}
