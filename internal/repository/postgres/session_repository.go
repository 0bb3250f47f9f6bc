package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/repository/interfaces"
)

type pgxSessionRepository struct {
	db *pgxpool.Pool
}

// NewPgxSessionRepository creates a new Postgres-backed SessionRepository.
func NewPgxSessionRepository(db *pgxpool.Pool) interfaces.SessionRepository {
	return &pgxSessionRepository{db: db}
}

const sessionColumns = `id, user_id, token_hash, ip_address, user_agent, expires_at, revoked_at, created_at, updated_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	session := &models.Session{}
	err := row.Scan(
		&session.ID, &session.UserID, &session.TokenHash,
		&session.IPAddress, &session.UserAgent,
		&session.ExpiresAt, &session.RevokedAt,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return session, nil
}

// CreateCapped inserts the session, evicting the oldest active one when the
// owner is at the cap. The user row is locked for the duration of the
// transaction so concurrent issues for the same account serialize here
// instead of both passing the count check.
func (r *pgxSessionRepository) CreateCapped(ctx context.Context, session *models.Session, maxActive int) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin session transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, session.UserID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrAccountNotFound
		}
		return fmt.Errorf("failed to lock user row: %w", err)
	}

	var activeCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND revoked_at IS NULL`,
		session.UserID,
	).Scan(&activeCount)
	if err != nil {
		return fmt.Errorf("failed to count active sessions: %w", err)
	}

	if activeCount >= maxActive {
		// Evict exactly one: the oldest still-active session.
		_, err = tx.Exec(ctx, `
			UPDATE sessions SET revoked_at = NOW(), updated_at = NOW()
			WHERE id = (
				SELECT id FROM sessions
				WHERE user_id = $1 AND revoked_at IS NULL
				ORDER BY created_at ASC
				LIMIT 1
			)`, session.UserID)
		if err != nil {
			return fmt.Errorf("failed to evict oldest session: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, revoked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		session.ID, session.UserID, session.TokenHash,
		session.IPAddress, session.UserAgent,
		session.ExpiresAt, session.RevokedAt,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session transaction: %w", err)
	}
	return nil
}

func (r *pgxSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE token_hash = $1`
	return scanSession(r.db.QueryRow(ctx, query, tokenHash))
}

func (r *pgxSessionRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > NOW()
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating sessions: %w", err)
	}
	return sessions, nil
}

func (r *pgxSessionRepository) UpdateDeviceContext(ctx context.Context, id uuid.UUID, ipAddress, userAgent string) error {
	query := `UPDATE sessions SET ip_address = $2, user_agent = $3, updated_at = NOW() WHERE id = $1`
	commandTag, err := r.db.Exec(ctx, query, id, ipAddress, userAgent)
	if err != nil {
		return fmt.Errorf("failed to update session device context: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return domainErrors.ErrSessionNotFound
	}
	return nil
}

func (r *pgxSessionRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	query := `UPDATE sessions SET revoked_at = NOW(), updated_at = NOW() WHERE token_hash = $1 AND revoked_at IS NULL`
	commandTag, err := r.db.Exec(ctx, query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to revoke session by token hash: %w", err)
	}
	return commandTag.RowsAffected() > 0, nil
}

func (r *pgxSessionRepository) RevokeByID(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	// The user_id predicate makes revoking someone else's session a no-op.
	query := `UPDATE sessions SET revoked_at = NOW(), updated_at = NOW() WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL`
	commandTag, err := r.db.Exec(ctx, query, sessionID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke session by id: %w", err)
	}
	return commandTag.RowsAffected() > 0, nil
}

func (r *pgxSessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE sessions SET revoked_at = NOW(), updated_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`
	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke all sessions for user: %w", err)
	}
	return nil
}

func (r *pgxSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`
	commandTag, err := r.db.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return commandTag.RowsAffected(), nil
}

var _ interfaces.SessionRepository = (*pgxSessionRepository)(nil)
