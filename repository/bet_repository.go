package repository

import (
	"context"
	"errors"
	"fmt"

	"betpal/database"
	"betpal/models"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `id, title, description, stake, deadline, status, resolution_type, created_by, judge_id, winner_id, created_at, updated_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.Title,
		&bet.Description,
		&bet.Stake,
		&bet.Deadline,
		&bet.Status,
		&bet.ResolutionType,
		&bet.CreatedBy,
		&bet.JudgeID,
		&bet.WinnerID,
		&bet.CreatedAt,
		&bet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Create inserts a new bet row
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (title, description, stake, deadline, status, resolution_type, created_by, judge_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.Title,
		bet.Description,
		bet.Stake,
		bet.Deadline,
		bet.Status,
		bet.ResolutionType,
		bet.CreatedBy,
		bet.JudgeID,
	).Scan(&bet.ID, &bet.CreatedAt, &bet.UpdatedAt)

	if err != nil {
		return translateError(err, "failed to create bet")
	}

	return nil
}

// GetByID retrieves a bet by ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	query := fmt.Sprintf(`SELECT %s FROM bets WHERE id = $1`, betColumns)

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "failed to get bet %d", id)
	}

	return bet, nil
}

// GetByIDForUpdate retrieves a bet and locks its row until the transaction
// ends. Concurrent transitions on the same bet serialize on this lock.
func (r *BetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	query := fmt.Sprintf(`SELECT %s FROM bets WHERE id = $1 FOR UPDATE`, betColumns)

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "failed to lock bet %d", id)
	}

	return bet, nil
}

// GetDetailByID retrieves a bet with all its participant rows
func (r *BetRepository) GetDetailByID(ctx context.Context, id int64) (*models.BetDetail, error) {
	bet, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, nil
	}

	participants, err := r.getParticipantsByBet(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.BetDetail{Bet: bet, Participants: participants}, nil
}

// GetByUser returns bets where the user is the creator or an accepted
// participant, newest first
func (r *BetRepository) GetByUser(ctx context.Context, userID int64) ([]*models.BetDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bets b
		WHERE b.created_by = $1
		   OR EXISTS (
			SELECT 1 FROM bet_participants bp
			WHERE bp.bet_id = b.id
			  AND bp.participant_id = $1
			  AND bp.status = 'accepted'
		   )
		ORDER BY b.created_at DESC
	`, "b."+betColumns)

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, translateError(err, "failed to get bets for user %d", userID)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate bets for user %d", userID)
	}

	details := make([]*models.BetDetail, 0, len(bets))
	for _, bet := range bets {
		participants, err := r.getParticipantsByBet(ctx, bet.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, &models.BetDetail{Bet: bet, Participants: participants})
	}

	return details, nil
}

// MarkActive transitions a pending bet to active. The status guard makes the
// call idempotent for an already active bet and inert for a completed one.
func (r *BetRepository) MarkActive(ctx context.Context, betID int64) error {
	query := `
		UPDATE bets
		SET status = 'active', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	if _, err := r.q.Exec(ctx, query, betID); err != nil {
		return translateError(err, "failed to activate bet %d", betID)
	}

	return nil
}

// CompleteBet transitions an active bet to completed with the given winner.
// The status guard is evaluated by the store inside the same statement as the
// write, so a second resolver always observes zero rows affected.
func (r *BetRepository) CompleteBet(ctx context.Context, betID int64, winnerID int64) (bool, error) {
	query := `
		UPDATE bets
		SET status = 'completed', winner_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.q.Exec(ctx, query, betID, winnerID)
	if err != nil {
		return false, translateError(err, "failed to complete bet %d", betID)
	}

	return result.RowsAffected() > 0, nil
}

// CreateParticipant inserts an invited participant row
func (r *BetRepository) CreateParticipant(ctx context.Context, p *models.BetParticipant) error {
	query := `
		INSERT INTO bet_participants (bet_id, participant_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, p.BetID, p.ParticipantID, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translateError(err, "failed to add participant %d to bet %d", p.ParticipantID, p.BetID)
	}

	return nil
}

// GetParticipant retrieves a participant row
func (r *BetRepository) GetParticipant(ctx context.Context, betID, participantID int64) (*models.BetParticipant, error) {
	query := `
		SELECT id, bet_id, participant_id, status, created_at, updated_at
		FROM bet_participants
		WHERE bet_id = $1 AND participant_id = $2
	`

	var p models.BetParticipant
	err := r.q.QueryRow(ctx, query, betID, participantID).Scan(
		&p.ID,
		&p.BetID,
		&p.ParticipantID,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "failed to get participant %d for bet %d", participantID, betID)
	}

	return &p, nil
}

// UpdateParticipantStatus transitions a participant between statuses. The
// from-status guard runs inside the UPDATE, so two concurrent accepts of the
// same invitation can never both report success.
func (r *BetRepository) UpdateParticipantStatus(ctx context.Context, betID, participantID int64, from, to models.ParticipantStatus) (bool, error) {
	query := `
		UPDATE bet_participants
		SET status = $4, updated_at = NOW()
		WHERE bet_id = $1 AND participant_id = $2 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, betID, participantID, from, to)
	if err != nil {
		return false, translateError(err, "failed to update participant %d for bet %d", participantID, betID)
	}

	return result.RowsAffected() > 0, nil
}

func (r *BetRepository) getParticipantsByBet(ctx context.Context, betID int64) ([]*models.BetParticipant, error) {
	query := `
		SELECT id, bet_id, participant_id, status, created_at, updated_at
		FROM bet_participants
		WHERE bet_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, translateError(err, "failed to get participants for bet %d", betID)
	}
	defer rows.Close()

	var participants []*models.BetParticipant
	for rows.Next() {
		var p models.BetParticipant
		err := rows.Scan(
			&p.ID,
			&p.BetID,
			&p.ParticipantID,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate participants for bet %d", betID)
	}

	return participants, nil
}
