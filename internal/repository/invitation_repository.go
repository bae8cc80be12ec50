package repository

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/AdityaVyavhare/oddo-Hackathon/internal/models"
)

// AcceptResult is what a successful redemption hands back to the caller.
type AcceptResult struct {
	TripID      string
	Permissions models.PermissionLevel
}

type InvitationRepository interface {
	CreateInvitation(inv models.Invitation) (models.Invitation, error)
	GetInvitationByToken(token string) (models.InvitationSummary, error)
	AcceptInvitation(token, userID string) (AcceptResult, error)
	DeclineInvitation(token string) error
	ListInvitationsByEmail(email string) ([]models.InvitationSummary, error)
}

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) CreateInvitation(inv models.Invitation) (models.Invitation, error) {
	const query = `
		INSERT INTO trip_invitations (trip_id, invited_by, invited_email, invitation_token, permissions, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, trip_id, invited_by, invited_email, invitation_token, permissions, status, created_at, expires_at;
	`

	err := r.db.QueryRow(query,
		inv.TripID,
		inv.InvitedBy,
		strings.TrimSpace(strings.ToLower(inv.InvitedEmail)),
		inv.Token,
		inv.Permissions,
		inv.ExpiresAt,
	).Scan(
		&inv.ID,
		&inv.TripID,
		&inv.InvitedBy,
		&inv.InvitedEmail,
		&inv.Token,
		&inv.Permissions,
		&inv.Status,
		&inv.CreatedAt,
		&inv.ExpiresAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Invitation{}, ErrNotFound
		}
		return models.Invitation{}, errors.Wrap(err, "insert invitation")
	}

	return inv, nil
}

const invitationSummaryColumns = `
	ti.id, ti.invitation_token, ti.permissions, ti.created_at, ti.expires_at,
	t.id, t.name, t.description, t.cover_image_url,
	u.username, u.full_name`

// GetInvitationByToken resolves a token to its pending, unexpired
// invitation. Expired or resolved invitations are indistinguishable from
// absent ones on this path.
func (r *invitationRepository) GetInvitationByToken(token string) (models.InvitationSummary, error) {
	const query = `
		SELECT` + invitationSummaryColumns + `
		FROM trip_invitations ti
		JOIN trips t ON t.id = ti.trip_id
		JOIN users u ON u.id = ti.invited_by
		WHERE ti.invitation_token = $1
		  AND ti.status = 'pending'
		  AND ti.expires_at > now();
	`

	summary, err := scanInvitationSummary(r.db.QueryRow(query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.InvitationSummary{}, ErrNotFound
		}
		return models.InvitationSummary{}, err
	}

	return summary, nil
}

// AcceptInvitation atomically redeems a token: a compare-and-swap flips the
// invitation from pending to accepted, then a collaborator row is inserted
// for the redeeming user. Both happen in one transaction, so a losing
// concurrent accept either fails the CAS (ErrInvitationResolved) or trips
// the (trip_id, user_id) unique index (ErrDuplicateCollaborator) and leaves
// no partial state behind.
func (r *invitationRepository) AcceptInvitation(token, userID string) (AcceptResult, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return AcceptResult{}, errors.Wrap(err, "begin accept transaction")
	}
	defer tx.Rollback()

	const claim = `
		UPDATE trip_invitations
		SET status = 'accepted'
		WHERE invitation_token = $1
		  AND status = 'pending'
		  AND expires_at > now()
		RETURNING trip_id, permissions;
	`

	var result AcceptResult
	err = tx.QueryRow(claim, token).Scan(&result.TripID, &result.Permissions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AcceptResult{}, r.classifyUnclaimable(tx, token)
		}
		return AcceptResult{}, errors.Wrap(err, "claim invitation")
	}

	const insert = `
		INSERT INTO trip_collaborators (trip_id, user_id, permissions)
		VALUES ($1, $2, $3);
	`

	if _, err := tx.Exec(insert, result.TripID, userID, result.Permissions); err != nil {
		switch {
		case isUniqueViolation(err):
			return AcceptResult{}, ErrDuplicateCollaborator
		case isForeignKeyViolation(err):
			return AcceptResult{}, ErrUnknownUser
		}
		return AcceptResult{}, errors.Wrap(err, "insert collaborator")
	}

	if err := tx.Commit(); err != nil {
		return AcceptResult{}, errors.Wrap(err, "commit accept transaction")
	}

	return result, nil
}

// classifyUnclaimable tells a token that never existed apart from one whose
// invitation is expired or no longer pending.
func (r *invitationRepository) classifyUnclaimable(tx *sql.Tx, token string) error {
	var status models.InvitationStatus
	err := tx.QueryRow(`SELECT status FROM trip_invitations WHERE invitation_token = $1`, token).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return errors.Wrap(err, "inspect invitation")
	}
	return ErrInvitationResolved
}

// DeclineInvitation marks a pending invitation declined. Declining an
// already-declined invitation is a no-op success; an accepted one cannot be
// declined.
func (r *invitationRepository) DeclineInvitation(token string) error {
	const query = `
		UPDATE trip_invitations
		SET status = 'declined'
		WHERE invitation_token = $1 AND status = 'pending';
	`

	result, err := r.db.Exec(query, token)
	if err != nil {
		return errors.Wrap(err, "decline invitation")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var status models.InvitationStatus
	err = r.db.QueryRow(`SELECT status FROM trip_invitations WHERE invitation_token = $1`, token).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return errors.Wrap(err, "inspect invitation")
	}
	if status == models.InvitationDeclined {
		return nil
	}
	return ErrInvitationResolved
}

func (r *invitationRepository) ListInvitationsByEmail(email string) ([]models.InvitationSummary, error) {
	const query = `
		SELECT` + invitationSummaryColumns + `
		FROM trip_invitations ti
		JOIN trips t ON t.id = ti.trip_id
		JOIN users u ON u.id = ti.invited_by
		WHERE ti.invited_email = $1
		  AND ti.status = 'pending'
		  AND ti.expires_at > now()
		ORDER BY ti.created_at DESC;
	`

	rows, err := r.db.Query(query, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, errors.Wrap(err, "query invitations")
	}
	defer rows.Close()

	var invitations []models.InvitationSummary
	for rows.Next() {
		summary, err := scanInvitationSummary(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return invitations, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitationSummary(row rowScanner) (models.InvitationSummary, error) {
	var summary models.InvitationSummary
	err := row.Scan(
		&summary.ID,
		&summary.Token,
		&summary.Permissions,
		&summary.CreatedAt,
		&summary.ExpiresAt,
		&summary.TripID,
		&summary.TripName,
		&summary.TripDescription,
		&summary.TripCoverImageURL,
		&summary.InvitedByUsername,
		&summary.InvitedByName,
	)
	return summary, err
}
