package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/shared"
)

// ProfileRepository persists [models.Profile] rows.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new [ProfileRepository] with the given database connection
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile with generated ID and sequence
func (r *ProfileRepository) Create(profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "profiles")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	profile.ID = shared.GenerateID()
	profile.Sequence = sequence
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO profiles (id, sequence, user_id, email, display_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, profile.ID, sequence, profile.UserID, profile.Email, profile.DisplayName, string(profile.Role), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// GetByUser retrieves a profile by its portal user id.
func (r *ProfileRepository) GetByUser(userID string) (*models.Profile, error) {
	query := `
		SELECT id, sequence, user_id, email, display_name, role, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
	`

	var (
		profile models.Profile
		role    string
	)

	err := r.db.QueryRow(query, userID).Scan(
		&profile.ID, &profile.Sequence, &profile.UserID, &profile.Email,
		&profile.DisplayName, &role, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile not found: %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	profile.Role = models.ProfileRole(role)
	return &profile, nil
}

// AdminEmails returns the email addresses of every admin-role profile.
//
// An empty result is not an error; callers fall back to the configured
// operator address.
func (r *ProfileRepository) AdminEmails() ([]string, error) {
	query := `SELECT email FROM profiles WHERE role = ? ORDER BY sequence ASC`

	rows, err := r.db.Query(query, string(models.RoleAdmin))
	if err != nil {
		return nil, fmt.Errorf("failed to query admin profiles: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return emails, nil
}
