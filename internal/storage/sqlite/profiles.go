package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/caregiver"
	domprofile "github.com/nexacare/caresearch/internal/domain/profile"
)

// GetCaregiverView loads the caregiver projection: account, address, the
// caregiver aggregate with charges and reviews.
func (s *Store) GetCaregiverView(ctx context.Context, userID string) (domprofile.View, error) {
	account, address, err := s.accountRow(ctx, userID)
	if err != nil {
		return domprofile.View{}, err
	}

	q := `
		SELECT c.user_id, c.vector_id, c.experience, c.specializations, c.languages,
		       c.verification_status, c.description,
		       ch.caregiver_id, ch.hourly_rate, ch.visit_fee, ch.currency,
		       u.name, u.image, a.city, a.state
		FROM caregivers c
		JOIN users u ON u.id = c.user_id
		LEFT JOIN addresses a ON a.user_id = c.user_id
		LEFT JOIN charges ch ON ch.caregiver_id = c.user_id
		WHERE c.user_id = ?`

	row := s.db.QueryRowContext(ctx, q, userID)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domprofile.View{}, fmt.Errorf("caregiver %s: %w", userID, domain.ErrProfileNotFound)
		}
		return domprofile.View{}, err
	}

	reviews, err := s.reviewsFor(ctx, []string{userID})
	if err != nil {
		return domprofile.View{}, err
	}
	withReviews := attachReviews([]caregiver.Profile{profile}, reviews)

	return domprofile.View{
		Role:      domprofile.RoleCaregiver,
		Account:   account,
		Address:   address,
		Caregiver: &withReviews[0],
	}, nil
}

// GetCustomerView loads the customer projection: account and address only.
func (s *Store) GetCustomerView(ctx context.Context, userID string) (domprofile.View, error) {
	account, address, err := s.accountRow(ctx, userID)
	if err != nil {
		return domprofile.View{}, err
	}
	return domprofile.View{
		Role:    domprofile.RoleCustomer,
		Account: account,
		Address: address,
	}, nil
}

// UpsertCharges atomically creates or replaces the charges row keyed by the
// owning caregiver. Single statement, no read-then-branch.
func (s *Store) UpsertCharges(ctx context.Context, caregiverID string, ch caregiver.Charges) error {
	if err := s.requireCaregiver(ctx, caregiverID); err != nil {
		return err
	}

	q := `
		INSERT INTO charges (caregiver_id, hourly_rate, visit_fee, currency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(caregiver_id) DO UPDATE SET
			hourly_rate = excluded.hourly_rate,
			visit_fee = excluded.visit_fee,
			currency = excluded.currency`

	_, err := s.db.ExecContext(ctx, q, caregiverID, rateArg(ch.HourlyRate()), rateArg(ch.VisitFee()), ch.Currency())
	if err != nil {
		return fmt.Errorf("%w: upsert charges %s: %w", domain.ErrStore, caregiverID, err)
	}
	return nil
}

// EmbeddingSource returns the caregiver's current vector id (may be empty)
// and the text to embed for indexing.
func (s *Store) EmbeddingSource(ctx context.Context, caregiverID string) (string, string, error) {
	q := "SELECT vector_id, description, specializations FROM caregivers WHERE user_id = ?"

	var vectorID sql.NullString
	var description, rawSpecs string
	err := s.db.QueryRowContext(ctx, q, caregiverID).Scan(&vectorID, &description, &rawSpecs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("caregiver %s: %w", caregiverID, domain.ErrProfileNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("%w: embedding source %s: %w", domain.ErrStore, caregiverID, err)
	}

	specs, err := decodeStringList(rawSpecs)
	if err != nil {
		return "", "", fmt.Errorf("%w: caregiver %s: %w", domain.ErrStore, caregiverID, err)
	}

	text := strings.TrimSpace(description + " " + strings.Join(specs, " "))
	return vectorID.String, text, nil
}

// AssignVectorID persists a newly minted vector id. The id is assigned once
// at first indexing; callers only invoke this when none exists yet.
func (s *Store) AssignVectorID(ctx context.Context, caregiverID, vectorID string) error {
	q := "UPDATE caregivers SET vector_id = ? WHERE user_id = ? AND vector_id IS NULL"

	res, err := s.db.ExecContext(ctx, q, vectorID, caregiverID)
	if err != nil {
		return fmt.Errorf("%w: assign vector id %s: %w", domain.ErrStore, caregiverID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: assign vector id %s: %w", domain.ErrStore, caregiverID, err)
	}
	if affected == 0 {
		if err := s.requireCaregiver(ctx, caregiverID); err != nil {
			return err
		}
		return fmt.Errorf("%w: caregiver %s already has a vector id", domain.ErrInvalidInput, caregiverID)
	}
	return nil
}

func (s *Store) accountRow(ctx context.Context, userID string) (domprofile.Account, *domprofile.Address, error) {
	q := `
		SELECT u.id, u.name, u.email, u.image, u.contact_number,
		       a.street, a.city, a.state, a.zip_code, a.country
		FROM users u
		LEFT JOIN addresses a ON a.user_id = u.id
		WHERE u.id = ?`

	var (
		account                          domprofile.Account
		image, contact                   sql.NullString
		street, city, state, zip, country sql.NullString
	)
	err := s.db.QueryRowContext(ctx, q, userID).Scan(
		&account.ID, &account.Name, &account.Email, &image, &contact,
		&street, &city, &state, &zip, &country,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domprofile.Account{}, nil, fmt.Errorf("user %s: %w", userID, domain.ErrProfileNotFound)
	}
	if err != nil {
		return domprofile.Account{}, nil, fmt.Errorf("%w: get user %s: %w", domain.ErrStore, userID, err)
	}
	account.Image = image.String
	account.ContactNumber = contact.String

	var address *domprofile.Address
	if street.Valid {
		address = &domprofile.Address{
			Street:  street.String,
			City:    city.String,
			State:   state.String,
			ZipCode: zip.String,
			Country: country.String,
		}
	}
	return account, address, nil
}

func (s *Store) requireCaregiver(ctx context.Context, caregiverID string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM caregivers WHERE user_id = ?", caregiverID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("caregiver %s: %w", caregiverID, domain.ErrProfileNotFound)
	}
	if err != nil {
		return fmt.Errorf("%w: get caregiver %s: %w", domain.ErrStore, caregiverID, err)
	}
	return nil
}

func rateArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
