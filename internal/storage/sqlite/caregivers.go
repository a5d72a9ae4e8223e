package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/caregiver"
	"github.com/nexacare/caresearch/internal/domain/search/query"
)

// ListByVectorIDs fetches caregiver profiles whose vector_id is in the
// candidate set, optionally filtered by an inclusive visit fee range.
//
// The price filter intentionally targets visit_fee, not hourly_rate — the
// product's booking flow charges per visit. A caregiver without a charges
// row (or without a visit fee) is a non-match when the filter is active and
// a normal match when it is not.
func (s *Store) ListByVectorIDs(
	ctx context.Context, vectorIDs []string, price *query.PriceRange,
) ([]caregiver.Profile, error) {
	if len(vectorIDs) == 0 {
		return nil, nil
	}

	chargesJoin := "LEFT JOIN charges ch ON ch.caregiver_id = c.user_id"
	if price != nil {
		chargesJoin = "JOIN charges ch ON ch.caregiver_id = c.user_id"
	}

	q := fmt.Sprintf(`
		SELECT c.user_id, c.vector_id, c.experience, c.specializations, c.languages,
		       c.verification_status, c.description,
		       ch.caregiver_id, ch.hourly_rate, ch.visit_fee, ch.currency,
		       u.name, u.image, a.city, a.state
		FROM caregivers c
		JOIN users u ON u.id = c.user_id
		LEFT JOIN addresses a ON a.user_id = c.user_id
		%s
		WHERE c.vector_id IN (%s)`,
		chargesJoin, placeholders(len(vectorIDs)),
	)

	args := make([]any, 0, len(vectorIDs)+2)
	for _, id := range vectorIDs {
		args = append(args, id)
	}
	if price != nil {
		q += " AND ch.visit_fee IS NOT NULL AND ch.visit_fee >= ? AND ch.visit_fee <= ?"
		args = append(args, price.Low(), price.High())
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list caregivers: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var profiles []caregiver.Profile
	var ids []string
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
		ids = append(ids, p.ID())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list caregivers: %w", domain.ErrStore, err)
	}

	reviews, err := s.reviewsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	return attachReviews(profiles, reviews), nil
}

// profileRow matches the projection of scanProfile's SELECT.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (caregiver.Profile, error) {
	var (
		id, rawSpecs, rawLangs, status, description string
		vectorID, chargesID, currency               sql.NullString
		experience                                  int
		hourlyRate, visitFee                        sql.NullFloat64
		name, image, city, state                    sql.NullString
	)

	err := row.Scan(
		&id, &vectorID, &experience, &rawSpecs, &rawLangs,
		&status, &description,
		&chargesID, &hourlyRate, &visitFee, &currency,
		&name, &image, &city, &state,
	)
	if err != nil {
		return caregiver.Profile{}, fmt.Errorf("%w: scan caregiver: %w", domain.ErrStore, err)
	}

	specs, err := decodeStringList(rawSpecs)
	if err != nil {
		return caregiver.Profile{}, fmt.Errorf("%w: caregiver %s: %w", domain.ErrStore, id, err)
	}
	langs, err := decodeStringList(rawLangs)
	if err != nil {
		return caregiver.Profile{}, fmt.Errorf("%w: caregiver %s: %w", domain.ErrStore, id, err)
	}

	var charges *caregiver.Charges
	if chargesID.Valid {
		ch := caregiver.ReconstructCharges(
			nullFloat(hourlyRate), nullFloat(visitFee), currency.String,
		)
		charges = &ch
	}

	user := caregiver.NewUserSummary(name.String, image.String, city.String, state.String)

	return caregiver.Reconstruct(
		id, vectorID.String, experience, specs, langs,
		caregiver.VerificationStatus(status), description,
		charges, nil, user,
	), nil
}

// reviewsFor loads review ratings for the given caregiver ids, grouped by caregiver.
func (s *Store) reviewsFor(ctx context.Context, ids []string) (map[string][]caregiver.Review, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := fmt.Sprintf(
		"SELECT caregiver_id, rating FROM reviews WHERE caregiver_id IN (%s) ORDER BY id",
		placeholders(len(ids)),
	)
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list reviews: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	grouped := make(map[string][]caregiver.Review)
	for rows.Next() {
		var caregiverID string
		var rating int
		if err := rows.Scan(&caregiverID, &rating); err != nil {
			return nil, fmt.Errorf("%w: scan review: %w", domain.ErrStore, err)
		}
		grouped[caregiverID] = append(grouped[caregiverID], caregiver.ReconstructReview(rating))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list reviews: %w", domain.ErrStore, err)
	}
	return grouped, nil
}

func attachReviews(profiles []caregiver.Profile, reviews map[string][]caregiver.Review) []caregiver.Profile {
	out := make([]caregiver.Profile, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		out[i] = caregiver.Reconstruct(
			p.ID(), p.VectorID(), p.Experience(), p.Specializations(), p.Languages(),
			p.Status(), p.Description(), p.Charges(), reviews[p.ID()], p.User(),
		)
	}
	return out
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
