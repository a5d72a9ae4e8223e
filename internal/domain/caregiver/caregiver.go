package caregiver

import "fmt"

// VerificationStatus is the moderation state of a caregiver profile.
type VerificationStatus string

const (
	// Pending means the profile awaits verification.
	Pending VerificationStatus = "PENDING"
	// Verified means the profile passed verification.
	Verified VerificationStatus = "VERIFIED"
	// Rejected means the profile failed verification.
	Rejected VerificationStatus = "REJECTED"
)

// IsValid reports whether the status is a known value.
func (s VerificationStatus) IsValid() bool {
	switch s {
	case Pending, Verified, Rejected:
		return true
	}
	return false
}

// Rating bounds for a review.
const (
	MinRating = 1
	MaxRating = 5
)

// Charges is a caregiver's pricing snapshot. Both rates are optional;
// the currency code is informational only and never normalized.
type Charges struct {
	hourlyRate *float64
	visitFee   *float64
	currency   string
}

// NewCharges validates and creates a Charges value.
func NewCharges(hourlyRate, visitFee *float64, currency string) (Charges, error) {
	if hourlyRate != nil && *hourlyRate < 0 {
		return Charges{}, fmt.Errorf("hourly rate must be non-negative")
	}
	if visitFee != nil && *visitFee < 0 {
		return Charges{}, fmt.Errorf("visit fee must be non-negative")
	}
	if currency == "" {
		return Charges{}, fmt.Errorf("currency is required")
	}
	return Charges{hourlyRate: hourlyRate, visitFee: visitFee, currency: currency}, nil
}

// ReconstructCharges creates a Charges value without validation (storage hydration).
func ReconstructCharges(hourlyRate, visitFee *float64, currency string) Charges {
	return Charges{hourlyRate: hourlyRate, visitFee: visitFee, currency: currency}
}

// HourlyRate returns the hourly rate, nil when unset.
func (c *Charges) HourlyRate() *float64 { return c.hourlyRate }

// VisitFee returns the per-visit fee, nil when unset.
func (c *Charges) VisitFee() *float64 { return c.visitFee }

// Currency returns the currency code.
func (c *Charges) Currency() string { return c.currency }

// Review is a single customer rating of a caregiver.
type Review struct {
	rating int
}

// NewReview validates and creates a Review.
func NewReview(rating int) (Review, error) {
	if rating < MinRating || rating > MaxRating {
		return Review{}, fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	}
	return Review{rating: rating}, nil
}

// ReconstructReview creates a Review without validation (storage hydration).
func ReconstructReview(rating int) Review {
	return Review{rating: rating}
}

// Rating returns the review rating.
func (r *Review) Rating() int { return r.rating }

// UserSummary is the caregiver's linked account projection exposed in results.
type UserSummary struct {
	name  string
	image string
	city  string
	state string
}

// NewUserSummary creates a user summary.
func NewUserSummary(name, image, city, state string) UserSummary {
	return UserSummary{name: name, image: image, city: city, state: state}
}

// Name returns the display name.
func (u UserSummary) Name() string { return u.name }

// Image returns the avatar URL.
func (u UserSummary) Image() string { return u.image }

// City returns the address city.
func (u UserSummary) City() string { return u.city }

// State returns the address state.
func (u UserSummary) State() string { return u.state }

// Profile is a caregiver profile aggregate. The search pipeline only reads it;
// mutation happens through the profile workflow.
type Profile struct {
	id              string
	vectorID        string
	experience      int
	specializations []string
	languages       []string
	status          VerificationStatus
	description     string
	charges         *Charges
	reviews         []Review
	user            UserSummary
}

// Reconstruct creates a Profile from stored data without validation.
func Reconstruct(
	id, vectorID string, experience int,
	specializations, languages []string,
	status VerificationStatus, description string,
	charges *Charges, reviews []Review, user UserSummary,
) Profile {
	return Profile{
		id:              id,
		vectorID:        vectorID,
		experience:      experience,
		specializations: specializations,
		languages:       languages,
		status:          status,
		description:     description,
		charges:         charges,
		reviews:         reviews,
		user:            user,
	}
}

// ID returns the profile identifier.
func (p Profile) ID() string { return p.id }

// VectorID returns the opaque vector index reference. Assigned once at first
// indexing and never reused; empty for profiles not yet indexed.
func (p Profile) VectorID() string { return p.vectorID }

// Experience returns the years of experience.
func (p Profile) Experience() int { return p.experience }

// Specializations returns the specialization tags.
func (p Profile) Specializations() []string { return p.specializations }

// Languages returns the spoken languages.
func (p Profile) Languages() []string { return p.languages }

// Status returns the verification status.
func (p Profile) Status() VerificationStatus { return p.status }

// Description returns the free-text profile description.
func (p Profile) Description() string { return p.description }

// Charges returns the pricing snapshot, nil when the caregiver has none.
func (p Profile) Charges() *Charges { return p.charges }

// Reviews returns the raw review entries.
func (p Profile) Reviews() []Review { return p.reviews }

// User returns the linked account summary.
func (p Profile) User() UserSummary { return p.user }

// ReviewCount returns the number of reviews.
func (p Profile) ReviewCount() int { return len(p.reviews) }

// AverageRating returns the arithmetic mean of review ratings, 0 when there
// are none. Always derived at call time, never cached.
func (p Profile) AverageRating() float64 {
	if len(p.reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.reviews {
		sum += r.rating
	}
	return float64(sum) / float64(len(p.reviews))
}
