package result

import "github.com/nexacare/caresearch/internal/domain/caregiver"

// Ranked is a caregiver profile enriched with its rating aggregate. Raw
// review entries are stripped by construction; only the aggregate leaves
// the pipeline.
type Ranked struct {
	id              string
	vectorID        string
	experience      int
	specializations []string
	languages       []string
	status          caregiver.VerificationStatus
	description     string
	charges         *caregiver.Charges
	user            caregiver.UserSummary
	reviewCount     int
	averageRating   float64
}

// FromProfile projects a profile into a Ranked result, computing the rating
// aggregate and dropping the raw reviews.
func FromProfile(p *caregiver.Profile) Ranked {
	return Ranked{
		id:              p.ID(),
		vectorID:        p.VectorID(),
		experience:      p.Experience(),
		specializations: p.Specializations(),
		languages:       p.Languages(),
		status:          p.Status(),
		description:     p.Description(),
		charges:         p.Charges(),
		user:            p.User(),
		reviewCount:     p.ReviewCount(),
		averageRating:   p.AverageRating(),
	}
}

// ID returns the caregiver identifier.
func (r *Ranked) ID() string { return r.id }

// VectorID returns the vector index reference used for relevance ordering.
func (r *Ranked) VectorID() string { return r.vectorID }

// Experience returns the years of experience.
func (r *Ranked) Experience() int { return r.experience }

// Specializations returns the specialization tags.
func (r *Ranked) Specializations() []string { return r.specializations }

// Languages returns the spoken languages.
func (r *Ranked) Languages() []string { return r.languages }

// Status returns the verification status.
func (r *Ranked) Status() caregiver.VerificationStatus { return r.status }

// Description returns the profile description.
func (r *Ranked) Description() string { return r.description }

// Charges returns the pricing snapshot, nil when the caregiver has none.
func (r *Ranked) Charges() *caregiver.Charges { return r.charges }

// User returns the linked account summary.
func (r *Ranked) User() caregiver.UserSummary { return r.user }

// ReviewCount returns the number of reviews behind the aggregate.
func (r *Ranked) ReviewCount() int { return r.reviewCount }

// AverageRating returns the mean review rating, 0 when there are no reviews.
func (r *Ranked) AverageRating() float64 { return r.averageRating }
