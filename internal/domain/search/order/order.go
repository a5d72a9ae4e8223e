package order

// Key selects the result ordering of a search.
type Key string

const (
	// Rating orders by descending average rating.
	Rating Key = "rating"
	// PriceLow orders by ascending hourly rate.
	PriceLow Key = "price-low"
	// PriceHigh orders by descending hourly rate.
	PriceHigh Key = "price-high"
	// Experience orders by descending years of experience.
	Experience Key = "experience"
	// Relevance orders by vector index candidate position. It is the fallback
	// for an absent or unrecognized sort key, never an error.
	Relevance Key = "relevance"
)

// Parse maps a raw sort key to a Key. Anything unrecognized, including the
// empty string, falls back to Relevance.
func Parse(s string) Key {
	switch Key(s) {
	case Rating, PriceLow, PriceHigh, Experience, Relevance:
		return Key(s)
	}
	return Relevance
}
