package candidate

// Candidate is a single vector index hit. Slice position in the index
// response defines the relevance baseline for the whole pipeline.
type Candidate struct {
	vectorID string
	score    float64
}

// New creates a candidate.
func New(vectorID string, score float64) Candidate {
	return Candidate{vectorID: vectorID, score: score}
}

// VectorID returns the opaque vector index identifier.
func (c *Candidate) VectorID() string { return c.vectorID }

// Score returns the similarity score.
func (c *Candidate) Score() float64 { return c.score }

// VectorIDs returns the ordered identifiers of the candidate list.
func VectorIDs(list []Candidate) []string {
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.vectorID
	}
	return ids
}

// Ranking maps each vectorID to its position in the candidate list.
// The first occurrence wins should the index ever return duplicates.
func Ranking(list []Candidate) map[string]int {
	ranks := make(map[string]int, len(list))
	for i, c := range list {
		if _, ok := ranks[c.vectorID]; !ok {
			ranks[c.vectorID] = i
		}
	}
	return ranks
}
