package candidate

import "testing"

func TestRanking(t *testing.T) {
	list := []Candidate{New("v1", 0.9), New("v2", 0.8), New("v3", 0.7)}
	ranks := Ranking(list)

	if len(ranks) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranks))
	}
	for i, id := range []string{"v1", "v2", "v3"} {
		if ranks[id] != i {
			t.Errorf("rank of %s = %d, want %d", id, ranks[id], i)
		}
	}
}

func TestRanking_FirstOccurrenceWins(t *testing.T) {
	list := []Candidate{New("v1", 0.9), New("v1", 0.5)}
	ranks := Ranking(list)
	if ranks["v1"] != 0 {
		t.Errorf("rank of v1 = %d, want 0", ranks["v1"])
	}
}

func TestVectorIDs(t *testing.T) {
	list := []Candidate{New("v2", 0.9), New("v1", 0.8)}
	ids := VectorIDs(list)
	if len(ids) != 2 || ids[0] != "v2" || ids[1] != "v1" {
		t.Errorf("unexpected ids %v", ids)
	}
}
