package prolly

import "testing"

func TestBitsPerGroupDefaultBranchFactor(t *testing.T) {
	if got := bitsPerGroup(DefaultBranchFactor); got != 8 {
		t.Fatalf("bitsPerGroup(254) = %d, want 8", got)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	key := []byte("the-quick-brown-fox")
	r1 := Rank(key, DefaultBranchFactor)
	r2 := Rank(key, DefaultBranchFactor)
	if r1 != r2 {
		t.Fatalf("Rank is not deterministic: %d != %d", r1, r2)
	}
	if r1 < 1 || r1 > 33 {
		t.Fatalf("Rank(%q) = %d out of expected [1,33] range for m=254", key, r1)
	}
}

func TestRankDistributionSkewsLow(t *testing.T) {
	// The overwhelming majority of keys should have rank 1 under the
	// default branch factor: P(rank==1) ~= 253/254.
	rankOne := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		key := []byte{byte(i), byte(i >> 8), byte(i >> 16), byte(i >> 24), 0xAB}
		if Rank(key, DefaultBranchFactor) == 1 {
			rankOne++
		}
	}
	if rankOne < trials*9/10 {
		t.Fatalf("expected rank==1 for the large majority of keys, got %d/%d", rankOne, trials)
	}
}

func TestPromotionHeight(t *testing.T) {
	if promotionHeight(1) != 0 {
		t.Fatalf("rank 1 should not promote")
	}
	if promotionHeight(2) != 1 {
		t.Fatalf("rank 2 should promote one level")
	}
	if !isBoundary(2, 0) {
		t.Fatalf("rank 2 should end a level-0 run")
	}
	if isBoundary(2, 1) {
		t.Fatalf("rank 2 should not end a level-1 run")
	}
}
