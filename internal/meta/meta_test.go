package meta

import (
	"context"
	"math"
	"testing"

	"tft-meta-tracker/internal/comp"
	"tft-meta-tracker/internal/db"
)

type fakeStore struct {
	outcomes []db.CompOutcome
	samples  map[string][]db.SignatureComposition
	upserted []db.MetaStat
}

func (f *fakeStore) ScanCompOutcomes(ctx context.Context, patch, region string) ([]db.CompOutcome, error) {
	return f.outcomes, nil
}

func (f *fakeStore) UpsertMetaStat(ctx context.Context, s *db.MetaStat) error {
	f.upserted = append(f.upserted, *s)
	return nil
}

func (f *fakeStore) TopMetaStats(ctx context.Context, limit, minGames int, patch, region, orderBy string) ([]db.MetaStat, error) {
	return f.upserted, nil
}

func (f *fakeStore) CompositionsBySignature(ctx context.Context, signature string) ([]db.SignatureComposition, error) {
	return f.samples[signature], nil
}

func outcomes(signature string, placements ...int) []db.CompOutcome {
	out := make([]db.CompOutcome, 0, len(placements))
	for _, p := range placements {
		out = append(out, db.CompOutcome{Signature: signature, Placement: p})
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecomputeMath(t *testing.T) {
	store := &fakeStore{}
	// 10 boards: placements 1..8 plus two extra top-4 finishes.
	store.outcomes = outcomes("Vanguard(4)+Bruiser(3)", 1, 2, 3, 4, 5, 6, 7, 8, 2, 3)

	agg := New(store)
	stats, err := agg.Recompute(context.Background(), 5, "", "")
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d stats, want 1", len(stats))
	}

	s := stats[0]
	if s.PlayCount != 10 {
		t.Errorf("play count = %d, want 10", s.PlayCount)
	}
	if !almostEqual(s.AvgPlacement, 4.1) {
		t.Errorf("avg placement = %v, want 4.1", s.AvgPlacement)
	}
	if !almostEqual(s.Top4Rate, 0.6) {
		t.Errorf("top4 rate = %v, want 0.6", s.Top4Rate)
	}
	if !almostEqual(s.Top1Rate, 0.1) {
		t.Errorf("top1 rate = %v, want 0.1", s.Top1Rate)
	}
	if s.Patch != "all" || s.Region != "ALL" {
		t.Errorf("wildcard keys = (%q, %q), want (all, ALL)", s.Patch, s.Region)
	}
}

func TestRecomputeMinGamesFloor(t *testing.T) {
	store := &fakeStore{}
	store.outcomes = append(
		outcomes("Vanguard(4)", 1, 2, 3, 4, 5),
		outcomes("Mage(3)", 1, 2)...,
	)

	agg := New(store)
	stats, err := agg.Recompute(context.Background(), 5, "", "")
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d stats, want only the one above the floor", len(stats))
	}
	if stats[0].CompSignature != "Vanguard(4)" {
		t.Errorf("kept %q, want Vanguard(4)", stats[0].CompSignature)
	}
}

func TestRecomputeExcludesUnknown(t *testing.T) {
	store := &fakeStore{}
	store.outcomes = outcomes(comp.UnknownSignature, 1, 2, 3, 4, 5, 6, 7, 8, 1, 2)

	agg := New(store)
	stats, err := agg.Recompute(context.Background(), 1, "", "")
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("unknown signature produced %d stats, want 0", len(stats))
	}
}

func TestRecomputeScopedKeys(t *testing.T) {
	store := &fakeStore{}
	store.outcomes = outcomes("Vanguard(4)", 1, 2)

	agg := New(store)
	stats, err := agg.Recompute(context.Background(), 1, "13.24", "na1")
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d stats, want 1", len(stats))
	}
	if stats[0].Patch != "13.24" || stats[0].Region != "na1" {
		t.Errorf("scoped keys = (%q, %q), want (13.24, na1)", stats[0].Patch, stats[0].Region)
	}
}

func TestRecomputeDeterministicOrder(t *testing.T) {
	store := &fakeStore{}
	store.outcomes = append(
		outcomes("Bruiser(3)", 1, 2, 3),
		append(
			outcomes("Vanguard(4)", 1, 2, 3),
			outcomes("Mage(3)", 1, 2, 3, 4)...,
		)...,
	)

	agg := New(store)
	stats, err := agg.Recompute(context.Background(), 1, "", "")
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	got := make([]string, len(stats))
	for i, s := range stats {
		got[i] = s.CompSignature
	}
	want := []string{"Mage(3)", "Bruiser(3)", "Vanguard(4)"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestTopCompositionsOrderByValidation(t *testing.T) {
	agg := New(&fakeStore{})
	ctx := context.Background()

	if _, err := agg.TopCompositions(ctx, 10, 1, "", "", "win_streak"); err == nil {
		t.Error("expected error for unknown metric")
	}
	if _, err := agg.TopCompositions(ctx, 10, 1, "", "", ""); err != nil {
		t.Errorf("empty metric should fall back to the default, got %v", err)
	}
	for _, metric := range []string{"top4_rate", "top1_rate", "play_count", "avg_placement"} {
		if _, err := agg.TopCompositions(ctx, 10, 1, "", "", metric); err != nil {
			t.Errorf("metric %q rejected: %v", metric, err)
		}
	}
}

func TestCompositionDetail(t *testing.T) {
	store := &fakeStore{samples: map[string][]db.SignatureComposition{}}
	// 3 boards sharing a core unit.
	store.samples["Vanguard(4)+Bruiser(3)"] = []db.SignatureComposition{
		{
			Units:     []comp.Unit{{CharacterID: "TFT10_Ahri"}, {CharacterID: "TFT10_Sett"}},
			Augments:  []string{"TFT_Augment_A"},
			Placement: 1,
		},
		{
			Units:     []comp.Unit{{CharacterID: "TFT10_Ahri"}, {CharacterID: "TFT10_Ahri"}},
			Augments:  []string{"TFT_Augment_A", "TFT_Augment_B"},
			Placement: 3,
		},
		{
			Units:     []comp.Unit{{CharacterID: "TFT10_Sett"}},
			Augments:  nil,
			Placement: 5,
		},
	}

	agg := New(store)
	detail, err := agg.CompositionDetail(context.Background(), "Vanguard(4)+Bruiser(3)")
	if err != nil {
		t.Fatalf("CompositionDetail failed: %v", err)
	}
	if detail == nil {
		t.Fatal("expected a detail, got nil")
	}

	if detail.SampleCount != 3 {
		t.Errorf("sample count = %d, want 3", detail.SampleCount)
	}
	if !almostEqual(detail.AvgPlacement, 3.0) {
		t.Errorf("avg placement = %v, want 3.0", detail.AvgPlacement)
	}
	if len(detail.PrimaryTraits) != 2 {
		t.Errorf("primary traits = %v, want 2 entries", detail.PrimaryTraits)
	}

	// Ahri was fielded 3 times (twice on one board), Sett twice; every copy
	// counts.
	if len(detail.TopUnits) != 2 {
		t.Fatalf("top units = %v, want 2 entries", detail.TopUnits)
	}
	if detail.TopUnits[0].Name != "TFT10_Ahri" || detail.TopUnits[0].Count != 3 {
		t.Errorf("first unit = %+v, want TFT10_Ahri x3", detail.TopUnits[0])
	}
	if detail.TopUnits[1].Name != "TFT10_Sett" || detail.TopUnits[1].Count != 2 {
		t.Errorf("second unit = %+v, want TFT10_Sett x2", detail.TopUnits[1])
	}
	if detail.TopAugments[0].Name != "TFT_Augment_A" || detail.TopAugments[0].Count != 2 {
		t.Errorf("first augment = %+v, want TFT_Augment_A x2", detail.TopAugments[0])
	}
}

func TestCompositionDetailNoSamples(t *testing.T) {
	agg := New(&fakeStore{samples: map[string][]db.SignatureComposition{}})
	detail, err := agg.CompositionDetail(context.Background(), "Vanguard(4)")
	if err != nil {
		t.Fatalf("CompositionDetail failed: %v", err)
	}
	if detail != nil {
		t.Errorf("expected nil detail for unseen signature, got %+v", detail)
	}
}
