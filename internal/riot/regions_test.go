package riot

import "testing"

func TestRoutingForRegion(t *testing.T) {
	tests := []struct {
		region string
		want   string
	}{
		{"na1", "americas"},
		{"br1", "americas"},
		{"euw1", "europe"},
		{"tr1", "europe"},
		{"kr", "asia"},
		{"jp1", "asia"},
		{"oc1", "sea"},
		{"nonsense", "europe"},
	}

	for _, tt := range tests {
		if got := RoutingForRegion(tt.region); got != tt.want {
			t.Errorf("RoutingForRegion(%q) = %q, want %q", tt.region, got, tt.want)
		}
	}
}

func TestEveryRegionHasRouting(t *testing.T) {
	for region := range Regions {
		if _, ok := routingByRegion[region]; !ok {
			t.Errorf("region %q has no routing entry", region)
		}
	}
}

func TestIsKnownRegion(t *testing.T) {
	if !IsKnownRegion("na1") {
		t.Error("na1 should be known")
	}
	if IsKnownRegion("NA1") {
		t.Error("region matching is lowercase only")
	}
	if IsKnownRegion("") {
		t.Error("empty region should not be known")
	}
}
