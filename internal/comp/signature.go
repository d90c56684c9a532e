package comp

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// UnknownSignature marks a board with no coherent archetype. It is a
	// valid stored signature but is excluded from all meta rankings.
	UnknownSignature = "unknown"

	// A trait needs at least this many units to count toward a
	// composition's identity. Below that it's incidental overlap.
	signatureMinUnits = 3

	// At most this many traits make up a signature.
	signatureMaxTraits = 3
)

// Trait is one team-synergy activation for a participant in one match.
type Trait struct {
	Name        string `json:"name"`
	NumUnits    int    `json:"num_units"`
	TierCurrent int    `json:"tier_current"`
	TierTotal   int    `json:"tier_total"`
	Style       int    `json:"style"` // 0=inactive, 1=bronze, 2=silver, 3=gold, 4=chromatic
}

// Unit is one fielded unit instance on a participant's board.
type Unit struct {
	CharacterID string   `json:"character_id"`
	Tier        int      `json:"tier"` // star level (1-3)
	Items       []string `json:"items"`
	Rarity      int      `json:"rarity"`
}

// Signature derives the canonical identity string for a composition from its
// trait activations, e.g. "Vanguard(4)+Bruiser(3)+Sharpshooter(3)".
//
// Traits with fewer than 3 units are ignored. The rest are sorted by unit
// count descending, ties broken by name ascending, and the top 3 are rendered
// as "Name(count)" joined with "+". The tie-break keeps the output
// deterministic: unstable ordering would split one real composition into
// several signatures and corrupt every aggregate keyed on it.
func Signature(traits []Trait) string {
	active := make([]Trait, 0, len(traits))
	for _, t := range traits {
		if t.NumUnits >= signatureMinUnits {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return UnknownSignature
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].NumUnits != active[j].NumUnits {
			return active[i].NumUnits > active[j].NumUnits
		}
		return active[i].Name < active[j].Name
	})

	if len(active) > signatureMaxTraits {
		active = active[:signatureMaxTraits]
	}

	parts := make([]string, len(active))
	for i, t := range active {
		parts[i] = fmt.Sprintf("%s(%d)", t.Name, t.NumUnits)
	}
	return strings.Join(parts, "+")
}

// PrimaryTraits splits a signature back into its rendered trait parts.
// For UnknownSignature it returns nil.
func PrimaryTraits(signature string) []string {
	if signature == "" || signature == UnknownSignature {
		return nil
	}
	return strings.Split(signature, "+")
}
