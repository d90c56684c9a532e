package riot

// Platform regions served by the tracker, keyed to display names.
var Regions = map[string]string{
	"euw1":  "Europe West",
	"eune1": "Europe Nordic & East",
	"na1":   "North America",
	"br1":   "Brazil",
	"la1":   "Latin America North",
	"la2":   "Latin America South",
	"kr":    "Korea",
	"jp1":   "Japan",
	"oc1":   "Oceania",
	"tr1":   "Turkey",
	"ru":    "Russia",
}

// routingByRegion maps a platform region to the regional routing host used by
// the account and match endpoints.
var routingByRegion = map[string]string{
	"euw1":  "europe",
	"eune1": "europe",
	"tr1":   "europe",
	"ru":    "europe",
	"na1":   "americas",
	"br1":   "americas",
	"la1":   "americas",
	"la2":   "americas",
	"kr":    "asia",
	"jp1":   "asia",
	"oc1":   "sea",
}

// RoutingForRegion returns the regional routing value for a platform region.
// Unknown regions fall back to "europe".
func RoutingForRegion(region string) string {
	if routing, ok := routingByRegion[region]; ok {
		return routing
	}
	return "europe"
}

// IsKnownRegion reports whether region is one the tracker serves.
func IsKnownRegion(region string) bool {
	_, ok := Regions[region]
	return ok
}
