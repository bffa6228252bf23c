package wrangle

import (
	"regexp"
	"strings"
)

var locationAliases = map[string]string{
	"land": "onshore",
	"sea":  "offshore",
}

// NormalizeLocation lower-cases a vendor location and maps its aliases to
// canonical names. Unknown locations pass through lower-cased.
func NormalizeLocation(location string) string {
	location = strings.ToLower(location)
	if canonical, ok := locationAliases[location]; ok {
		return canonical
	}
	return location
}

// Some upstream column names arrive as a serialized pair, e.g. {"wind","onshore"}.
var assetLocationPattern = regexp.MustCompile(`^\{"(.*?)","(.*?)"\}`)

// MapAssetLocation rewrites a {"asset","location"} identifier as
// asset_location. Anything else is returned unchanged.
func MapAssetLocation(name string) string {
	m := assetLocationPattern.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	return m[1] + "_" + m[2]
}

var biddingZonePattern = regexp.MustCompile(`([a-z]+[1-9]?)_?`)

// SplitAssetKey splits an Enfor asset key such as "dk1_land" into its bidding
// zone ("dk1") and location ("land"). Either part may be empty.
func SplitAssetKey(assetKey string) (zone, location string) {
	if m := biddingZonePattern.FindStringSubmatch(assetKey); m != nil {
		zone = m[1]
	}
	if parts := strings.Split(assetKey, "_"); len(parts) > 1 {
		location = parts[1]
	}
	return zone, location
}

// ProductionKey joins a production kind and location into a lower-case column
// name, dropping the location when it is empty.
func ProductionKey(kind, location string) string {
	kind, location = strings.ToLower(kind), strings.ToLower(location)
	switch {
	case location == "":
		return kind
	case kind == "":
		return location
	}
	return kind + "_" + location
}
