package fetchers

import (
	"fmt"
	"sort"
	"strings"
)

// Location is a supported forecast location
type Location struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Country  string  `json:"country"`
	Timezone string  `json:"timezone"`
}

// availableLocations is the fixed location table. Keys are matched
// case-insensitively.
var availableLocations = map[string]Location{
	"new york":    {Name: "New York", Lat: 40.7128, Lon: -74.0060, Country: "US", Timezone: "America/New_York"},
	"london":      {Name: "London", Lat: 51.5074, Lon: -0.1278, Country: "GB", Timezone: "Europe/London"},
	"tokyo":       {Name: "Tokyo", Lat: 35.6762, Lon: 139.6503, Country: "JP", Timezone: "Asia/Tokyo"},
	"sydney":      {Name: "Sydney", Lat: -33.8688, Lon: 151.2093, Country: "AU", Timezone: "Australia/Sydney"},
	"delhi":       {Name: "Delhi", Lat: 28.6139, Lon: 77.2090, Country: "IN", Timezone: "Asia/Kolkata"},
	"berlin":      {Name: "Berlin", Lat: 52.5200, Lon: 13.4050, Country: "DE", Timezone: "Europe/Berlin"},
	"los angeles": {Name: "Los Angeles", Lat: 34.0522, Lon: -118.2437, Country: "US", Timezone: "America/Los_Angeles"},
	"mumbai":      {Name: "Mumbai", Lat: 19.0760, Lon: 72.8777, Country: "IN", Timezone: "Asia/Kolkata"},
	"paris":       {Name: "Paris", Lat: 48.8566, Lon: 2.3522, Country: "FR", Timezone: "Europe/Paris"},
	"singapore":   {Name: "Singapore", Lat: 1.3521, Lon: 103.8198, Country: "SG", Timezone: "Asia/Singapore"},
}

// Locations returns all supported locations sorted by name
func Locations() []Location {
	out := make([]Location, 0, len(availableLocations))
	for _, loc := range availableLocations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupLocation resolves a location by name, case-insensitively
func LookupLocation(name string) (Location, error) {
	loc, ok := availableLocations[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Location{}, fmt.Errorf("unknown location %q", name)
	}
	return loc, nil
}
