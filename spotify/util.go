package spotify

import (
	"strings"

	spot "github.com/zmb3/spotify/v2"
)

// ConcatArtists returns a comma-separated list of artist names
func ConcatArtists(artists []spot.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// ExtractID pulls the bare track ID out of a spotify URI like
// "spotify:track:xyz"; plain IDs pass through unchanged.
func ExtractID(uri string) spot.ID {
	parts := strings.Split(uri, ":")
	return spot.ID(parts[len(parts)-1])
}
