package config

import (
	"sort"

	"github.com/golang/geo/r2"
)

type Track struct {
	Description string     `yaml:"description"`
	Points      []r2.Point `yaml:"points"`
}

// Tracks are the built-in tracks, all inside the default 20×20 view.
var Tracks = map[string]Track{
	"valley": {
		Description: "symmetric dip that climbs back to the release height",
		Points:      []r2.Point{{X: -8, Y: 6}, {X: 0, Y: -4}, {X: 8, Y: 6}},
	},
	"drop": {
		Description: "steep fall into a long run-out",
		Points:      []r2.Point{{X: -9, Y: 9}, {X: -6, Y: -2}, {X: 0, Y: -6}, {X: 6, Y: -6}, {X: 9, Y: -5}},
	},
	"hill": {
		Description: "fast crest that throws the gondola off",
		Points:      []r2.Point{{X: -9, Y: 8}, {X: -5, Y: -2}, {X: -1, Y: 0}, {X: 3, Y: -2}, {X: 7, Y: -8}},
	},
	"waves": {
		Description: "gentle rolling hills",
		Points: []r2.Point{
			{X: -9, Y: 7}, {X: -6, Y: 0}, {X: -3, Y: 2}, {X: 0, Y: -2},
			{X: 3, Y: 1}, {X: 6, Y: -3}, {X: 9, Y: 0},
		},
	},
	"loop": {
		Description: "vertical loop entered from a high ramp",
		Points: []r2.Point{
			{X: -9, Y: 9}, {X: -6, Y: -6}, {X: 0, Y: -7}, {X: 4, Y: -3},
			{X: 2, Y: 1}, {X: -1, Y: -2}, {X: 3, Y: -7}, {X: 9, Y: -7},
		},
	},
	"flat": {
		Description: "level track, the gondola rests where it starts",
		Points:      []r2.Point{{X: -8, Y: 0}, {X: 8, Y: 0}},
	},
}

func GetTrack(name string) (Track, bool) {
	t, ok := Tracks[name]
	return t, ok
}

// ListTracks returns the names of the built-in tracks in sorted order.
func ListTracks() []string {
	names := make([]string, 0, len(Tracks))
	for name := range Tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
