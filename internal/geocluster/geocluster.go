// Package geocluster groups candle markers into grid cells for the world
// map. The grid halves its cell size with every zoom level, so nearby
// candles collapse into one numbered cluster when zoomed out and separate
// as the user zooms in.
package geocluster

import (
	"fmt"
	"math"
	"sort"
)

// Marker is one geolocated candle as it appears on the map.
type Marker struct {
	ID         string  `json:"id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	CandleType string  `json:"candle_type,omitempty"`
}

// Cluster is a grid cell with at least one marker. Latitude/Longitude are
// the centroid of the contained markers, and RepresentativeID names one
// marker the UI can open when the cluster holds a single candle.
type Cluster struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Count            int     `json:"count"`
	RepresentativeID string  `json:"representative_id"`
}

// Zoom bounds accepted by Build; out-of-range values are clamped.
const (
	MinZoom = 0
	MaxZoom = 12
)

// baseCellDegrees is the grid cell size at zoom 0.
const baseCellDegrees = 45.0

// CellSize returns the grid cell edge in degrees for a zoom level.
func CellSize(zoom int) float64 {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	return baseCellDegrees / math.Pow(2, float64(zoom))
}

// Build assigns each marker to its grid cell and returns one cluster per
// non-empty cell, ordered by count descending, then by latitude and
// longitude for a stable output.
func Build(markers []Marker, zoom int) []Cluster {
	cell := CellSize(zoom)

	type bucket struct {
		sumLat, sumLng float64
		count          int
		firstID        string
	}
	buckets := map[string]*bucket{}
	for _, m := range markers {
		row := int(math.Floor((m.Latitude + 90) / cell))
		col := int(math.Floor((m.Longitude + 180) / cell))
		key := fmt.Sprintf("%d:%d", row, col)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{firstID: m.ID}
			buckets[key] = b
		}
		b.sumLat += m.Latitude
		b.sumLng += m.Longitude
		b.count++
	}

	clusters := make([]Cluster, 0, len(buckets))
	for _, b := range buckets {
		clusters = append(clusters, Cluster{
			Latitude:         b.sumLat / float64(b.count),
			Longitude:        b.sumLng / float64(b.count),
			Count:            b.count,
			RepresentativeID: b.firstID,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		if clusters[i].Latitude != clusters[j].Latitude {
			return clusters[i].Latitude < clusters[j].Latitude
		}
		return clusters[i].Longitude < clusters[j].Longitude
	})
	return clusters
}
