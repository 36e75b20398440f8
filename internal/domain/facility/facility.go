// Package facility holds the denormalized sporting facility record.
package facility

import (
	"time"

	"github.com/paulmach/orb"
)

// GeoJSONPoint is the GeoJSON type tag stored with every location.
const GeoJSONPoint = "Point"

// Facility is one sporting installation with its equipments and activities.
type Facility struct {
	ID                      string      `bson:"_id" json:"id"`
	Name                    string      `bson:"name" json:"name"`
	Address                 Address     `bson:"address" json:"address"`
	Location                Location    `bson:"location" json:"location"`
	MultiCommune            bool        `bson:"multiCommune" json:"multiCommune"`
	ParkingSpaces           *int        `bson:"parkingSpaces,omitempty" json:"parkingSpaces,omitempty"`
	AccessibleParkingSpaces *int        `bson:"accessibleParkingSpaces,omitempty" json:"accessibleParkingSpaces,omitempty"`
	LastUpdated             *time.Time  `bson:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
	Equipments              []Equipment `bson:"equipments" json:"equipments"`
	Activities              []string    `bson:"activities" json:"activities"`
}

// Address is the postal address of a facility. Every field may be empty.
type Address struct {
	Number     string `bson:"number,omitempty" json:"number,omitempty"`
	Street     string `bson:"street,omitempty" json:"street,omitempty"`
	Locality   string `bson:"locality,omitempty" json:"locality,omitempty"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Commune    string `bson:"commune,omitempty" json:"commune,omitempty"`
}

// Location is a GeoJSON point. Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewLocation builds a GeoJSON point from an orb point.
func NewLocation(p orb.Point) Location {
	return Location{Type: GeoJSONPoint, Coordinates: []float64{p.Lon(), p.Lat()}}
}

// Point returns the location as an orb point. ok is false for malformed coordinates.
func (l Location) Point() (p orb.Point, ok bool) {
	if len(l.Coordinates) != 2 {
		return orb.Point{}, false
	}
	return orb.Point{l.Coordinates[0], l.Coordinates[1]}, true
}

// Equipment is a piece of sporting equipment attached to a facility.
type Equipment struct {
	ID         string   `bson:"id" json:"id"`
	Name       string   `bson:"name" json:"name"`
	Type       string   `bson:"type" json:"type"`
	Family     string   `bson:"family" json:"family"`
	Activities []string `bson:"activities" json:"activities"`
}

// EquipmentCount returns the number of equipments attached to the facility.
func (f *Facility) EquipmentCount() int {
	return len(f.Equipments)
}

// ActivityCount is one row of the count-by-activity aggregation.
type ActivityCount struct {
	Activity string `bson:"activity" json:"activity"`
	Total    int    `bson:"total" json:"total"`
}

// Scored pairs a facility with its text relevance score.
type Scored struct {
	Facility Facility `json:"facility"`
	Score    float64  `json:"score"`
}

// Nearby pairs a facility with its distance in meters from a search origin.
type Nearby struct {
	Facility Facility `json:"facility"`
	Distance float64  `json:"distance"`
}
