package facility

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestNewLocation_LonLatOrder(t *testing.T) {
	loc := NewLocation(orb.Point{-1.49181, 47.2975})
	if loc.Type != GeoJSONPoint {
		t.Errorf("Type = %q", loc.Type)
	}
	if len(loc.Coordinates) != 2 || loc.Coordinates[0] != -1.49181 || loc.Coordinates[1] != 47.2975 {
		t.Errorf("Coordinates = %v, want [lon lat]", loc.Coordinates)
	}
}

func TestLocation_Point(t *testing.T) {
	p, ok := Location{Type: GeoJSONPoint, Coordinates: []float64{2.35, 48.85}}.Point()
	if !ok {
		t.Fatal("expected ok")
	}
	if p.Lon() != 2.35 || p.Lat() != 48.85 {
		t.Errorf("unexpected point %v", p)
	}

	if _, ok := (Location{}).Point(); ok {
		t.Error("empty location should not convert")
	}
}

func TestEquipmentCount(t *testing.T) {
	f := Facility{Equipments: []Equipment{{ID: "e1"}, {ID: "e2"}}}
	if f.EquipmentCount() != 2 {
		t.Errorf("EquipmentCount() = %d", f.EquipmentCount())
	}
}
