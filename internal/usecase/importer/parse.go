package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/sportdex/internal/csvline"
	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/domain/geo"
	"github.com/kailas-cloud/sportdex/internal/domain/row"
)

// Installations export columns.
const (
	colInstName         = 0
	colInstID           = 1
	colInstCommune      = 2
	colInstPostalCode   = 4
	colInstLocality     = 5
	colInstNumber       = 6
	colInstStreet       = 7
	colInstCoordinates  = 8
	colInstMultiCommune = 16
	colInstParking      = 17
	colInstAccessible   = 18
	colInstLastUpdated  = 28

	minInstallationColumns = colInstAccessible + 1
)

// Equipments export columns.
const (
	colEquipFacilityID = 2
	colEquipID         = 4
	colEquipName       = 5
	colEquipType       = 7
	colEquipFamily     = 9

	minEquipmentColumns = colEquipFamily + 1
)

// Activities export columns.
const (
	colActEquipmentID = 2
	colActActivity    = 5

	minActivityColumns = colActActivity + 1
)

const (
	dateLayout      = "2006-01-02"
	multiCommuneYes = "Oui"
)

// Names of optional fields that may be dropped from an otherwise valid row.
const (
	dropParking     = "parkingSpaces"
	dropAccessible  = "accessibleParkingSpaces"
	dropLastUpdated = "lastUpdated"
)

// parseInstallation turns one installations line into a record. Optional
// fields that do not parse are left unset and named in dropped.
func parseInstallation(line int, text string) (f facility.Facility, dropped []string, err error) {
	cols := csvline.SplitQuoted(text)
	if len(cols) < minInstallationColumns {
		return facility.Facility{}, nil, row.Skip(line, row.ReasonTooFewColumns,
			"%d columns, need %d", len(cols), minInstallationColumns)
	}

	id := csvline.Field(cols, colInstID)
	if id == "" {
		return facility.Facility{}, nil, row.Skip(line, row.ReasonMissingID, "")
	}

	loc, err := parseCoordinates(csvline.Field(cols, colInstCoordinates))
	if err != nil {
		return facility.Facility{}, nil, row.Skip(line, row.ReasonInvalidCoordinates, "%v", err)
	}

	f = facility.Facility{
		ID:   id,
		Name: csvline.Field(cols, colInstName),
		Address: facility.Address{
			Number:     csvline.Field(cols, colInstNumber),
			Street:     csvline.Field(cols, colInstStreet),
			Locality:   csvline.Field(cols, colInstLocality),
			PostalCode: csvline.Field(cols, colInstPostalCode),
			Commune:    csvline.Field(cols, colInstCommune),
		},
		Location:     loc,
		MultiCommune: csvline.Field(cols, colInstMultiCommune) == multiCommuneYes,
		Equipments:   []facility.Equipment{},
		Activities:   []string{},
	}

	var ok bool
	if f.ParkingSpaces, ok = parseCount(csvline.Field(cols, colInstParking)); !ok {
		dropped = append(dropped, dropParking)
	}
	if f.AccessibleParkingSpaces, ok = parseCount(csvline.Field(cols, colInstAccessible)); !ok {
		dropped = append(dropped, dropAccessible)
	}

	if len(cols) > colInstLastUpdated {
		raw := csvline.Field(cols, colInstLastUpdated)
		if t, err := time.Parse(dateLayout, raw); err == nil {
			f.LastUpdated = &t
		} else if raw != "" {
			dropped = append(dropped, dropLastUpdated)
		}
	}

	return f, dropped, nil
}

// parseCoordinates reads "[lon,lat]".
func parseCoordinates(s string) (facility.Location, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return facility.Location{}, fmt.Errorf("unparsable coordinates %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return facility.Location{}, fmt.Errorf("unparsable coordinates %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return facility.Location{}, fmt.Errorf("unparsable coordinates %q", s)
	}
	p, err := geo.NewPoint(lon, lat)
	if err != nil {
		return facility.Location{}, err
	}
	return facility.NewLocation(p), nil
}

// parseCount reads a non-negative integer count. An empty value is a valid
// absence (nil, true); anything else unparsable is (nil, false).
func parseCount(s string) (*int, bool) {
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, false
	}
	return &n, true
}

// parseEquipment turns one equipments line into the owning facility id and the equipment.
func parseEquipment(line int, text string) (facilityID string, e facility.Equipment, err error) {
	cols := csvline.SplitPlain(text)
	if len(cols) < minEquipmentColumns {
		return "", facility.Equipment{}, row.Skip(line, row.ReasonTooFewColumns,
			"%d columns, need %d", len(cols), minEquipmentColumns)
	}

	facilityID = csvline.Field(cols, colEquipFacilityID)
	e = facility.Equipment{
		ID:         csvline.Field(cols, colEquipID),
		Name:       csvline.Field(cols, colEquipName),
		Type:       csvline.Field(cols, colEquipType),
		Family:     csvline.Field(cols, colEquipFamily),
		Activities: []string{},
	}
	if facilityID == "" || e.ID == "" {
		return "", facility.Equipment{}, row.Skip(line, row.ReasonMissingID, "facility=%q equipment=%q", facilityID, e.ID)
	}
	return facilityID, e, nil
}

// parseActivity turns one activities line into the target equipment id and the activity.
func parseActivity(line int, text string) (equipmentID, activity string, err error) {
	cols := csvline.SplitQuoted(text)
	if len(cols) < minActivityColumns {
		return "", "", row.Skip(line, row.ReasonTooFewColumns,
			"%d columns, need %d", len(cols), minActivityColumns)
	}

	equipmentID = csvline.Field(cols, colActEquipmentID)
	if equipmentID == "" {
		return "", "", row.Skip(line, row.ReasonMissingID, "")
	}
	activity = csvline.Field(cols, colActActivity)
	if activity == "" {
		return "", "", row.Skip(line, row.ReasonMissingActivity, "")
	}
	return equipmentID, activity, nil
}
