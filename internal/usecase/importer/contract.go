package importer

import (
	"context"

	"github.com/kailas-cloud/sportdex/internal/domain/facility"
)

// FacilityWriter persists facility records and their appended parts.
type FacilityWriter interface {
	Upsert(ctx context.Context, f *facility.Facility) error
	// AppendEquipment reports false when no record has id facilityID.
	AppendEquipment(ctx context.Context, facilityID string, e facility.Equipment) (bool, error)
	// AppendActivity reports false when record facilityID has no equipment
	// equipmentID.
	AppendActivity(ctx context.Context, facilityID, equipmentID, activity string) (bool, error)
	// EquipmentOwners maps every stored equipment id to the id of the record
	// holding it.
	EquipmentOwners(ctx context.Context) (map[string]string, error)
}
