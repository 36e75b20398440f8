package importer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/kailas-cloud/sportdex/internal/domain/facility"
)

var errConnReset = errors.New("connection reset by peer")

// memWriter is an in-memory FacilityWriter with the same matching rules as
// the document store: appends never create records.
type memWriter struct {
	mu         sync.Mutex
	records    map[string]*facility.Facility
	order      []string
	failUpsert string
	ownersErr  error
	// beforeActivity runs ahead of each activity write, outside the lock.
	beforeActivity func(ctx context.Context, equipmentID string)
}

func newMemWriter() *memWriter {
	return &memWriter{records: map[string]*facility.Facility{}}
}

func (w *memWriter) Upsert(_ context.Context, f *facility.Facility) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if f.ID == w.failUpsert {
		return errConnReset
	}
	cp := *f
	cp.Equipments = append([]facility.Equipment{}, f.Equipments...)
	cp.Activities = append([]string{}, f.Activities...)
	if _, ok := w.records[f.ID]; !ok {
		w.order = append(w.order, f.ID)
	}
	w.records[f.ID] = &cp
	return nil
}

func (w *memWriter) AppendEquipment(_ context.Context, facilityID string, e facility.Equipment) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok := w.records[facilityID]
	if !ok {
		return false, nil
	}
	rec.Equipments = append(rec.Equipments, e)
	return true, nil
}

func (w *memWriter) AppendActivity(ctx context.Context, facilityID, equipmentID, activity string) (bool, error) {
	if w.beforeActivity != nil {
		w.beforeActivity(ctx, equipmentID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok := w.records[facilityID]
	if !ok {
		return false, nil
	}
	for i := range rec.Equipments {
		if rec.Equipments[i].ID == equipmentID {
			rec.Equipments[i].Activities = append(rec.Equipments[i].Activities, activity)
			rec.Activities = append(rec.Activities, activity)
			return true, nil
		}
	}
	return false, nil
}

func (w *memWriter) EquipmentOwners(_ context.Context) (map[string]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ownersErr != nil {
		return nil, w.ownersErr
	}
	owners := map[string]string{}
	for _, id := range w.order {
		for _, e := range w.records[id].Equipments {
			if _, seen := owners[e.ID]; !seen {
				owners[e.ID] = id
			}
		}
	}
	return owners, nil
}

func (w *memWriter) get(id string) (facility.Facility, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rec, ok := w.records[id]
	if !ok {
		return facility.Facility{}, false
	}
	return *rec, true
}

func (w *memWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}

// --- CSV fixtures ---

func installationLine(id, name, commune, coords, date string) string {
	cols := make([]string, colInstLastUpdated+1)
	cols[colInstName] = name
	cols[colInstID] = id
	cols[colInstCommune] = commune
	cols[colInstPostalCode] = "44000"
	cols[colInstLocality] = "Centre"
	cols[colInstNumber] = "3"
	cols[colInstStreet] = "Rue de la Paix"
	cols[colInstCoordinates] = coords
	cols[colInstMultiCommune] = "Oui"
	cols[colInstParking] = "12"
	cols[colInstAccessible] = "2"
	cols[colInstLastUpdated] = date
	return quoted(cols)
}

func equipmentLine(facilityID, equipmentID, name string) string {
	cols := make([]string, colEquipFamily+1)
	cols[colEquipFacilityID] = facilityID
	cols[colEquipID] = equipmentID
	cols[colEquipName] = name
	cols[colEquipType] = "Court de tennis"
	cols[colEquipFamily] = "Courts"
	return strings.Join(cols, ",")
}

func activityLine(equipmentID, activity string) string {
	cols := make([]string, colActActivity+1)
	cols[colActEquipmentID] = equipmentID
	cols[colActActivity] = activity
	return quoted(cols)
}

func quoted(cols []string) string {
	return `"` + strings.Join(cols, `","`) + `"`
}

func csvFile(lines ...string) io.Reader {
	return strings.NewReader("header\n" + strings.Join(lines, "\n") + "\n")
}
