package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/repos"
	"github.com/site19/containment-backend/internal/types"
)

func newChamberFixture(t *testing.T) (ChamberService, ObjectService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	chamberRepo := repos.NewChamberRepo(db, log)
	objectRepo := repos.NewObjectRepo(db, log)
	return NewChamberService(db, log, chamberRepo, objectRepo),
		NewObjectService(db, log, objectRepo, chamberRepo),
		db
}

func TestChamberCreateRejectsNonPositiveCapacity(t *testing.T) {
	svc, _, _ := newChamberFixture(t)

	for _, capacity := range []int{0, -3} {
		_, err := svc.Create(context.Background(), ChamberInput{ChamberType: "Standard", Capacity: capacity})
		if !apperr.IsCode(err, apperr.CodeValidation) {
			t.Fatalf("Create with capacity %d: want validation error, got %v", capacity, err)
		}
	}
}

func TestChamberCreateDefaults(t *testing.T) {
	svc, _, _ := newChamberFixture(t)

	chamber, err := svc.Create(context.Background(), ChamberInput{ChamberType: "High-Security", Capacity: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if chamber.Status != types.ChamberStatusActive {
		t.Fatalf("status: want=%q got=%q", types.ChamberStatusActive, chamber.Status)
	}
	if chamber.CurrentOccupancy != 0 {
		t.Fatalf("occupancy: want=0 got=%d", chamber.CurrentOccupancy)
	}
	if !chamber.HasVacancy() {
		t.Fatalf("freshly created chamber should have vacancy")
	}
}

func TestChamberGetNotFound(t *testing.T) {
	svc, _, _ := newChamberFixture(t)

	_, err := svc.Get(context.Background(), uuid.New())
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("Get missing chamber: want not_found, got %v", err)
	}
}

func TestChamberUpdateRejectsCapacityBelowOccupancy(t *testing.T) {
	svc, objects, _ := newChamberFixture(t)
	ctx := context.Background()

	chamber, err := svc.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 3})
	if err != nil {
		t.Fatalf("Create chamber: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := objects.Create(ctx, ObjectInput{ObjectNumber: "SCP-00" + string(rune('1'+i)), ChamberID: &chamber.ID}); err != nil {
			t.Fatalf("Create object %d: %v", i, err)
		}
	}

	_, err = svc.Update(ctx, chamber.ID, ChamberInput{ChamberType: "Standard", Capacity: 1})
	if !apperr.IsCode(err, apperr.CodeCapacityBelowOccupancy) {
		t.Fatalf("Update: want capacity_below_occupancy, got %v", err)
	}

	// The stored record must be untouched after the rejection.
	details, err := svc.Get(ctx, chamber.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if details.Chamber.Capacity != 3 {
		t.Fatalf("capacity after rejected update: want=3 got=%d", details.Chamber.Capacity)
	}
	if details.Chamber.CurrentOccupancy != 2 {
		t.Fatalf("occupancy after rejected update: want=2 got=%d", details.Chamber.CurrentOccupancy)
	}

	// Shrinking down to exactly the occupancy is allowed.
	updated, err := svc.Update(ctx, chamber.ID, ChamberInput{ChamberType: "Standard", Capacity: 2})
	if err != nil {
		t.Fatalf("Update to capacity 2: %v", err)
	}
	if updated.Capacity != 2 {
		t.Fatalf("capacity: want=2 got=%d", updated.Capacity)
	}
}

func TestChamberUpdateKeepsStatusWhenOmitted(t *testing.T) {
	svc, _, _ := newChamberFixture(t)
	ctx := context.Background()

	chamber, err := svc.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 2, Status: types.ChamberStatusUnderMaintenance})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := svc.Update(ctx, chamber.ID, ChamberInput{ChamberType: "Standard", Capacity: 2})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != types.ChamberStatusUnderMaintenance {
		t.Fatalf("status: want=%q got=%q", types.ChamberStatusUnderMaintenance, updated.Status)
	}
}

func TestChamberDeleteDetachesObjects(t *testing.T) {
	svc, objects, _ := newChamberFixture(t)
	ctx := context.Background()

	chamber, err := svc.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 5})
	if err != nil {
		t.Fatalf("Create chamber: %v", err)
	}
	var objectIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		object, err := objects.Create(ctx, ObjectInput{ObjectNumber: "SCP-10" + string(rune('0'+i)), ChamberID: &chamber.ID})
		if err != nil {
			t.Fatalf("Create object %d: %v", i, err)
		}
		objectIDs = append(objectIDs, object.ID)
	}

	if err := svc.Delete(ctx, chamber.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.Get(ctx, chamber.ID); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("Get after delete: want not_found, got %v", err)
	}
	for _, id := range objectIDs {
		row, err := objects.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get object %s: %v", id, err)
		}
		if row.ChamberID != nil {
			t.Fatalf("object %s still references deleted chamber", id)
		}
		if row.Status != types.ObjectStatusAwaitingContainment {
			t.Fatalf("object %s status: want=%q got=%q", id, types.ObjectStatusAwaitingContainment, row.Status)
		}
	}
}

func TestChamberDeleteNotFound(t *testing.T) {
	svc, _, _ := newChamberFixture(t)

	err := svc.Delete(context.Background(), uuid.New())
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("Delete missing chamber: want not_found, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("Delete error should carry the taxonomy type, got %T", err)
	}
}

func TestChamberListAvailableExcludesFull(t *testing.T) {
	svc, objects, _ := newChamberFixture(t)
	ctx := context.Background()

	full, err := svc.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 1})
	if err != nil {
		t.Fatalf("Create full chamber: %v", err)
	}
	open, err := svc.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 2})
	if err != nil {
		t.Fatalf("Create open chamber: %v", err)
	}
	if _, err := objects.Create(ctx, ObjectInput{ObjectNumber: "SCP-200", ChamberID: &full.ID}); err != nil {
		t.Fatalf("Create object: %v", err)
	}

	available, err := svc.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 1 {
		t.Fatalf("available chambers: want=1 got=%d", len(available))
	}
	if available[0].ID != open.ID {
		t.Fatalf("available chamber: want=%s got=%s", open.ID, available[0].ID)
	}
}
