package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/repos"
	"github.com/site19/containment-backend/internal/types"
)

func newObjectFixture(t *testing.T) (ObjectService, ChamberService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	chamberRepo := repos.NewChamberRepo(db, log)
	objectRepo := repos.NewObjectRepo(db, log)
	return NewObjectService(db, log, objectRepo, chamberRepo),
		NewChamberService(db, log, chamberRepo, objectRepo),
		db
}

func chamberOccupancy(t *testing.T, db *gorm.DB, chamberID uuid.UUID) int {
	t.Helper()
	var chamber types.Chamber
	if err := db.Where("id = ?", chamberID).First(&chamber).Error; err != nil {
		t.Fatalf("load chamber %s: %v", chamberID, err)
	}
	return chamber.CurrentOccupancy
}

func TestObjectCreateUnassigned(t *testing.T) {
	svc, _, _ := newObjectFixture(t)

	object, err := svc.Create(context.Background(), ObjectInput{
		ObjectNumber:        "SCP-173",
		ObjectName:          "The Sculpture",
		ObjectClass:         "Euclid",
		DiscoveryDate:       "2004-06-22",
		AssignedResearchers: []string{"Dr. Gears"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if object.Status != types.ObjectStatusDiscovered {
		t.Fatalf("status: want=%q got=%q", types.ObjectStatusDiscovered, object.Status)
	}
	if object.ChamberID != nil {
		t.Fatalf("chamber id: want nil got %s", object.ChamberID)
	}
	if object.DiscoveryDate == nil || object.DiscoveryDate.Format("2006-01-02") != "2004-06-22" {
		t.Fatalf("discovery date: got %v", object.DiscoveryDate)
	}
}

func TestObjectCreateRejectsMalformedDiscoveryDate(t *testing.T) {
	svc, _, _ := newObjectFixture(t)

	_, err := svc.Create(context.Background(), ObjectInput{ObjectNumber: "SCP-173", DiscoveryDate: "22/06/2004"})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("Create: want validation error, got %v", err)
	}
}

func TestObjectCreateFillsChamberToCapacity(t *testing.T) {
	svc, chambers, db := newObjectFixture(t)
	ctx := context.Background()

	chamber, err := chambers.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 1})
	if err != nil {
		t.Fatalf("Create chamber: %v", err)
	}

	first, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-682", ChamberID: &chamber.ID})
	if err != nil {
		t.Fatalf("Create first object: %v", err)
	}
	if first.Status != types.ObjectStatusContained {
		t.Fatalf("status: want=%q got=%q", types.ObjectStatusContained, first.Status)
	}
	if got := chamberOccupancy(t, db, chamber.ID); got != 1 {
		t.Fatalf("occupancy: want=1 got=%d", got)
	}

	// Second assignment into a full chamber is rejected atomically: no object
	// row, counter unchanged.
	_, err = svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-999", ChamberID: &chamber.ID})
	if !apperr.IsCode(err, apperr.CodeOverfull) {
		t.Fatalf("Create into full chamber: want overfull, got %v", err)
	}
	if got := chamberOccupancy(t, db, chamber.ID); got != 1 {
		t.Fatalf("occupancy after rejection: want=1 got=%d", got)
	}
	var count int64
	if err := db.Model(&types.AnomalyObject{}).Count(&count).Error; err != nil {
		t.Fatalf("count objects: %v", err)
	}
	if count != 1 {
		t.Fatalf("object rows after rejection: want=1 got=%d", count)
	}
}

func TestObjectCreateIntoMissingChamber(t *testing.T) {
	svc, _, _ := newObjectFixture(t)

	missing := uuid.New()
	_, err := svc.Create(context.Background(), ObjectInput{ObjectNumber: "SCP-055", ChamberID: &missing})
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("Create into missing chamber: want not_found, got %v", err)
	}
}

func TestObjectEditMovesBetweenChambers(t *testing.T) {
	svc, chambers, db := newObjectFixture(t)
	ctx := context.Background()

	source, err := chambers.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 1})
	if err != nil {
		t.Fatalf("Create source chamber: %v", err)
	}
	target, err := chambers.Create(ctx, ChamberInput{ChamberType: "High-Security", Capacity: 1})
	if err != nil {
		t.Fatalf("Create target chamber: %v", err)
	}
	object, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-106", ChamberID: &source.ID})
	if err != nil {
		t.Fatalf("Create object: %v", err)
	}

	moved, err := svc.Edit(ctx, object.ID, ObjectInput{ObjectNumber: "SCP-106", ChamberID: &target.ID})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if moved.ChamberID == nil || *moved.ChamberID != target.ID {
		t.Fatalf("chamber after move: want=%s got=%v", target.ID, moved.ChamberID)
	}
	if got := chamberOccupancy(t, db, source.ID); got != 0 {
		t.Fatalf("source occupancy: want=0 got=%d", got)
	}
	if got := chamberOccupancy(t, db, target.ID); got != 1 {
		t.Fatalf("target occupancy: want=1 got=%d", got)
	}
}

func TestObjectEditIntoFullChamberCompensates(t *testing.T) {
	svc, chambers, db := newObjectFixture(t)
	ctx := context.Background()

	source, err := chambers.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 1})
	if err != nil {
		t.Fatalf("Create source chamber: %v", err)
	}
	full, err := chambers.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 1})
	if err != nil {
		t.Fatalf("Create full chamber: %v", err)
	}
	if _, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-079", ChamberID: &full.ID}); err != nil {
		t.Fatalf("Fill target chamber: %v", err)
	}
	object, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-106", ChamberID: &source.ID})
	if err != nil {
		t.Fatalf("Create object: %v", err)
	}

	_, err = svc.Edit(ctx, object.ID, ObjectInput{ObjectNumber: "SCP-106", ChamberID: &full.ID})
	if !apperr.IsCode(err, apperr.CodeOverfull) {
		t.Fatalf("Edit into full chamber: want overfull, got %v", err)
	}

	// Compensation restores the source counter and the object keeps its
	// original assignment.
	if got := chamberOccupancy(t, db, source.ID); got != 1 {
		t.Fatalf("source occupancy after compensation: want=1 got=%d", got)
	}
	if got := chamberOccupancy(t, db, full.ID); got != 1 {
		t.Fatalf("full chamber occupancy: want=1 got=%d", got)
	}
	row, err := svc.Get(ctx, object.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row.ChamberID == nil || *row.ChamberID != source.ID {
		t.Fatalf("object chamber after failed move: want=%s got=%v", source.ID, row.ChamberID)
	}
	if row.Status != types.ObjectStatusContained {
		t.Fatalf("object status after failed move: want=%q got=%q", types.ObjectStatusContained, row.Status)
	}
}

func TestObjectEditUnassignReleasesSlot(t *testing.T) {
	svc, chambers, db := newObjectFixture(t)
	ctx := context.Background()

	chamber, err := chambers.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 1})
	if err != nil {
		t.Fatalf("Create chamber: %v", err)
	}
	object, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-049", ChamberID: &chamber.ID})
	if err != nil {
		t.Fatalf("Create object: %v", err)
	}

	edited, err := svc.Edit(ctx, object.ID, ObjectInput{ObjectNumber: "SCP-049"})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.ChamberID != nil {
		t.Fatalf("chamber after unassign: want nil got %s", edited.ChamberID)
	}
	if edited.Status != types.ObjectStatusUnderStudy {
		t.Fatalf("status after unassign: want=%q got=%q", types.ObjectStatusUnderStudy, edited.Status)
	}
	if got := chamberOccupancy(t, db, chamber.ID); got != 0 {
		t.Fatalf("occupancy after unassign: want=0 got=%d", got)
	}
}

func TestObjectDeleteReleasesSlot(t *testing.T) {
	svc, chambers, db := newObjectFixture(t)
	ctx := context.Background()

	chamber, err := chambers.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 1})
	if err != nil {
		t.Fatalf("Create chamber: %v", err)
	}
	object, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-096", ChamberID: &chamber.ID})
	if err != nil {
		t.Fatalf("Create object: %v", err)
	}

	if err := svc.Delete(ctx, object.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := chamberOccupancy(t, db, chamber.ID); got != 0 {
		t.Fatalf("occupancy after delete: want=0 got=%d", got)
	}

	// The freed slot is immediately reusable.
	if _, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-097", ChamberID: &chamber.ID}); err != nil {
		t.Fatalf("Create into freed slot: %v", err)
	}
}

func TestObjectDeleteNotFound(t *testing.T) {
	svc, _, _ := newObjectFixture(t)

	err := svc.Delete(context.Background(), uuid.New())
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("Delete missing object: want not_found, got %v", err)
	}
}

func TestObjectListResolvesChambers(t *testing.T) {
	svc, chambers, _ := newObjectFixture(t)
	ctx := context.Background()

	chamber, err := chambers.Create(ctx, ChamberInput{ChamberType: "Standard", Capacity: 2, Location: "Site-19 Wing B"})
	if err != nil {
		t.Fatalf("Create chamber: %v", err)
	}
	if _, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-131", ChamberID: &chamber.ID}); err != nil {
		t.Fatalf("Create assigned object: %v", err)
	}
	if _, err := svc.Create(ctx, ObjectInput{ObjectNumber: "SCP-132"}); err != nil {
		t.Fatalf("Create unassigned object: %v", err)
	}

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: want=2 got=%d", len(rows))
	}
	byNumber := map[string]*types.ObjectWithChamber{}
	for _, row := range rows {
		byNumber[row.ObjectNumber] = row
	}
	if byNumber["SCP-131"].Chamber == nil || byNumber["SCP-131"].Chamber.Location != "Site-19 Wing B" {
		t.Fatalf("assigned object did not resolve its chamber: %+v", byNumber["SCP-131"].Chamber)
	}
	if byNumber["SCP-132"].Chamber != nil {
		t.Fatalf("unassigned object should have no chamber, got %+v", byNumber["SCP-132"].Chamber)
	}
}
