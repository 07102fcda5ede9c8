package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/repos"
	"github.com/site19/containment-backend/internal/types"
)

type ObjectService interface {
	Create(ctx context.Context, in ObjectInput) (*types.AnomalyObject, error)
	Edit(ctx context.Context, objectID uuid.UUID, in ObjectInput) (*types.AnomalyObject, error)
	Delete(ctx context.Context, objectID uuid.UUID) error
	List(ctx context.Context) ([]*types.ObjectWithChamber, error)
	Get(ctx context.Context, objectID uuid.UUID) (*types.ObjectWithChamber, error)
}

// ObjectInput carries the editable object attributes. DiscoveryDate is the
// raw form value and is parsed here; ChamberID nil means unassigned.
type ObjectInput struct {
	ObjectNumber                 string     `json:"object_number"`
	ObjectName                   string     `json:"object_name"`
	ObjectClass                  string     `json:"object_class"`
	Description                  string     `json:"description"`
	SpecialContainmentProcedures string     `json:"special_containment_procedures"`
	DiscoveryDate                string     `json:"discovery_date"`
	AssignedResearchers          []string   `json:"assigned_researchers"`
	ChamberID                    *uuid.UUID `json:"chamber_id"`
}

const discoveryDateLayout = "2006-01-02"

type objectService struct {
	db          *gorm.DB
	log         *logger.Logger
	objectRepo  repos.ObjectRepo
	chamberRepo repos.ChamberRepo
}

func NewObjectService(db *gorm.DB, log *logger.Logger, objectRepo repos.ObjectRepo, chamberRepo repos.ChamberRepo) ObjectService {
	serviceLog := log.With("service", "ObjectService")
	return &objectService{
		db:          db,
		log:         serviceLog,
		objectRepo:  objectRepo,
		chamberRepo: chamberRepo,
	}
}

func parseDiscoveryDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(discoveryDateLayout, raw)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("discovery date %q is not a valid YYYY-MM-DD date", raw))
	}
	return &t, nil
}

// Create registers an object. When a chamber is requested the slot is taken
// first; only after the increment succeeds is the object row written, so a
// full chamber leaves no object behind and its counter unchanged.
func (os *objectService) Create(ctx context.Context, in ObjectInput) (*types.AnomalyObject, error) {
	discoveryDate, err := parseDiscoveryDate(in.DiscoveryDate)
	if err != nil {
		return nil, err
	}

	status := types.ObjectStatusDiscovered
	if in.ChamberID != nil {
		if err := os.chamberRepo.IncrementOccupancy(ctx, nil, *in.ChamberID); err != nil {
			return nil, err
		}
		status = types.ObjectStatusContained
	}

	object := &types.AnomalyObject{
		ID:                           uuid.New(),
		ObjectNumber:                 in.ObjectNumber,
		ObjectName:                   in.ObjectName,
		ObjectClass:                  in.ObjectClass,
		Description:                  in.Description,
		SpecialContainmentProcedures: in.SpecialContainmentProcedures,
		Status:                       status,
		DiscoveryDate:                discoveryDate,
		AssignedResearchers:          in.AssignedResearchers,
		ChamberID:                    in.ChamberID,
	}
	if _, err := os.objectRepo.Create(ctx, nil, object); err != nil {
		if in.ChamberID != nil {
			// Give the slot back; the object row never existed.
			if dErr := os.chamberRepo.DecrementOccupancy(ctx, nil, *in.ChamberID); dErr != nil {
				os.log.Error("Failed to release slot after aborted create", "chamber_id", *in.ChamberID, "error", dErr)
			}
		}
		return nil, fmt.Errorf("failed to create object: %w", err)
	}
	os.log.Info("Object created", "object_id", object.ID, "status", status)
	return object, nil
}

// Edit updates attributes and, when the chamber reference changes, moves the
// object between chambers with a compensating decrement/increment pair.
//
// The move is two single-row statements, not one transaction across both
// chamber rows: between the decrement on the old chamber and the increment on
// the new one, a concurrent reader can observe the freed slot. Each statement
// is individually atomic, so no chamber ever persists a counter outside
// [0, capacity]; on an Overfull new chamber the decrement is compensated and
// the object is left exactly as stored.
func (os *objectService) Edit(ctx context.Context, objectID uuid.UUID, in ObjectInput) (*types.AnomalyObject, error) {
	discoveryDate, err := parseDiscoveryDate(in.DiscoveryDate)
	if err != nil {
		return nil, err
	}

	object, err := os.objectRepo.GetByID(ctx, nil, objectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("object")
		}
		return nil, fmt.Errorf("failed to load object: %w", err)
	}

	oldChamberID := object.ChamberID
	newChamberID := in.ChamberID

	if !sameChamber(oldChamberID, newChamberID) {
		if oldChamberID != nil {
			if err := os.chamberRepo.DecrementOccupancy(ctx, nil, *oldChamberID); err != nil {
				return nil, fmt.Errorf("failed to release old chamber slot: %w", err)
			}
		}
		if newChamberID != nil {
			if err := os.chamberRepo.IncrementOccupancy(ctx, nil, *newChamberID); err != nil {
				if oldChamberID != nil {
					// Compensate: the object stays where it was.
					if cErr := os.chamberRepo.IncrementOccupancy(ctx, nil, *oldChamberID); cErr != nil {
						os.log.Error("Compensation failed, occupancy may undercount", "chamber_id", *oldChamberID, "error", cErr)
					}
				}
				return nil, err
			}
		}
	}

	object.ObjectNumber = in.ObjectNumber
	object.ObjectName = in.ObjectName
	object.ObjectClass = in.ObjectClass
	object.Description = in.Description
	object.SpecialContainmentProcedures = in.SpecialContainmentProcedures
	object.DiscoveryDate = discoveryDate
	object.AssignedResearchers = in.AssignedResearchers
	object.ChamberID = newChamberID
	if newChamberID != nil {
		object.Status = types.ObjectStatusContained
	} else {
		object.Status = types.ObjectStatusUnderStudy
	}

	if err := os.objectRepo.Save(ctx, nil, object); err != nil {
		return nil, fmt.Errorf("failed to update object: %w", err)
	}
	return object, nil
}

func sameChamber(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Delete frees the chamber slot before removing the row, so a crash in
// between leaves only a conservative undercount, never a stranded reference.
func (os *objectService) Delete(ctx context.Context, objectID uuid.UUID) error {
	object, err := os.objectRepo.GetByID(ctx, nil, objectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("object")
		}
		return fmt.Errorf("failed to load object: %w", err)
	}

	if object.ChamberID != nil {
		if err := os.chamberRepo.DecrementOccupancy(ctx, nil, *object.ChamberID); err != nil {
			return fmt.Errorf("failed to release chamber slot: %w", err)
		}
	}
	if err := os.objectRepo.Delete(ctx, nil, objectID); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	os.log.Info("Object deleted", "object_id", objectID)
	return nil
}

// List resolves each object's chamber read-side for display.
func (os *objectService) List(ctx context.Context) ([]*types.ObjectWithChamber, error) {
	objects, err := os.objectRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	chambers, err := os.chamberRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list chambers: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Chamber, len(chambers))
	for _, chamber := range chambers {
		byID[chamber.ID] = chamber
	}

	results := make([]*types.ObjectWithChamber, 0, len(objects))
	for _, object := range objects {
		row := &types.ObjectWithChamber{AnomalyObject: *object}
		if object.ChamberID != nil {
			row.Chamber = byID[*object.ChamberID]
		}
		results = append(results, row)
	}
	return results, nil
}

func (os *objectService) Get(ctx context.Context, objectID uuid.UUID) (*types.ObjectWithChamber, error) {
	object, err := os.objectRepo.GetByID(ctx, nil, objectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("object")
		}
		return nil, fmt.Errorf("failed to load object: %w", err)
	}
	row := &types.ObjectWithChamber{AnomalyObject: *object}
	if object.ChamberID != nil {
		chamber, err := os.chamberRepo.GetByID(ctx, nil, *object.ChamberID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load chamber: %w", err)
		}
		row.Chamber = chamber
	}
	return row, nil
}
