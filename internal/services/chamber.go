package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/repos"
	"github.com/site19/containment-backend/internal/types"
)

type ChamberService interface {
	Create(ctx context.Context, in ChamberInput) (*types.Chamber, error)
	List(ctx context.Context) ([]*types.Chamber, error)
	ListAvailable(ctx context.Context) ([]*types.Chamber, error)
	Get(ctx context.Context, chamberID uuid.UUID) (*ChamberDetails, error)
	Update(ctx context.Context, chamberID uuid.UUID, in ChamberInput) (*types.Chamber, error)
	Delete(ctx context.Context, chamberID uuid.UUID) error
}

// ChamberInput carries the editable chamber attributes. Capacity arrives
// pre-parsed; validation of its range happens here.
type ChamberInput struct {
	ChamberType           string `json:"chamber_type"`
	SizeDimensions        string `json:"size_dimensions"`
	SecurityLevel         string `json:"security_level"`
	EnvironmentalControls string `json:"environmental_controls"`
	MonitoringEquipment   string `json:"monitoring_equipment"`
	ConstructionMaterials string `json:"construction_materials"`
	Location              string `json:"location"`
	Capacity              int    `json:"capacity"`
	Status                string `json:"status"`
}

// ChamberDetails is the chamber detail view: the chamber plus the objects
// currently contained in it.
type ChamberDetails struct {
	Chamber *types.Chamber         `json:"chamber"`
	Objects []*types.AnomalyObject `json:"objects"`
}

type chamberService struct {
	db          *gorm.DB
	log         *logger.Logger
	chamberRepo repos.ChamberRepo
	objectRepo  repos.ObjectRepo
}

func NewChamberService(db *gorm.DB, log *logger.Logger, chamberRepo repos.ChamberRepo, objectRepo repos.ObjectRepo) ChamberService {
	serviceLog := log.With("service", "ChamberService")
	return &chamberService{
		db:          db,
		log:         serviceLog,
		chamberRepo: chamberRepo,
		objectRepo:  objectRepo,
	}
}

func (cs *chamberService) Create(ctx context.Context, in ChamberInput) (*types.Chamber, error) {
	if in.Capacity < 1 {
		// Non-positive capacity is rejected, not clamped.
		return nil, apperr.Validation("capacity must be a positive integer")
	}
	status := in.Status
	if status == "" {
		status = types.ChamberStatusActive
	}

	chamber := &types.Chamber{
		ID:                    uuid.New(),
		ChamberType:           in.ChamberType,
		SizeDimensions:        in.SizeDimensions,
		SecurityLevel:         in.SecurityLevel,
		EnvironmentalControls: in.EnvironmentalControls,
		MonitoringEquipment:   in.MonitoringEquipment,
		ConstructionMaterials: in.ConstructionMaterials,
		Location:              in.Location,
		Capacity:              in.Capacity,
		CurrentOccupancy:      0,
		Status:                status,
	}
	if _, err := cs.chamberRepo.Create(ctx, nil, chamber); err != nil {
		return nil, fmt.Errorf("failed to create chamber: %w", err)
	}
	cs.log.Info("Chamber created", "chamber_id", chamber.ID, "capacity", chamber.Capacity)
	return chamber, nil
}

func (cs *chamberService) List(ctx context.Context) ([]*types.Chamber, error) {
	chambers, err := cs.chamberRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list chambers: %w", err)
	}
	return chambers, nil
}

func (cs *chamberService) ListAvailable(ctx context.Context) ([]*types.Chamber, error) {
	chambers, err := cs.chamberRepo.ListAvailable(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list available chambers: %w", err)
	}
	return chambers, nil
}

func (cs *chamberService) Get(ctx context.Context, chamberID uuid.UUID) (*ChamberDetails, error) {
	chamber, err := cs.chamberRepo.GetByID(ctx, nil, chamberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("chamber")
		}
		return nil, fmt.Errorf("failed to load chamber: %w", err)
	}
	objects, err := cs.objectRepo.ListByChamberID(ctx, nil, chamberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contained objects: %w", err)
	}
	return &ChamberDetails{Chamber: chamber, Objects: objects}, nil
}

// Update applies editable attributes in one row write. A capacity below the
// current occupancy is rejected and the stored record left untouched.
func (cs *chamberService) Update(ctx context.Context, chamberID uuid.UUID, in ChamberInput) (*types.Chamber, error) {
	chamber, err := cs.chamberRepo.GetByID(ctx, nil, chamberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("chamber")
		}
		return nil, fmt.Errorf("failed to load chamber: %w", err)
	}

	if in.Capacity < 1 {
		return nil, apperr.Validation("capacity must be a positive integer")
	}
	if in.Capacity < chamber.CurrentOccupancy {
		return nil, apperr.CapacityBelowOccupancy(in.Capacity, chamber.CurrentOccupancy)
	}

	chamber.ChamberType = in.ChamberType
	chamber.SizeDimensions = in.SizeDimensions
	chamber.SecurityLevel = in.SecurityLevel
	chamber.EnvironmentalControls = in.EnvironmentalControls
	chamber.MonitoringEquipment = in.MonitoringEquipment
	chamber.ConstructionMaterials = in.ConstructionMaterials
	chamber.Location = in.Location
	chamber.Capacity = in.Capacity
	if in.Status != "" {
		chamber.Status = in.Status
	}

	if err := cs.chamberRepo.Save(ctx, nil, chamber); err != nil {
		return nil, fmt.Errorf("failed to update chamber: %w", err)
	}
	return chamber, nil
}

// Delete cascades before removing the chamber: referencing objects are
// detached (chamber_id cleared, status forced to Awaiting Containment) first,
// then the chamber row goes away. If the cascade is interrupted the worst
// case is a deleted reference set with the chamber still present, never an
// object pointing at a missing chamber.
func (cs *chamberService) Delete(ctx context.Context, chamberID uuid.UUID) error {
	if _, err := cs.chamberRepo.GetByID(ctx, nil, chamberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("chamber")
		}
		return fmt.Errorf("failed to load chamber: %w", err)
	}

	cleared, err := cs.objectRepo.ClearChamber(ctx, nil, chamberID)
	if err != nil {
		return fmt.Errorf("failed to detach objects from chamber: %w", err)
	}
	if err := cs.chamberRepo.Delete(ctx, nil, chamberID); err != nil {
		return fmt.Errorf("failed to delete chamber: %w", err)
	}
	cs.log.Info("Chamber deleted", "chamber_id", chamberID, "objects_detached", cleared)
	return nil
}
