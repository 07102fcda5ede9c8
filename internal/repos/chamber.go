package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/types"
)

type ChamberRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chamber *types.Chamber) (*types.Chamber, error)
	GetByID(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) (*types.Chamber, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Chamber, error)
	ListAvailable(ctx context.Context, tx *gorm.DB) ([]*types.Chamber, error)
	Save(ctx context.Context, tx *gorm.DB, chamber *types.Chamber) error
	Delete(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) error
	IncrementOccupancy(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) error
	DecrementOccupancy(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) error
}

type chamberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChamberRepo(db *gorm.DB, baseLog *logger.Logger) ChamberRepo {
	repoLog := baseLog.With("repo", "ChamberRepo")
	return &chamberRepo{db: db, log: repoLog}
}

func (cr *chamberRepo) Create(ctx context.Context, tx *gorm.DB, chamber *types.Chamber) (*types.Chamber, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(ctx).Create(chamber).Error; err != nil {
		return nil, err
	}
	return chamber, nil
}

func (cr *chamberRepo) GetByID(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) (*types.Chamber, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Chamber
	if err := transaction.WithContext(ctx).
		Where("id = ?", chamberID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *chamberRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Chamber, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Chamber
	if err := transaction.WithContext(ctx).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *chamberRepo) ListAvailable(ctx context.Context, tx *gorm.DB) ([]*types.Chamber, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Chamber
	if err := transaction.WithContext(ctx).
		Where("current_occupancy < capacity").
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *chamberRepo) Save(ctx context.Context, tx *gorm.DB, chamber *types.Chamber) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).Save(chamber).Error
}

func (cr *chamberRepo) Delete(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", chamberID).
		Delete(&types.Chamber{}).Error
}

// IncrementOccupancy takes one slot in the chamber with a single conditional
// UPDATE, so the capacity check and the increment are atomic on the row.
// Returns Overfull when the chamber is at capacity, NotFound when it does not
// exist.
func (cr *chamberRepo) IncrementOccupancy(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Chamber{}).
		Where("id = ? AND current_occupancy < capacity", chamberID).
		UpdateColumn("current_occupancy", gorm.Expr("current_occupancy + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Disambiguate: missing chamber vs full chamber.
		if _, err := cr.GetByID(ctx, tx, chamberID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("chamber")
			}
			return err
		}
		return apperr.Overfull(chamberID.String())
	}
	return nil
}

// DecrementOccupancy releases one slot, saturating at zero. A zero-occupancy
// decrement means the counter and the object references disagreed; it is
// logged but not treated as a caller error.
func (cr *chamberRepo) DecrementOccupancy(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Chamber{}).
		Where("id = ? AND current_occupancy > 0", chamberID).
		UpdateColumn("current_occupancy", gorm.Expr("current_occupancy - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		cr.log.Warn("Occupancy decrement had no effect", "chamber_id", chamberID)
	}
	return nil
}
