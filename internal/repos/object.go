package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/types"
)

type ObjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, object *types.AnomalyObject) (*types.AnomalyObject, error)
	GetByID(ctx context.Context, tx *gorm.DB, objectID uuid.UUID) (*types.AnomalyObject, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.AnomalyObject, error)
	ListByChamberID(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) ([]*types.AnomalyObject, error)
	Save(ctx context.Context, tx *gorm.DB, object *types.AnomalyObject) error
	Delete(ctx context.Context, tx *gorm.DB, objectID uuid.UUID) error
	ClearChamber(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) (int64, error)
}

type objectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObjectRepo(db *gorm.DB, baseLog *logger.Logger) ObjectRepo {
	repoLog := baseLog.With("repo", "ObjectRepo")
	return &objectRepo{db: db, log: repoLog}
}

func (or *objectRepo) Create(ctx context.Context, tx *gorm.DB, object *types.AnomalyObject) (*types.AnomalyObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	if err := transaction.WithContext(ctx).Create(object).Error; err != nil {
		return nil, err
	}
	return object, nil
}

func (or *objectRepo) GetByID(ctx context.Context, tx *gorm.DB, objectID uuid.UUID) (*types.AnomalyObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var result types.AnomalyObject
	if err := transaction.WithContext(ctx).
		Where("id = ?", objectID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (or *objectRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.AnomalyObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var results []*types.AnomalyObject
	if err := transaction.WithContext(ctx).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *objectRepo) ListByChamberID(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) ([]*types.AnomalyObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var results []*types.AnomalyObject
	if err := transaction.WithContext(ctx).
		Where("chamber_id = ?", chamberID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *objectRepo) Save(ctx context.Context, tx *gorm.DB, object *types.AnomalyObject) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	return transaction.WithContext(ctx).Save(object).Error
}

func (or *objectRepo) Delete(ctx context.Context, tx *gorm.DB, objectID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", objectID).
		Delete(&types.AnomalyObject{}).Error
}

// ClearChamber detaches every object referencing the chamber in one
// updateMany: the reference is nulled and the status forced to Awaiting
// Containment together, so no object is ever visible half-detached.
func (or *objectRepo) ClearChamber(ctx context.Context, tx *gorm.DB, chamberID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.AnomalyObject{}).
		Where("chamber_id = ?", chamberID).
		Updates(map[string]interface{}{
			"chamber_id": nil,
			"status":     types.ObjectStatusAwaitingContainment,
		})
	return res.RowsAffected, res.Error
}
