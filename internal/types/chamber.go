package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChamberStatusActive           = "Active"
	ChamberStatusUnderMaintenance = "Under Maintenance"
)

// Chamber is a capacity-bounded containment resource. CurrentOccupancy is a
// denormalized counter of anomaly objects referencing the chamber; every
// persisted state must satisfy 0 <= CurrentOccupancy <= Capacity.
type Chamber struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChamberType           string    `gorm:"column:chamber_type" json:"chamber_type"`
	SizeDimensions        string    `gorm:"column:size_dimensions" json:"size_dimensions"`
	SecurityLevel         string    `gorm:"column:security_level" json:"security_level"`
	EnvironmentalControls string    `gorm:"column:environmental_controls" json:"environmental_controls"`
	MonitoringEquipment   string    `gorm:"column:monitoring_equipment" json:"monitoring_equipment"`
	ConstructionMaterials string    `gorm:"column:construction_materials" json:"construction_materials"`
	Location              string    `gorm:"column:location" json:"location"`
	Capacity              int       `gorm:"not null;column:capacity" json:"capacity"`
	CurrentOccupancy      int       `gorm:"not null;default:0;column:current_occupancy" json:"current_occupancy"`
	Status                string    `gorm:"not null;default:Active;column:status" json:"status"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time `gorm:"not null" json:"updated_at"`
}

func (Chamber) TableName() string {
	return "chambers"
}

// HasVacancy reports whether the chamber can take one more object, as of the
// loaded snapshot. The authoritative check is the conditional update in the
// chamber repo.
func (c *Chamber) HasVacancy() bool {
	return c.CurrentOccupancy < c.Capacity
}
