package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Anomaly object statuses. The only legal transitions are driven by chamber
// assignment: Discovered/Under Study <-> Contained on assign/unassign, and
// Awaiting Containment is reachable only through a chamber deletion cascade.
const (
	ObjectStatusUnderStudy          = "Under Study"
	ObjectStatusDiscovered          = "Discovered"
	ObjectStatusContained           = "Contained"
	ObjectStatusAwaitingContainment = "Awaiting Containment"
)

// AnomalyObject is an inventory record, optionally assigned to one chamber.
// ChamberID is either nil or references a chamber whose occupancy counter
// accounts for this object exactly once.
type AnomalyObject struct {
	ID                           uuid.UUID                  `gorm:"type:uuid;primaryKey" json:"id"`
	ObjectNumber                 string                     `gorm:"column:object_number" json:"object_number"`
	ObjectName                   string                     `gorm:"column:object_name" json:"object_name"`
	ObjectClass                  string                     `gorm:"column:object_class" json:"object_class"`
	Description                  string                     `gorm:"column:description" json:"description"`
	SpecialContainmentProcedures string                     `gorm:"column:special_containment_procedures" json:"special_containment_procedures"`
	Status                       string                     `gorm:"not null;column:status" json:"status"`
	DiscoveryDate                *time.Time                 `gorm:"type:date;column:discovery_date" json:"discovery_date,omitempty"`
	AssignedResearchers          datatypes.JSONSlice[string] `gorm:"column:assigned_researchers" json:"assigned_researchers"`
	ChamberID                    *uuid.UUID                 `gorm:"type:uuid;index;column:chamber_id" json:"chamber_id,omitempty"`
	CreatedAt                    time.Time                  `gorm:"not null" json:"created_at"`
	UpdatedAt                    time.Time                  `gorm:"not null" json:"updated_at"`
}

func (AnomalyObject) TableName() string {
	return "anomaly_objects"
}

// ObjectWithChamber is the read-side join used by list/detail views. The
// chamber is resolved for display only, not a stored relationship.
type ObjectWithChamber struct {
	AnomalyObject
	Chamber *Chamber `json:"chamber,omitempty"`
}
