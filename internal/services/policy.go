package services

import (
	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/types"
)

// Operation names every privileged action the API exposes. The policy is a
// pure gate: it never touches state.
type Operation string

const (
	OpChamberList      Operation = "chamber.list"
	OpChamberView      Operation = "chamber.view"
	OpChamberCreate    Operation = "chamber.create"
	OpChamberEdit      Operation = "chamber.edit"
	OpChamberDelete    Operation = "chamber.delete"
	OpObjectList       Operation = "object.list"
	OpObjectView       Operation = "object.view"
	OpObjectCreate     Operation = "object.create"
	OpObjectEdit       Operation = "object.edit"
	OpObjectDelete     Operation = "object.delete"
	OpViewOwnDashboard Operation = "dashboard.view"
)

var adminOnly = map[Operation]bool{
	OpChamberList:   true,
	OpChamberView:   true,
	OpChamberCreate: true,
	OpChamberEdit:   true,
	OpChamberDelete: true,
	OpObjectCreate:  true,
	OpObjectEdit:    true,
	OpObjectDelete:  true,
}

// Authorize returns nil when the role may perform the operation, otherwise a
// Forbidden error. Unknown operations are treated as admin-only.
func Authorize(role string, op Operation) error {
	restricted, known := adminOnly[op]
	if !known {
		switch op {
		case OpObjectList, OpObjectView, OpViewOwnDashboard:
			return nil
		default:
			restricted = true
		}
	}
	if restricted && !types.IsAdmin(role) {
		return apperr.Forbidden()
	}
	return nil
}
