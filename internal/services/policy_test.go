package services

import (
	"testing"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/types"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		role    string
		op      Operation
		allowed bool
	}{
		{types.RoleAdmin, OpChamberList, true},
		{types.RoleAdmin, OpChamberCreate, true},
		{types.RoleAdmin, OpChamberDelete, true},
		{types.RoleAdmin, OpObjectCreate, true},
		{types.RoleAdmin, OpObjectDelete, true},
		{types.RoleAdmin, OpObjectList, true},

		{types.RoleResearcher, OpObjectList, true},
		{types.RoleResearcher, OpObjectView, true},
		{types.RoleResearcher, OpViewOwnDashboard, true},
		{types.RoleResearcher, OpChamberList, false},
		{types.RoleResearcher, OpChamberView, false},
		{types.RoleResearcher, OpChamberCreate, false},
		{types.RoleResearcher, OpChamberEdit, false},
		{types.RoleResearcher, OpChamberDelete, false},
		{types.RoleResearcher, OpObjectCreate, false},
		{types.RoleResearcher, OpObjectEdit, false},
		{types.RoleResearcher, OpObjectDelete, false},

		// Unknown roles and unknown operations both fail closed.
		{"janitor", OpObjectCreate, false},
		{types.RoleResearcher, Operation("site.selfdestruct"), false},
	}

	for _, tc := range cases {
		t.Run(tc.role+"/"+string(tc.op), func(t *testing.T) {
			err := Authorize(tc.role, tc.op)
			if tc.allowed && err != nil {
				t.Fatalf("Authorize(%q, %q): want allowed, got %v", tc.role, tc.op, err)
			}
			if !tc.allowed && !apperr.IsCode(err, apperr.CodeForbidden) {
				t.Fatalf("Authorize(%q, %q): want forbidden, got %v", tc.role, tc.op, err)
			}
		})
	}
}
