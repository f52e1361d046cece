//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEquipmentCreate() EquipmentCreate {
	return EquipmentCreate{
		Name:                "Lathe 3",
		Category:            "Machining",
		UsedByUserID:        "u-1",
		MaintenanceTeamID:   "team-1",
		DefaultTechnicianID: "u-2",
	}
}

func TestEquipmentCreate_Validate(t *testing.T) {
	t.Run("defaults used by type", func(t *testing.T) {
		req := validEquipmentCreate()
		require.NoError(t, req.Validate())
		assert.Equal(t, UsedByEmployee, req.UsedByType)
	})

	tests := []struct {
		name   string
		mutate func(*EquipmentCreate)
		errMsg string
	}{
		{"missing name", func(r *EquipmentCreate) { r.Name = " " }, "name"},
		{"missing category", func(r *EquipmentCreate) { r.Category = "" }, "category"},
		{"missing owner reported first", func(r *EquipmentCreate) {
			r.UsedByUserID = ""
			r.DefaultTechnicianID = ""
		}, "used_by_user_id"},
		{"missing team", func(r *EquipmentCreate) { r.MaintenanceTeamID = "" }, "maintenance_team_id"},
		{"bad used by type", func(r *EquipmentCreate) { r.UsedByType = "ROBOT" }, "used_by_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validEquipmentCreate()
			tt.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSelectableEquipment(t *testing.T) {
	items := []Equipment{
		{ID: "a", Name: "Press"},
		{ID: "b", Name: "Old drill", IsScrapped: true},
		{ID: "c", Name: "Forklift"},
	}
	got := SelectableEquipment(items)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	assert.NotNil(t, SelectableEquipment(nil))
}
