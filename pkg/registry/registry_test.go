package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadProjectRegistry(t *testing.T) *ActivityRegistry {
	t.Helper()
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	return reg
}

func TestLoadRegistry(t *testing.T) {
	reg := loadProjectRegistry(t)

	assert.NotEmpty(t, reg.Version)
	assert.ElementsMatch(t,
		[]string{"resolve-location", "search-cabs", "hold-cab", "notify-booking"},
		reg.TaskTypes())
}

func TestRegistryValidates(t *testing.T) {
	reg := loadProjectRegistry(t)
	assert.NoError(t, reg.Validate())
}

func TestFindByTaskType(t *testing.T) {
	reg := loadProjectRegistry(t)

	activity, ok := reg.FindByTaskType("hold-cab")
	require.True(t, ok)
	assert.Equal(t, "trip.cabs.hold", activity.ID)

	_, ok = reg.FindByTaskType("no-such-task")
	assert.False(t, ok)
}

func TestValidatePayload(t *testing.T) {
	reg := loadProjectRegistry(t)

	valid := map[string]interface{}{
		"role":  "source",
		"query": "MG Road",
	}
	assert.NoError(t, reg.ValidatePayload("resolve-location", valid))

	invalid := map[string]interface{}{
		"role": "midpoint",
	}
	assert.Error(t, reg.ValidatePayload("resolve-location", invalid))

	missing := map[string]interface{}{
		"query": "MG Road",
	}
	assert.Error(t, reg.ValidatePayload("resolve-location", missing))

	// Unregistered task types are not validated.
	assert.NoError(t, reg.ValidatePayload("no-such-task", map[string]interface{}{}))
}

func TestValidateRejectsDuplicateTaskTypes(t *testing.T) {
	reg := &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "a.b.c", TaskType: "same-task"},
			{ID: "a.b.d", TaskType: "same-task"},
		},
	}
	assert.ErrorContains(t, reg.Validate(), "same-task")
}

func TestLoadRegistryBadFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadRegistry(bad)
	assert.Error(t, err)
}
