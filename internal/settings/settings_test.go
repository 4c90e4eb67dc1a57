package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestMerge_AllDefaults(t *testing.T) {
	eff := Merge(RequestOverrides{}, FactorySettings{})
	assert.Equal(t, 2800.0, eff.SheetWidthMM)
	assert.Equal(t, "weihong", eff.MachineProfile)
	assert.Equal(t, 3, eff.MaxRetries)
}

func TestMerge_FactoryOverridesDefault(t *testing.T) {
	eff := Merge(RequestOverrides{}, FactorySettings{SheetWidthMM: f(3000)})
	assert.Equal(t, 3000.0, eff.SheetWidthMM)
}

func TestMerge_RequestOverridesFactory(t *testing.T) {
	eff := Merge(RequestOverrides{SheetWidthMM: f(2500)}, FactorySettings{SheetWidthMM: f(3000)})
	assert.Equal(t, 2500.0, eff.SheetWidthMM)
}

func TestMerge_UnsetRequestFieldsKeepDefaults(t *testing.T) {
	eff := Merge(RequestOverrides{MachineProfile: s("fanuc")}, FactorySettings{})
	assert.Equal(t, "fanuc", eff.MachineProfile)
	assert.Equal(t, 18000.0, eff.SpindleSpeed)
}
