package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furnicam/furnicam/internal/settings"
)

func defaultEff() settings.EffectiveSettings {
	return settings.Merge(settings.RequestOverrides{}, settings.FactorySettings{})
}

func TestCalculate_WallCabinetHappyPath(t *testing.T) {
	spec := CabinetSpec{Type: TypeWall, WidthMM: 600, HeightMM: 720, DepthMM: 300, ThicknessMM: 16, ShelfCount: 2}
	res, err := Calculate(spec, defaultEff())
	require.NoError(t, err)
	assert.Len(t, res.Panels, 6)
	assert.Empty(t, res.Warnings)
}

func TestCalculate_ShelfSagWarning(t *testing.T) {
	spec := CabinetSpec{Type: TypeWall, WidthMM: 800, HeightMM: 720, DepthMM: 300, ThicknessMM: 16, ShelfCount: 1}
	res, err := Calculate(spec, defaultEff())
	require.NoError(t, err)
	found := false
	for _, w := range res.Warnings {
		if containsAll(w, "max_shelf_span", "768") {
			found = true
		}
	}
	assert.True(t, found, "expected a shelf-span warning, got %v", res.Warnings)
}

func TestCalculate_BaseSinkAlwaysWarns(t *testing.T) {
	spec := CabinetSpec{Type: TypeBaseSink, WidthMM: 600, HeightMM: 720, DepthMM: 600, ThicknessMM: 16}
	res, err := Calculate(spec, defaultEff())
	require.NoError(t, err)
	assert.Contains(t, res.Warnings, "plumbing cutout required under sink; verify drain/supply clearance")
	assert.Len(t, res.Panels, 6) // 2 sides + 4 tie-beams, no bottom
}

func TestCalculate_TallCabinetWallMountWarning(t *testing.T) {
	spec := CabinetSpec{Type: TypeTall, WidthMM: 600, HeightMM: 2200, DepthMM: 600, ThicknessMM: 16}
	res, err := Calculate(spec, defaultEff())
	require.NoError(t, err)
	found := false
	for _, w := range res.Warnings {
		if containsAll(w, "wall mounting") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCalculate_InvalidDimensionsRejected(t *testing.T) {
	spec := CabinetSpec{Type: TypeWall, WidthMM: -1, HeightMM: 720, DepthMM: 300, ThicknessMM: 16}
	_, err := Calculate(spec, defaultEff())
	assert.Error(t, err)
}

func TestCalculate_UnknownTypeRejected(t *testing.T) {
	spec := CabinetSpec{Type: "shed", WidthMM: 600, HeightMM: 720, DepthMM: 300, ThicknessMM: 16}
	_, err := Calculate(spec, defaultEff())
	assert.Error(t, err)
}

func TestCalculate_DrawerPanels(t *testing.T) {
	spec := CabinetSpec{Type: TypeDrawer, WidthMM: 600, HeightMM: 720, DepthMM: 500, ThicknessMM: 16, DrawerCount: 2}
	res, err := Calculate(spec, defaultEff())
	require.NoError(t, err)
	// 2 sides + bottom + 2 tie-beams + 2 drawers * 5 panels
	assert.Len(t, res.Panels, 2+1+2+2*5)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !stringsContains(s, sub) {
			return false
		}
	}
	return true
}

func stringsContains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
