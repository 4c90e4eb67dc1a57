package packer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack_EmptyPanelsIsSuccessAtZeroUtilization(t *testing.T) {
	layout, err := Pack(nil, 2800, 2070, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, layout.UtilizationPercent)
	assert.Empty(t, layout.Placed)
}

func TestPack_InvalidSheetDimensionsRejected(t *testing.T) {
	_, err := Pack([]PackablePanel{{WidthMM: 100, HeightMM: 100}}, 0, 2070, 4)
	assert.Error(t, err)

	_, err = Pack([]PackablePanel{{WidthMM: 100, HeightMM: 100}}, 2800, 2070, -1)
	assert.Error(t, err)
}

func TestPack_PanelLargerThanSheetIsUnplaced(t *testing.T) {
	layout, err := Pack([]PackablePanel{{ID: "a", WidthMM: 3000, HeightMM: 3000}}, 2800, 2070, 4)
	require.NoError(t, err)
	assert.Len(t, layout.Unplaced, 1)
	assert.Empty(t, layout.Placed)
}

func TestPack_DXFPackingScenario(t *testing.T) {
	panels := []PackablePanel{
		{ID: "1", WidthMM: 720, HeightMM: 560},
		{ID: "2", WidthMM: 720, HeightMM: 560},
		{ID: "3", WidthMM: 720, HeightMM: 560},
		{ID: "4", WidthMM: 720, HeightMM: 560},
		{ID: "5", WidthMM: 568, HeightMM: 560},
		{ID: "6", WidthMM: 568, HeightMM: 560},
	}
	layout, err := Pack(panels, 2800, 2070, 4)
	require.NoError(t, err)
	assert.Empty(t, layout.Unplaced)
	assert.Len(t, layout.Placed, 6)
	assert.Greater(t, layout.UtilizationPercent, 25.0)
}

func TestPack_NoOverlapAndWithinBounds(t *testing.T) {
	panels := []PackablePanel{
		{ID: "1", WidthMM: 900, HeightMM: 600},
		{ID: "2", WidthMM: 900, HeightMM: 600},
		{ID: "3", WidthMM: 500, HeightMM: 400},
		{ID: "4", WidthMM: 500, HeightMM: 400},
	}
	layout, err := Pack(panels, 1800, 1200, 4)
	require.NoError(t, err)

	for i, p := range layout.Placed {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.X+p.W(), layout.SheetWidthMM+0.01)
		assert.LessOrEqual(t, p.Y+p.H(), layout.SheetHeightMM+0.01)

		for j, q := range layout.Placed {
			if i == j {
				continue
			}
			overlapsXY := p.X < q.X+q.W() && p.X+p.W() > q.X && p.Y < q.Y+q.H() && p.Y+p.H() > q.Y
			assert.False(t, overlapsXY, "panels %d and %d overlap", i, j)
		}
	}
}

func TestPack_GrainConstrainedPanelNeverRotates(t *testing.T) {
	panels := []PackablePanel{
		{ID: "1", WidthMM: 2000, HeightMM: 100, Grain: GrainHorizontal},
	}
	layout, err := Pack(panels, 2800, 2070, 4)
	require.NoError(t, err)
	require.Len(t, layout.Placed, 1)
	assert.False(t, layout.Placed[0].Rotated)
}
