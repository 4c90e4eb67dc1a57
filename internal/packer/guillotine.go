package packer

// guillotineBin packs with true end-to-end cuts only: every split divides
// a free rectangle into exactly two children along one straight line
// spanning the full rectangle, so every cut can be made on a format saw.
// This is new relative to the teacher (whose own packer is already
// maximal-rects, see maxrects.go) — required because the spec calls for
// two genuinely distinct strategies.
type guillotineBin struct {
	free []rect
	kerf float64
}

func newGuillotineBin(width, height, kerf float64) *guillotineBin {
	return &guillotineBin{free: []rect{{0, 0, width, height}}, kerf: kerf}
}

// insert places a piece using best-short-side-fit: the free rect whose
// leftover shorter side is smallest wins, then is split by one guillotine
// cut: horizontally when the leftover width is no larger than the leftover
// height, vertically otherwise.
func (b *guillotineBin) insert(w, h float64) (bool, float64, float64) {
	wk, hk := w+b.kerf, h+b.kerf

	bestIdx := -1
	bestScore := -1.0
	for i, r := range b.free {
		if wk <= r.w+0.001 && hk <= r.h+0.001 {
			leftoverW := r.w - wk
			leftoverH := r.h - hk
			score := leftoverW
			if leftoverH < score {
				score = leftoverH
			}
			if bestIdx < 0 || score < bestScore {
				bestIdx, bestScore = i, score
			}
		}
	}
	if bestIdx < 0 {
		return false, 0, 0
	}

	r := b.free[bestIdx]
	b.free = append(b.free[:bestIdx], b.free[bestIdx+1:]...)

	leftoverW := r.w - wk
	leftoverH := r.h - hk

	var a, c rect
	if leftoverW <= leftoverH {
		// split horizontally: a top strip spanning the full width,
		// and a right strip limited to the placed piece's height.
		a = rect{r.x, r.y + hk, r.w, r.h - hk}
		c = rect{r.x + wk, r.y, r.w - wk, hk}
	} else {
		// split vertically: a right strip spanning the full height,
		// and a top strip limited to the placed piece's width.
		a = rect{r.x + wk, r.y, r.w - wk, r.h}
		c = rect{r.x, r.y + hk, wk, r.h - hk}
	}
	for _, n := range []rect{a, c} {
		if n.w > 0.001 && n.h > 0.001 {
			b.free = append(b.free, n)
		}
	}

	return true, r.x, r.y
}

// guillotinePack packs panels (already sorted descending by area) with
// the pure guillotine bin, trying the rotated orientation for a panel only
// when allowRotate is set and the unrotated orientation does not fit.
func guillotinePack(panels []PackablePanel, sheetW, sheetH, gap float64, allowRotate bool) SheetLayout {
	bin := newGuillotineBin(sheetW, sheetH, gap)
	layout := SheetLayout{SheetWidthMM: sheetW, SheetHeightMM: sheetH}

	for _, p := range panels {
		ok, x, y := bin.insert(p.WidthMM, p.HeightMM)
		rotated := false
		if !ok && canRotate(p, allowRotate) {
			ok, x, y = bin.insert(p.HeightMM, p.WidthMM)
			rotated = true
		}
		if !ok {
			layout.Unplaced = append(layout.Unplaced, p)
			continue
		}
		layout.Placed = append(layout.Placed, PlacedPanel{Panel: p, X: x, Y: y, Rotated: rotated})
	}

	layout.UtilizationPercent = utilization(layout.Placed, sheetW, sheetH)
	return layout
}
