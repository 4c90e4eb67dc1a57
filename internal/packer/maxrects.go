package packer

// rect is an axis-aligned free region in sheet space.
type rect struct {
	x, y, w, h float64
}

// maxRectsBin is the maximal-rectangles free-space tracker, ported from
// the teacher's internal/engine/optimizer.go guillotinePacker, with
// best-short-side-fit insertion (the free rect whose smaller leftover side
// is smallest wins), then splitting every overlapping free rect into up to four
// maximal remainder rects (rather than a single guillotine cut), pruning
// any rect fully contained in another.
type maxRectsBin struct {
	free []rect
	kerf float64
}

func newMaxRectsBin(width, height, kerf float64) *maxRectsBin {
	return &maxRectsBin{free: []rect{{0, 0, width, height}}, kerf: kerf}
}

func (b *maxRectsBin) insert(w, h float64) (bool, float64, float64) {
	bestIdx := -1
	bestShortFit := -1.0
	wk, hk := w+b.kerf, h+b.kerf

	for i, r := range b.free {
		if wk <= r.w+0.001 && hk <= r.h+0.001 {
			shortFit := r.w - wk
			if r.h-hk < shortFit {
				shortFit = r.h - hk
			}
			if bestIdx < 0 || shortFit < bestShortFit {
				bestIdx, bestShortFit = i, shortFit
			}
		}
	}
	if bestIdx < 0 {
		return false, 0, 0
	}

	chosen := b.free[bestIdx]
	px, py := chosen.x, chosen.y
	b.split(rect{x: px, y: py, w: wk, h: hk})
	return true, px, py
}

func (b *maxRectsBin) split(placed rect) {
	var next []rect
	for _, r := range b.free {
		if !overlap(r, placed) {
			next = append(next, r)
			continue
		}
		if placed.x > r.x+0.001 {
			next = append(next, rect{r.x, r.y, placed.x - r.x, r.h})
		}
		if placed.x+placed.w < r.x+r.w-0.001 {
			next = append(next, rect{placed.x + placed.w, r.y, (r.x + r.w) - (placed.x + placed.w), r.h})
		}
		if placed.y > r.y+0.001 {
			next = append(next, rect{r.x, r.y, r.w, placed.y - r.y})
		}
		if placed.y+placed.h < r.y+r.h-0.001 {
			next = append(next, rect{r.x, placed.y + placed.h, r.w, (r.y + r.h) - (placed.y + placed.h)})
		}
	}
	b.free = pruneContained(next)
}

func overlap(a, b rect) bool {
	return a.x < b.x+b.w-0.001 && a.x+a.w > b.x+0.001 &&
		a.y < b.y+b.h-0.001 && a.y+a.h > b.y+0.001
}

func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i != j && contains(b, a) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

func contains(outer, inner rect) bool {
	return outer.x <= inner.x+0.001 && outer.y <= inner.y+0.001 &&
		outer.x+outer.w >= inner.x+inner.w-0.001 &&
		outer.y+outer.h >= inner.y+inner.h-0.001
}

// maxRectsPack packs panels (already sorted descending by area) using the
// maximal-rectangles BSSF-style bin, trying the rotated orientation for a
// panel only when allowRotate is set and the unrotated orientation does
// not fit.
func maxRectsPack(panels []PackablePanel, sheetW, sheetH, gap float64, allowRotate bool) SheetLayout {
	bin := newMaxRectsBin(sheetW, sheetH, gap)
	layout := SheetLayout{SheetWidthMM: sheetW, SheetHeightMM: sheetH}

	for _, p := range panels {
		placed, rotated := tryPlaceMaxRects(bin, p, allowRotate)
		if placed == nil {
			layout.Unplaced = append(layout.Unplaced, p)
			continue
		}
		layout.Placed = append(layout.Placed, PlacedPanel{Panel: p, X: placed.x, Y: placed.y, Rotated: rotated})
	}

	layout.UtilizationPercent = utilization(layout.Placed, sheetW, sheetH)
	return layout
}

func tryPlaceMaxRects(bin *maxRectsBin, p PackablePanel, allowRotate bool) (*rect, bool) {
	ok, x, y := bin.insert(p.WidthMM, p.HeightMM)
	if ok {
		return &rect{x, y, p.WidthMM, p.HeightMM}, false
	}
	if canRotate(p, allowRotate) {
		ok, x, y = bin.insert(p.HeightMM, p.WidthMM)
		if ok {
			return &rect{x, y, p.HeightMM, p.WidthMM}, true
		}
	}
	return nil, false
}
