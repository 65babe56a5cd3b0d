package extract

import (
	"billscan/internal/domain"
)

// mergeBoxes returns the union of the given boxes, or nil when none carry
// positional data (the embedded-text path omits boxes).
func mergeBoxes(boxes []*domain.BoundingBox) *domain.BoundingBox {
	var out *domain.BoundingBox
	for _, b := range boxes {
		if b == nil {
			continue
		}
		if out == nil {
			copied := *b
			out = &copied
			continue
		}
		x2 := maxf(out.X+out.W, b.X+b.W)
		y2 := maxf(out.Y+out.H, b.Y+b.H)
		out.X = minf(out.X, b.X)
		out.Y = minf(out.Y, b.Y)
		out.W = x2 - out.X
		out.H = y2 - out.Y
	}
	return out
}

// provenanceFromTokens decorates an item with the page, union box, and the
// most pessimistic confidence of its source tokens. Page is always set.
func provenanceFromTokens(page int, toks []domain.Token) domain.Provenance {
	boxes := make([]*domain.BoundingBox, 0, len(toks))
	conf := 1.0
	for i := range toks {
		boxes = append(boxes, toks[i].Box)
		if toks[i].Confidence < conf {
			conf = toks[i].Confidence
		}
	}
	if len(toks) == 0 {
		conf = 0
	}
	return domain.Provenance{Page: page, Box: mergeBoxes(boxes), Confidence: conf}
}

// provenanceFromCells is the table-row analogue of provenanceFromTokens.
func provenanceFromCells(page int, cells []*domain.Cell) domain.Provenance {
	boxes := make([]*domain.BoundingBox, 0, len(cells))
	conf := 1.0
	seen := false
	for _, c := range cells {
		if c == nil {
			continue
		}
		seen = true
		boxes = append(boxes, c.Box)
		if c.Confidence < conf {
			conf = c.Confidence
		}
	}
	if !seen {
		conf = 0
	}
	return domain.Provenance{Page: page, Box: mergeBoxes(boxes), Confidence: conf}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
