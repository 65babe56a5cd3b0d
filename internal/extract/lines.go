package extract

import (
	"billscan/internal/domain"
	"billscan/internal/money"
)

// groupLines batches a page-ordered token stream into visual lines. When
// boxes are present a new line starts on a vertical jump; when the adapter
// supplied no positional data (embedded-text path) a monetary token closes
// the current line, which matches the one-charge-per-line layout of printed
// bills.
func groupLines(tokens []domain.Token) [][]domain.Token {
	var lines [][]domain.Token
	var cur []domain.Token

	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, cur)
			cur = nil
		}
	}

	for i := range tokens {
		tok := tokens[i]
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			if tok.Page != prev.Page {
				flush()
			} else if tok.Box != nil && prev.Box != nil {
				if verticalGap(prev.Box, tok.Box) > 0.6*maxf(prev.Box.H, tok.Box.H) {
					flush()
				}
			}
		}
		cur = append(cur, tok)
		if tok.Box == nil && money.IsMoney(tok.Text) {
			flush()
		}
	}
	flush()
	return lines
}

func verticalGap(a, b *domain.BoundingBox) float64 {
	ca := a.Y + a.H/2
	cb := b.Y + b.H/2
	if ca > cb {
		return ca - cb
	}
	return cb - ca
}
