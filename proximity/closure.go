// proximity/closure.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proximity

// RateOfClosure returns the sample-to-sample change in feet of the
// separation of a and b over the encounter, widened by up to shift
// samples on each side. Positive values mean the aircraft were closing. The window
// is clipped at the ends of either flight; if that leaves fewer than
// shift samples on a side, the series for the clipped window is returned
// along with a *ClosureWindowError.
func RateOfClosure(a, b *Trajectory, enc Encounter, shift int) ([]float64, error) {
	before := min(shift, enc.Start1, enc.Start2)
	after := min(shift, a.Len()-1-enc.End1, b.Len()-1-enc.End2)
	before, after = max(before, 0), max(after, 0)

	i, j := enc.Start1-before, enc.Start2-before
	endI, endJ := enc.End1+after, enc.End2+after

	var dists []float64
	for i <= endI && j <= endJ {
		ta, oka := a.epochAt(i)
		tb, okb := b.epochAt(j)
		if !oka || (okb && ta < tb) {
			i++
			continue
		}
		if !okb || tb < ta {
			j++
			continue
		}
		dists = append(dists, separation(a, b, i, j))
		i++
		j++
	}

	var roc []float64
	for k := 0; k+1 < len(dists); k++ {
		roc = append(roc, dists[k]-dists[k+1])
	}

	if before < shift || after < shift {
		return roc, &ClosureWindowError{Want: shift, Before: before, After: after}
	}
	return roc, nil
}
