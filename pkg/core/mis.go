package core

// PowerHeuristic combines two sampling strategies' PDFs with the power-2
// heuristic w = p_a^2 / (p_a^2 + p_b^2), used throughout path tracing and
// BDPT's MIS weighting (spec.md §4.6.1, §4.6.3).
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	if fPdf <= 0 {
		return 0
	}
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic combines two sampling strategies' PDFs linearly; VCM's
// per-vertex d_vcm/d_vc/d_vm bookkeeping (spec.md §4.6.4) is a running sum
// of balance-heuristic ratios.
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	if fPdf <= 0 {
		return 0
	}
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	return f / (f + g)
}

// PowerHeuristicN generalizes PowerHeuristic to combine one numerator PDF
// against a set of competing technique PDFs, as BDPT's full MIS weight does
// when more than two techniques can produce the same path (spec.md §4.6.3
// step 3).
func PowerHeuristicN(pdf float64, others ...float64) float64 {
	if pdf <= 0 {
		return 0
	}
	num := pdf * pdf
	den := num
	for _, o := range others {
		den += o * o
	}
	if den == 0 {
		return 0
	}
	return num / den
}
