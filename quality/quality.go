// Package quality computes statistical health metrics over raw entropy
// buffers and classifies them into quality tiers.
//
// Evaluation is total and pure: every buffer, including an empty or
// obviously degenerate one, yields a Report. Deciding whether a tier is
// acceptable belongs to derivation policy, not to this package.
package quality

// Report carries the metric battery for one buffer.
//
// This is a boundary type: it serializes to JSON for CLI output and rides
// inside persisted pool envelopes via the integer-keyed CBOR tags.
type Report struct {
	SizeBytes    int     `json:"sizeBytes" cbor:"1,keyasint"`
	Entropy      float64 `json:"entropyBitsPerByte" cbor:"2,keyasint"`
	ChiSquare    float64 `json:"chiSquare" cbor:"3,keyasint"`
	ChiPValue    float64 `json:"chiPValue" cbor:"4,keyasint"`
	Mean         float64 `json:"mean" cbor:"5,keyasint"`
	MonteCarloPi float64 `json:"monteCarloPi" cbor:"6,keyasint"`
	SerialCorr   float64 `json:"serialCorrelation" cbor:"7,keyasint"`
	Tier         Tier    `json:"tier" cbor:"8,keyasint"`
}

// Evaluate runs the full metric battery over buf.
//
// Deterministic: the same bytes always produce the same Report.
func Evaluate(buf []byte) Report {
	n := len(buf)
	r := Report{SizeBytes: n, Tier: TierPoor}
	if n == 0 {
		return r
	}

	var counts [256]int
	var sum float64
	for _, b := range buf {
		counts[b]++
		sum += float64(b)
	}

	r.Entropy = shannonEntropy(&counts, n)
	r.ChiSquare = chiSquare(&counts, n)
	r.ChiPValue = chiSquareP(r.ChiSquare, 255)
	r.Mean = sum / float64(n)
	r.MonteCarloPi = monteCarloPi(buf)
	r.SerialCorr = serialCorrelation(buf)
	r.Tier = Classify(r.Entropy, r.ChiPValue)
	return r
}
