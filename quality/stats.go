package quality

import "math"

// shannonEntropy returns the empirical Shannon entropy in bits per byte.
func shannonEntropy(counts *[256]int, n int) float64 {
	var h float64
	total := float64(n)
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// chiSquare returns the chi-square statistic of the byte histogram against
// the uniform expectation n/256 (255 degrees of freedom).
func chiSquare(counts *[256]int, n int) float64 {
	expected := float64(n) / 256.0
	var chi float64
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi
}

// monteCarloPi estimates pi from consecutive non-overlapping byte pairs
// mapped to the unit square (x=b1/255, y=b2/255): 4 * inside / pairs.
// Fewer than one pair yields 0.
func monteCarloPi(buf []byte) float64 {
	pairs := len(buf) / 2
	if pairs == 0 {
		return 0
	}
	inside := 0
	for i := 0; i+1 < len(buf); i += 2 {
		x := float64(buf[i]) / 255.0
		y := float64(buf[i+1]) / 255.0
		if x*x+y*y <= 1.0 {
			inside++
		}
	}
	return 4.0 * float64(inside) / float64(pairs)
}

// serialCorrelation returns the lag-1 serial correlation coefficient with
// wrap-around. Defined as 0 when the variance term vanishes (constant
// buffers have no defined correlation, and classification never depends on
// it).
func serialCorrelation(buf []byte) float64 {
	n := len(buf)
	if n < 2 {
		return 0
	}
	var t1, t2, t3 float64
	for i := 0; i < n; i++ {
		a := float64(buf[i])
		b := float64(buf[(i+1)%n])
		t1 += a * b
		t2 += a
		t3 += a * a
	}
	num := float64(n)*t1 - t2*t2
	den := float64(n)*t3 - t2*t2
	if den == 0 {
		return 0
	}
	return num / den
}
