package ops

import "math"

// powForward computes a ** n with math.Pow semantics. Domain errors (a
// negative base with a non-integer exponent, zero to a negative power)
// come back as NaN or ±Inf and propagate to later nodes.
func powForward(a, n float64) float64 {
	return math.Pow(a, n)
}

// powBackward computes d(a**n)/da = n * a**(n-1), scaled by outGrad.
func powBackward(a, n, outGrad float64) [MaxOperands]float64 {
	return [MaxOperands]float64{n * math.Pow(a, n-1) * outGrad}
}
