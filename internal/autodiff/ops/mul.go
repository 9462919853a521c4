package ops

// mulForward computes a * b.
func mulForward(a, b float64) float64 {
	return a * b
}

// mulBackward computes input gradients for multiplication:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
//
// For a*a both slots receive a*outGrad and the caller accumulates them, which
// yields the expected 2*a*outGrad.
func mulBackward(a, b, outGrad float64) [MaxOperands]float64 {
	return [MaxOperands]float64{b * outGrad, a * outGrad}
}
