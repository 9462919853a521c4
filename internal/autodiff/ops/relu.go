package ops

// reluForward computes max(0, a). NaN stays NaN.
func reluForward(a float64) float64 {
	if a < 0 {
		return 0
	}
	return a
}

// reluBackward passes outGrad through when the output is positive.
//
// The test is on the output, not the input: at exactly a == 0 the output is
// 0 and the gradient is 0.
func reluBackward(out, outGrad float64) [MaxOperands]float64 {
	if out > 0 {
		return [MaxOperands]float64{outGrad}
	}
	return [MaxOperands]float64{0}
}
