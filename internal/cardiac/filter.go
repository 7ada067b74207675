package cardiac

import "math"

// #region band-pass

// Corner frequencies of the physiological band (30-240 BPM).
const (
	highPassHz = 0.5
	lowPassHz  = 4.0
)

// bandPass suppresses DC drift below 0.5 Hz and motion artifact above 4 Hz
// with cascaded one-pole IIR stages, two passes each for steeper rolloff.
// The exact filter shape is not load-bearing; any spectrally equivalent
// design satisfies the contract.
func bandPass(signal []float64, rate float64) []float64 {
	out := make([]float64, len(signal))
	copy(out, signal)
	out = highPass(out, rate, highPassHz)
	out = highPass(out, rate, highPassHz)
	out = lowPass(out, rate, lowPassHz)
	out = lowPass(out, rate, lowPassHz)
	return out
}

func highPass(signal []float64, rate, cutoff float64) []float64 {
	if len(signal) == 0 {
		return signal
	}
	dt := 1 / rate
	tau := 1 / (2 * math.Pi * cutoff)
	alpha := tau / (tau + dt)

	out := make([]float64, len(signal))
	out[0] = 0
	for i := 1; i < len(signal); i++ {
		out[i] = alpha * (out[i-1] + signal[i] - signal[i-1])
	}
	return out
}

func lowPass(signal []float64, rate, cutoff float64) []float64 {
	if len(signal) == 0 {
		return signal
	}
	dt := 1 / rate
	tau := 1 / (2 * math.Pi * cutoff)
	beta := dt / (tau + dt)

	out := make([]float64, len(signal))
	out[0] = signal[0]
	for i := 1; i < len(signal); i++ {
		out[i] = out[i-1] + beta*(signal[i]-out[i-1])
	}
	return out
}

// #endregion band-pass
