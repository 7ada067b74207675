// Package vecmath provides the vector and signal primitives shared by the
// modality engines: cosine similarity, weighted concatenation, secure
// zeroing, sample entropy, peak detection and a direct DFT magnitude
// spectrum. All values are float64.
package vecmath

import (
	"fmt"
	"math"
)

// #region errors

// DimensionError reports a length mismatch between two compared vectors.
// It indicates a caller bug, never a biometric outcome.
type DimensionError struct {
	A int
	B int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: %d vs %d", e.A, e.B)
}

// #endregion errors

// #region cosine

// CosineSimilarity returns dot(a,b)/(|a|·|b|) in [-1,1].
// Returns 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{A: len(a), B: len(b)}
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0, nil
	}
	return dot / denom, nil
}

// #endregion cosine

// #region combine

// Weighted pairs a vector with its fusion weight.
type Weighted struct {
	Vector []float64
	Weight float64
}

// WeightedCombine concatenates the inputs in order, pre-multiplying each
// vector's values by its weight. The result length is the sum of the input
// lengths; callers are responsible for consistent ordering.
func WeightedCombine(parts []Weighted) []float64 {
	total := 0
	for _, p := range parts {
		total += len(p.Vector)
	}
	out := make([]float64, 0, total)
	for _, p := range parts {
		for _, v := range p.Vector {
			out = append(out, v*p.Weight)
		}
	}
	return out
}

// #endregion combine

// #region zero

// Zero overwrites every element with 0. Called on every transient live
// vector after comparison and on the enrollment vector before deletion.
func Zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

// #endregion zero

// #region norm

// Norm returns the L2 norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// #endregion norm

// #region sample-entropy

// DefaultTolerance returns the conventional sample-entropy tolerance band,
// 0.2 times the standard deviation of the signal.
func DefaultTolerance(signal []float64) float64 {
	return 0.2 * Std(signal)
}

// SampleEntropy computes SampEn(m, r): -ln(A/B) where B counts template
// matches of length m and A of length m+1 under Chebyshev tolerance r,
// self-matches excluded. Returns +Inf when no m-length matches exist.
// Purely regular signals score near 0, purely random ones high.
func SampleEntropy(signal []float64, m int, r float64) float64 {
	n := len(signal)
	if n <= m+1 {
		return math.Inf(1)
	}

	count := func(length int) int {
		matches := 0
		for i := 0; i+length <= n; i++ {
			for j := i + 1; j+length <= n; j++ {
				ok := true
				for k := 0; k < length; k++ {
					if math.Abs(signal[i+k]-signal[j+k]) > r {
						ok = false
						break
					}
				}
				if ok {
					matches++
				}
			}
		}
		return matches
	}

	b := count(m)
	if b == 0 {
		return math.Inf(1)
	}
	a := count(m + 1)
	if a == 0 {
		return math.Inf(1)
	}
	return -math.Log(float64(a) / float64(b))
}

// ApproxEntropy computes ApEn(m, r) via the Pincus formulation
// (self-matches included, so always finite).
func ApproxEntropy(signal []float64, m int, r float64) float64 {
	n := len(signal)
	if n <= m+1 {
		return 0
	}

	phi := func(length int) float64 {
		total := n - length + 1
		sum := 0.0
		for i := 0; i < total; i++ {
			matches := 0
			for j := 0; j < total; j++ {
				ok := true
				for k := 0; k < length; k++ {
					if math.Abs(signal[i+k]-signal[j+k]) > r {
						ok = false
						break
					}
				}
				if ok {
					matches++
				}
			}
			sum += math.Log(float64(matches) / float64(total))
		}
		return sum / float64(total)
	}

	return phi(m) - phi(m+1)
}

// #endregion sample-entropy

// #region peaks

// FindPeaks returns indices of local maxima exceeding
// thresholdRatio·max(signal), enforcing a minimum sample gap between
// accepted peaks. The earliest peak of any too-close cluster wins.
func FindPeaks(signal []float64, minDistance int, thresholdRatio float64) []int {
	if len(signal) < 3 {
		return nil
	}
	maxVal := signal[0]
	for _, v := range signal[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	threshold := thresholdRatio * maxVal

	var peaks []int
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] <= signal[i-1] || signal[i] <= signal[i+1] {
			continue
		}
		if signal[i] < threshold {
			continue
		}
		if len(peaks) > 0 && i-peaks[len(peaks)-1] < minDistance {
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}

// #endregion peaks

// #region spectrum

// MagnitudeSpectrum computes the discrete Fourier magnitude spectrum of the
// signal over the first half of bins. Direct evaluation, no FFT; bin k maps
// to frequency k·rate/len(signal).
func MagnitudeSpectrum(signal []float64) []float64 {
	n := len(signal)
	if n < 2 {
		return nil
	}
	half := n / 2
	spectrum := make([]float64, half)
	for k := 0; k < half; k++ {
		var re, im float64
		for t, v := range signal {
			angle := 2 * math.Pi * float64(k) * float64(t) / float64(n)
			re += v * math.Cos(angle)
			im -= v * math.Sin(angle)
		}
		spectrum[k] = math.Sqrt(re*re + im*im)
	}
	return spectrum
}

// BandPower sums spectrum power (magnitude squared) over bins whose
// frequency falls in [lo, hi). n is the original signal length, rate its
// sample rate in Hz.
func BandPower(spectrum []float64, n int, rate, lo, hi float64) float64 {
	var power float64
	for k, mag := range spectrum {
		freq := float64(k) * rate / float64(n)
		if freq >= lo && freq < hi {
			power += mag * mag
		}
	}
	return power
}

// #endregion spectrum

// #region statistics

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// Variance returns the population variance.
func Variance(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	mean := Mean(v)
	var sum float64
	for _, x := range v {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(v))
}

// Std returns the population standard deviation.
func Std(v []float64) float64 {
	return math.Sqrt(Variance(v))
}

// RMS returns the root mean square.
func RMS(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(v)))
}

// Skewness returns the standardized third moment, 0 when the signal is flat.
func Skewness(v []float64) float64 {
	std := Std(v)
	if len(v) == 0 || std == 0 {
		return 0
	}
	mean := Mean(v)
	var sum float64
	for _, x := range v {
		d := (x - mean) / std
		sum += d * d * d
	}
	return sum / float64(len(v))
}

// Kurtosis returns the excess kurtosis, 0 when the signal is flat.
func Kurtosis(v []float64) float64 {
	std := Std(v)
	if len(v) == 0 || std == 0 {
		return 0
	}
	mean := Mean(v)
	var sum float64
	for _, x := range v {
		d := (x - mean) / std
		sum += d * d * d * d
	}
	return sum/float64(len(v)) - 3
}

// Median returns the middle value (mean of the two middle values for even
// lengths) without modifying v.
func Median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := make([]float64, len(v))
	copy(sorted, v)
	insertionSort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Percentile returns the p-th percentile (0-100) by nearest-rank with
// linear interpolation, without modifying v.
func Percentile(v []float64, p float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := make([]float64, len(v))
	copy(sorted, v)
	insertionSort(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Correlation returns the Pearson correlation of a and b, 0 when either is
// flat or lengths differ.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	meanA, meanB := Mean(a), Mean(b)
	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// Autocorrelation returns the normalized autocorrelation of v at the given
// lag, 0 when the lag is out of range or the signal is flat.
func Autocorrelation(v []float64, lag int) float64 {
	if lag <= 0 || lag >= len(v) {
		return 0
	}
	mean := Mean(v)
	var num, denom float64
	for i := range v {
		d := v[i] - mean
		denom += d * d
	}
	if denom == 0 {
		return 0
	}
	for i := 0; i < len(v)-lag; i++ {
		num += (v[i] - mean) * (v[i+lag] - mean)
	}
	return num / denom
}

func insertionSort(v []float64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

// #endregion statistics

// #region resample

// Resample linearly interpolates signal to the given length.
func Resample(signal []float64, length int) []float64 {
	if length <= 0 || len(signal) == 0 {
		return nil
	}
	out := make([]float64, length)
	if len(signal) == 1 {
		for i := range out {
			out[i] = signal[0]
		}
		return out
	}
	scale := float64(len(signal)-1) / float64(length-1)
	if length == 1 {
		out[0] = signal[0]
		return out
	}
	for i := range out {
		pos := float64(i) * scale
		lo := int(math.Floor(pos))
		hi := lo + 1
		if hi >= len(signal) {
			out[i] = signal[len(signal)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = signal[lo]*(1-frac) + signal[hi]*frac
	}
	return out
}

// #endregion resample

// #region finite

// AllFinite reports whether every element is finite.
func AllFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// #endregion finite
