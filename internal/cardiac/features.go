package cardiac

import (
	"math"

	"github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"
)

// #region morphological

// morphologicalFeatures derives 15 pulse-shape features from the canonical
// averaged beat (foot-aligned): amplitude, dicrotic notch geometry, widths,
// areas, timing ratios and arterial indices.
func morphologicalFeatures(beat []float64, rate float64) []float64 {
	out := make([]float64, 15)
	if len(beat) < 3 {
		return out
	}

	min, peak := beat[0], 0
	for i, v := range beat {
		if v < min {
			min = v
		}
		if v > beat[peak] {
			peak = i
		}
	}
	amp := beat[peak] - min
	duration := float64(len(beat)) / rate

	// Dicrotic notch: local minimum after the systolic peak, followed by
	// the reflected (dicrotic) wave maximum.
	notch, dicrotic := findNotch(beat, peak)

	riseTime := float64(peak) / rate
	fallTime := float64(len(beat)-peak) / rate

	halfLevel := min + amp/2
	halfWidth := 0
	for _, v := range beat {
		if v >= halfLevel {
			halfWidth++
		}
	}

	var sysArea, diaArea float64
	for i, v := range beat {
		if i < peak {
			sysArea += (v - min) / rate
		} else {
			diaArea += (v - min) / rate
		}
	}

	sharpness := 0.0
	if peak > 0 && peak < len(beat)-1 {
		sharpness = 2*beat[peak] - beat[peak-1] - beat[peak+1]
	}

	deltaT := float64(dicrotic-peak) / rate

	out[0] = amp
	out[1] = safeDiv(beat[peak]-beat[notch], amp) // notch depth
	out[2] = float64(halfWidth) / rate            // pulse width at half amplitude
	out[3] = riseTime
	out[4] = fallTime
	out[5] = sysArea
	out[6] = diaArea
	out[7] = sharpness
	out[8] = safeDiv(riseTime, fallTime)          // symmetry
	out[9] = safeDiv(beat[dicrotic]-min, amp)     // augmentation index
	out[10] = safeDiv(beat[dicrotic]-beat[notch], amp) // reflection index
	out[11] = safeDiv(amp, deltaT)                // stiffness index
	out[12] = safeDiv(riseTime, duration)         // crest time
	out[13] = deltaT
	out[14] = safeDiv(beat[len(beat)-1]-min, amp) // end amplitude ratio
	return out
}

// findNotch locates the dicrotic notch (post-peak local minimum) and the
// dicrotic wave crest after it. Falls back to the mid-diastole when the
// notch is not pronounced.
func findNotch(beat []float64, peak int) (notch, dicrotic int) {
	start := peak + 1
	end := peak + (len(beat)-peak)*3/5
	if end <= start {
		mid := (peak + len(beat)) / 2
		if mid >= len(beat) {
			mid = len(beat) - 1
		}
		return mid, mid
	}

	notch = start
	for i := start; i < end; i++ {
		if beat[i] < beat[notch] {
			notch = i
		}
	}

	dicrotic = notch
	for i := notch; i < len(beat); i++ {
		if beat[i] > beat[dicrotic] {
			dicrotic = i
		}
	}
	return notch, dicrotic
}

// #endregion morphological

// #region interval

// Sub-interval fractions of the cardiac cycle. A single optical sensor
// cannot isolate these directly; they are acknowledged estimates derived as
// fixed fractions of the RR interval.
const (
	fracPreEjection   = 0.10
	fracIsoContract   = 0.05
	fracEjection      = 0.30
	fracProtodiastole = 0.04
	fracIsoRelax      = 0.08
	fracFilling       = 0.43
)

// intervalFeatures derives 8 timing features from the RR series.
func intervalFeatures(rr []float64) []float64 {
	out := make([]float64, 8)
	if len(rr) == 0 {
		return out
	}
	meanRR := vecmath.Mean(rr)

	out[0] = meanRR
	out[1] = safeDiv(60, meanRR) // heart rate, BPM
	out[2] = fracPreEjection * meanRR
	out[3] = fracIsoContract * meanRR
	out[4] = fracEjection * meanRR
	out[5] = fracProtodiastole * meanRR
	out[6] = fracIsoRelax * meanRR
	out[7] = fracFilling * meanRR
	return out
}

// #endregion interval

// #region variability

// variabilityFeatures derives 12 HRV statistics from the RR series: time
// domain (SDNN, RMSSD, pNN50), frequency domain (VLF/LF/HF band power and
// ratio), nonlinear (sample entropy, Poincare SD1/SD2) and the triangular
// index.
func variabilityFeatures(rr []float64) []float64 {
	out := make([]float64, 12)
	if len(rr) < 2 {
		return out
	}

	diffs := make([]float64, len(rr)-1)
	var sumSqDiff float64
	nn50 := 0
	for i := 1; i < len(rr); i++ {
		d := rr[i] - rr[i-1]
		diffs[i-1] = d
		sumSqDiff += d * d
		if math.Abs(d) > 0.05 {
			nn50++
		}
	}

	sdnn := vecmath.Std(rr) * 1000
	rmssd := math.Sqrt(sumSqDiff/float64(len(diffs))) * 1000
	pnn50 := float64(nn50) / float64(len(diffs)) * 100

	vlf, lf, hf := rrBandPowers(rr)

	se := vecmath.SampleEntropy(rr, 2, vecmath.DefaultTolerance(rr))
	se = clampFinite(se, 0, 5)

	// Poincare descriptors, in ms.
	varDiff := vecmath.Variance(diffs) * 1e6
	varRR := vecmath.Variance(rr) * 1e6
	sd1 := math.Sqrt(0.5 * varDiff)
	sd2sq := 2*varRR - 0.5*varDiff
	sd2 := 0.0
	if sd2sq > 0 {
		sd2 = math.Sqrt(sd2sq)
	}

	out[0] = sdnn
	out[1] = rmssd
	out[2] = pnn50
	out[3] = vlf
	out[4] = lf
	out[5] = hf
	out[6] = safeDiv(lf, hf)
	out[7] = se
	out[8] = sd1
	out[9] = sd2
	out[10] = safeDiv(sd1, sd2)
	out[11] = triangularIndex(rr)
	return out
}

// rrBandPowers computes VLF/LF/HF power from the spectrum of the de-meaned
// RR series, treating beats as uniform samples at the mean beat rate.
func rrBandPowers(rr []float64) (vlf, lf, hf float64) {
	meanRR := vecmath.Mean(rr)
	if meanRR <= 0 {
		return 0, 0, 0
	}
	dev := make([]float64, len(rr))
	for i, v := range rr {
		dev[i] = v - meanRR
	}
	spectrum := vecmath.MagnitudeSpectrum(dev)
	effRate := 1 / meanRR

	vlf = vecmath.BandPower(spectrum, len(dev), effRate, 0.003, 0.04)
	lf = vecmath.BandPower(spectrum, len(dev), effRate, 0.04, 0.15)
	hf = vecmath.BandPower(spectrum, len(dev), effRate, 0.15, 0.4)
	return vlf, lf, hf
}

// triangularIndex is the RR count divided by the tallest histogram bin,
// standard 1/128 s bin width.
func triangularIndex(rr []float64) float64 {
	const binWidth = 1.0 / 128
	bins := make(map[int]int)
	maxCount := 0
	for _, v := range rr {
		bin := int(v / binWidth)
		bins[bin]++
		if bins[bin] > maxCount {
			maxCount = bins[bin]
		}
	}
	return safeDiv(float64(len(rr)), float64(maxCount))
}

// #endregion variability

// #region spectral

// spectralFeatures derives 8 features from the magnitude spectrum of the
// filtered waveform: dominant frequency, four harmonic ratios, centroid,
// bandwidth and 85% rolloff.
func spectralFeatures(filtered []float64, rate float64) []float64 {
	out := make([]float64, 8)
	spectrum := vecmath.MagnitudeSpectrum(filtered)
	if len(spectrum) < 2 {
		return out
	}
	n := len(filtered)
	binHz := rate / float64(n)

	// Dominant bin, skipping DC.
	dom := 1
	for k := 1; k < len(spectrum); k++ {
		if spectrum[k] > spectrum[dom] {
			dom = k
		}
	}
	f0 := float64(dom) * binHz
	fundPower := spectrum[dom] * spectrum[dom]

	out[0] = f0
	for h := 2; h <= 5; h++ {
		bin := dom * h
		if bin < len(spectrum) {
			out[h-1] = safeDiv(spectrum[bin]*spectrum[bin], fundPower)
		}
	}

	var sumMag, weighted float64
	for k, mag := range spectrum {
		sumMag += mag
		weighted += float64(k) * binHz * mag
	}
	centroid := safeDiv(weighted, sumMag)

	var spread float64
	for k, mag := range spectrum {
		d := float64(k)*binHz - centroid
		spread += d * d * mag
	}

	out[5] = centroid
	out[6] = math.Sqrt(safeDiv(spread, sumMag))
	out[7] = rolloffFrequency(spectrum, binHz, 0.85)
	return out
}

// rolloffFrequency returns the frequency below which the given fraction of
// total spectral power lies.
func rolloffFrequency(spectrum []float64, binHz, fraction float64) float64 {
	var total float64
	for _, mag := range spectrum {
		total += mag * mag
	}
	if total == 0 {
		return 0
	}
	target := fraction * total
	var acc float64
	for k, mag := range spectrum {
		acc += mag * mag
		if acc >= target {
			return float64(k) * binHz
		}
	}
	return float64(len(spectrum)-1) * binHz
}

// #endregion spectral
