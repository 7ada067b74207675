package cardiac

import "github.com/kestrel-id/pulsegate/go-engine/internal/vecmath"

// #region segmentation

// segmentBeats cuts the filtered waveform into peak-to-peak windows and
// resamples every beat to the set's median length so they can be compared
// position-wise.
func segmentBeats(filtered []float64, peaks []int) [][]float64 {
	if len(peaks) < 2 {
		return nil
	}

	raw := make([][]float64, 0, len(peaks)-1)
	lengths := make([]float64, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		beat := filtered[peaks[i-1]:peaks[i]]
		if len(beat) < 2 {
			continue
		}
		raw = append(raw, beat)
		lengths = append(lengths, float64(len(beat)))
	}
	if len(raw) == 0 {
		return nil
	}

	target := int(vecmath.Median(lengths))
	if target < 2 {
		target = 2
	}

	beats := make([][]float64, len(raw))
	for i, beat := range raw {
		beats[i] = vecmath.Resample(beat, target)
	}
	return beats
}

// averageBeat averages the resampled beats into one canonical beat shape,
// rotated so index 0 sits at the waveform foot (minimum) and the systolic
// peak falls in the early portion.
func averageBeat(beats [][]float64) []float64 {
	if len(beats) == 0 {
		return nil
	}
	length := len(beats[0])
	avg := make([]float64, length)
	for _, beat := range beats {
		for i, v := range beat {
			avg[i] += v
		}
	}
	for i := range avg {
		avg[i] /= float64(len(beats))
	}
	return rotateToFoot(avg)
}

// rotateToFoot rotates a cyclic beat so it starts at its minimum.
func rotateToFoot(beat []float64) []float64 {
	if len(beat) == 0 {
		return beat
	}
	foot := 0
	for i, v := range beat {
		if v < beat[foot] {
			foot = i
		}
	}
	out := make([]float64, len(beat))
	copy(out, beat[foot:])
	copy(out[len(beat)-foot:], beat[:foot])
	return out
}

// morphologyVariance is the mean per-position variance across the beat set.
// A replayed recording collapses this toward zero.
func morphologyVariance(beats [][]float64) float64 {
	if len(beats) < 2 {
		return 0
	}
	length := len(beats[0])
	column := make([]float64, len(beats))
	var total float64
	for pos := 0; pos < length; pos++ {
		for b, beat := range beats {
			column[b] = beat[pos]
		}
		total += vecmath.Variance(column)
	}
	return total / float64(length)
}

// #endregion segmentation
