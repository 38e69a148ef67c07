package decode

import (
	"gonum.org/v1/gonum/stat"
)

// SceneStatistics returns the mean and standard deviation of the normalized
// infrared intensities in samples. scratch is reused when it is large enough.
func SceneStatistics(samples []uint16, scratch []float64) (mean, std float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	if cap(scratch) < len(samples) {
		scratch = make([]float64, len(samples))
	}
	scratch = scratch[:len(samples)]
	for i, s := range samples {
		scratch[i] = float64(s) / float64(infraredSourceMax)
	}
	if len(scratch) == 1 {
		return scratch[0], 0
	}
	return stat.MeanStdDev(scratch, nil)
}
