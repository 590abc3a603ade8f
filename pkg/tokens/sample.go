package tokens

import (
	"math"
	"unicode/utf8"
)

const (
	DefaultSampleThreshold = 4 << 20
	DefaultSampleSize      = 256 << 10
)

// EstimateSampled counts a prefix of text and extrapolates linearly when
// text is longer than threshold bytes. The second result reports whether
// the figure is extrapolated. A non-positive threshold disables sampling.
func EstimateSampled(est Estimator, text string, threshold, sample int) (int, bool) {
	if threshold <= 0 || len(text) <= threshold || sample <= 0 || sample >= len(text) {
		return est.Estimate(text), false
	}
	cut := sample
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == 0 {
		return est.Estimate(text), false
	}
	units := est.Estimate(text[:cut])
	return int(math.Ceil(float64(units) * float64(len(text)) / float64(cut))), true
}
