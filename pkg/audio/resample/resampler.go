// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Carries the last input frame across chunks so streams stay continuous
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64

	// position is measured in frames of the virtual input [lastFrame, input...]
	position   float64
	lastSample []int32 // one sample per channel
	hasLast    bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastSample: make([]int32, channels),
	}
}

// Resample converts input samples to output sample rate using linear interpolation.
// input and output are interleaved; output should hold at least
// OutputSamplesNeeded(len(input)) + channels samples, anything beyond its capacity is dropped.
func (r *Resampler) Resample(input []int32, output []int32) int {
	if len(input) < r.channels {
		return 0
	}

	offset := 0
	if r.hasLast {
		offset = 1
	}
	inputFrames := len(input)/r.channels + offset
	outputFrames := len(output) / r.channels

	frame := func(idx, ch int) int32 {
		if offset == 1 {
			if idx == 0 {
				return r.lastSample[ch]
			}
			idx--
		}
		return input[idx*r.channels+ch]
	}

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(r.position)
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := r.position - float64(inputIdx)
		for ch := 0; ch < r.channels; ch++ {
			s1 := frame(inputIdx, ch)
			s2 := frame(inputIdx+1, ch)
			output[outIdx*r.channels+ch] = int32(float64(s1)*(1.0-frac) + float64(s2)*frac)
		}

		outIdx++
		r.position += r.ratio
	}

	// The final input frame becomes frame 0 of the next chunk
	r.position -= float64(inputFrames - 1)
	if r.position < 0 {
		r.position = 0
	}
	last := len(input)/r.channels - 1
	copy(r.lastSample, input[last*r.channels:(last+1)*r.channels])
	r.hasLast = true

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
	r.hasLast = false
	for i := range r.lastSample {
		r.lastSample[i] = 0
	}
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames)/r.ratio) + 1
	return outputFrames * r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	return inputFrames * r.channels
}
