// ABOUTME: Channel remixing for interleaved samples
// ABOUTME: Converts between mono and stereo layouts
package resample

// Remix converts interleaved samples from one channel count to another.
// Mono is duplicated on upmix; downmix averages the source channels.
func Remix(samples []int32, from, to int) []int32 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}

	frames := len(samples) / from
	out := make([]int32, frames*to)

	for i := 0; i < frames; i++ {
		frame := samples[i*from : (i+1)*from]
		if from == 1 {
			for ch := 0; ch < to; ch++ {
				out[i*to+ch] = frame[0]
			}
			continue
		}

		var sum int64
		for _, s := range frame {
			sum += int64(s)
		}
		mixed := int32(sum / int64(from))
		for ch := 0; ch < to; ch++ {
			if to > 1 && ch < from {
				out[i*to+ch] = frame[ch]
			} else {
				out[i*to+ch] = mixed
			}
		}
	}
	return out
}
