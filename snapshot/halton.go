package snapshot

// halton returns the index-th element of the van der Corput sequence in base.
func halton(index, base int) float64 {
	result := 0.0
	f := 1 / float64(base)
	for i := index; i > 0; i /= base {
		result += f * float64(i%base)
		f /= float64(base)
	}
	return result
}

// haltonPoint returns the index-th point of the Halton sequence over bases.
func haltonPoint(index int, bases [3]int) [3]float64 {
	return [3]float64{halton(index, bases[0]), halton(index, bases[1]), halton(index, bases[2])}
}
