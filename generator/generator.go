package generator

// Generator is an expression that generates a sequence of string values,
// following some distribution (uniform, NURand, weighted, etc).
type Generator interface {
	// NextString generates the next string in the distribution.
	NextString() string
	// LastString returns the previous string generated by the distribution.
	LastString() string
}
