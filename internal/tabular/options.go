package tabular

const (
	DefaultDelimiter = ','
	// ShortestPrecision formats floats with the fewest digits that round-trip.
	ShortestPrecision = -1
)

type Options struct {
	Delimiter rune
	Precision int
}

func DefaultOptions() Options {
	return Options{
		Delimiter: DefaultDelimiter,
		Precision: ShortestPrecision,
	}
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return DefaultDelimiter
	}
	return o.Delimiter
}

func (o Options) precision() int {
	if o.Precision < 0 {
		return ShortestPrecision
	}
	return o.Precision
}
