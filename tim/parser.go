package tim

// Parser decodes a complete image held in memory.
type Parser interface {
	Name() string
	Parse(b []byte) (Image, error)
}

// TIMParser parses standard TIM images.
type TIMParser struct{}

// Name returns "TIM"
func (TIMParser) Name() string {
	return "TIM"
}

// Parse implements Parser using ParseTIM
func (TIMParser) Parse(b []byte) (Image, error) {
	t, err := ParseTIM(b)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DPParser parses fixed layout DP images.
type DPParser struct{}

// Name returns "DP"
func (DPParser) Name() string {
	return "DP"
}

// Parse implements Parser using ParseDP
func (DPParser) Parse(b []byte) (Image, error) {
	d, err := ParseDP(b)
	if err != nil {
		return nil, err
	}
	return d, nil
}
