package psxtim

import "github.com/bodgit/psxtim/tim"

// Kind is the container an image was decoded from.
type Kind int

const (
	KindTIM Kind = iota + 1
	KindDP
)

func (k Kind) String() string {
	switch k {
	case KindTIM:
		return "TIM"
	case KindDP:
		return "DP"
	default:
		return "unknown"
	}
}

func (k Kind) parser() tim.Parser {
	switch k {
	case KindDP:
		return tim.DPParser{}
	default:
		return tim.TIMParser{}
	}
}

func kindOf(ext string) (Kind, bool) {
	switch ext {
	case ".tim":
		return KindTIM, true
	case ".dp":
		return KindDP, true
	default:
		return 0, false
	}
}
