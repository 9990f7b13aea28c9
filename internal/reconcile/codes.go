package reconcile

import (
	"unicode/utf8"

	"github.com/esc4n0rx/StockSense/internal/domain/reference"
)

// CodeClass tells which namespace a material code belongs to.
type CodeClass int

const (
	ShortCode CodeClass = iota // internal material number
	LongCode                   // barcode
)

func (c CodeClass) String() string {
	if c == ShortCode {
		return "short"
	}
	return "long"
}

// CodeClassifier decides the namespace of a code. It is the only place the
// short/long policy lives.
type CodeClassifier func(code string) CodeClass

const DefaultShortCodeMaxLen = 6

// ClassifyByLength treats codes of at most maxLen characters as short.
func ClassifyByLength(maxLen int) CodeClassifier {
	return func(code string) CodeClass {
		if utf8.RuneCountInString(code) <= maxLen {
			return ShortCode
		}
		return LongCode
	}
}

// BoxStrategies lists, per class, the keys tried in order when resolving
// box quantities. The first key that matches a code wins.
type BoxStrategies map[CodeClass][]reference.BoxKey

func DefaultBoxStrategies() BoxStrategies {
	return BoxStrategies{
		ShortCode: {reference.KeyMaterial},
		LongCode:  {reference.KeyEAN1, reference.KeyEAN2},
	}
}
