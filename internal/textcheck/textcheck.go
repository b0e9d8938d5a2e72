// Package textcheck decides whether a tag string is readable text or the
// residue of a mis-decoded legacy encoding.
package textcheck

import (
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
)

// maxSymbolRun is the longest tolerated run of consecutive runes that are
// neither letters, numbers nor allowed punctuation.
const maxSymbolRun = 2

// deniedRunes are characters that almost only show up in titles after a
// GBK/Big5 tag has been read as Latin-1 (or similar).
var deniedRunes = []rune{
	// Latin-1 supplement letters
	'Ä', 'Å', 'Æ', 'Ç', 'È', 'É', 'Ê', 'Ë', 'Ì', 'Í', 'Î', 'Ï',
	'Ð', 'Ñ', 'Ò', 'Ó', 'Ô', 'Õ', 'Ö', '×', 'Ø', 'Ù', 'Ú', 'Û',
	'Ü', 'Ý', 'Þ', 'ß', 'à', 'á', 'â', 'ã', 'ä', 'å', 'æ', 'ç',
	'è', 'é', 'ê', 'ë', 'ì', 'í', 'î', 'ï', 'ð', 'ñ', 'ò', 'ó',
	'ô', 'õ', 'ö', '÷', 'ø', 'ù', 'ú', 'û', 'ü', 'ý', 'þ', 'ÿ',

	// Latin-1 symbols
	'¡', '¢', '£', '¤', '¥', '¦', '§', '¨', '©', 'ª', '«', '¬',
	'®', '¯', '°', '±', '²', '³', '´', 'µ', '¶', '·', '¸', '¹',
	'º', '»', '¼', '½', '¾', '¿',

	// box drawing
	'╈', '╉', '╊', '╋', '═', '║', '╒', '╓', '╔', '╕', '╖', '╗',
	'╘', '╙', '╚', '╛', '╜', '╝', '╞', '╟', '╠', '╡', '╢', '╣',
	'╤', '╥', '╦', '╧', '╨', '╩', '╪', '╫', '╬',

	// punctuation and currency
	'¤', '¦', '¨', '¯', '´', '¸', '¹', 'º', '¼', '½', '¾',
	'‗', '―', '‖', '‰', '※', '‹', '›', '‼', '‾', '⁄', '⁊',
	'₧', '₪', '₫', '€', '₭', '₮', '₯', '₰', '₱', '₲', '₳', '₴',
	'₵', '₶', '₷', '₸', '₹', '₺', '₻', '₼', '₽', '₾', '₿',

	// control characters other than \t \n \r
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x0b, 0x0c, 0x0e, 0x0f, 0x10, 0x11, 0x12,
	0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0x19, 0x1a,
	0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x7f,
}

// allowedPunctuation never counts toward a symbol run.
var allowedPunctuation = map[rune]struct{}{
	'-': {}, '(': {}, ')': {}, '[': {}, ']': {}, '&': {},
	'.': {}, '\'': {}, ',': {}, ' ': {}, '_': {}, '+': {},
}

var defaultValidator = New()

// IsValid reports whether text looks like human-readable text using the
// built-in denylist.
func IsValid(text string) bool {
	return defaultValidator.IsValid(text)
}

// DeniedRunes returns a copy of the built-in denylist.
func DeniedRunes() []rune {
	out := make([]rune, len(deniedRunes))
	copy(out, deniedRunes)
	return out
}

// Option customizes a Validator.
type Option func(*Validator)

// WithExtraDenied adds runes to the denylist, e.g. for locale-specific
// mojibake patterns.
func WithExtraDenied(runes ...rune) Option {
	return func(v *Validator) {
		for _, r := range runes {
			v.denied[r] = struct{}{}
		}
	}
}

// Validator classifies strings as valid text or garbled.
type Validator struct {
	denied map[rune]struct{}
}

// New builds a Validator seeded with the built-in denylist.
func New(opts ...Option) *Validator {
	v := &Validator{denied: make(map[rune]struct{}, len(deniedRunes))}
	for _, r := range deniedRunes {
		v.denied[r] = struct{}{}
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsValid reports whether text is non-blank, survives a UTF-8 round trip,
// contains no denied rune and has no run of more than two disallowed symbols.
func (v *Validator) IsValid(text string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if isBlank(text) {
		return false
	}
	if !roundTrips(text) {
		return false
	}
	if v.containsDenied(text) {
		return false
	}
	return !hasSymbolRun(text)
}

func isBlank(text string) bool {
	for _, r := range text {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// roundTrips encodes and decodes text as UTF-8. Ill-formed input is replaced
// with U+FFFD on the way through, so it never comes back unchanged.
func roundTrips(text string) bool {
	encoded, err := xunicode.UTF8.NewEncoder().String(text)
	if err != nil {
		return false
	}
	decoded, err := xunicode.UTF8.NewDecoder().String(encoded)
	if err != nil {
		return false
	}
	return decoded == text
}

func (v *Validator) containsDenied(text string) bool {
	for _, r := range text {
		if _, ok := v.denied[r]; ok {
			return true
		}
	}
	return false
}

func hasSymbolRun(text string) bool {
	run := 0
	for _, r := range text {
		if isAllowed(r) {
			run = 0
			continue
		}
		run++
		if run > maxSymbolRun {
			return true
		}
	}
	return false
}

func isAllowed(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	_, ok := allowedPunctuation[r]
	return ok
}
