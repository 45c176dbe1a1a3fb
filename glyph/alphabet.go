// Package glyph implements the falling code streams shared by the glyph modes.
package glyph

import "github.com/esimov/illusion/mathx"

const (
	// SymbolSize is the pixel pitch of one glyph cell.
	SymbolSize = 14

	katakanaStart = 0x30A0
	katakanaCount = 96
)

// Broken is the block character set substituted in by the chaos mode.
var Broken = []rune{
	'■', '□', '▓', '▒', '░', '█', '▄', '▀',
	'◼', '◻', '▪', '▫', '⬛', '⬜', '◾', '◽',
}

// RandomSymbol draws a symbol from the weighted alphabet: 60% katakana,
// 20% digits and 20% latin capitals.
func RandomSymbol(rng *mathx.Rand) rune {
	if rng.Float64() > 0.4 {
		return rune(katakanaStart + rng.Intn(katakanaCount))
	}
	if rng.Float64() > 0.5 {
		return rune('0' + rng.Intn(10))
	}
	return rune('A' + rng.Intn(26))
}

// RandomBroken draws a symbol from the Broken set.
func RandomBroken(rng *mathx.Rand) rune {
	return Broken[rng.Intn(len(Broken))]
}

// InAlphabet reports whether r can be produced by RandomSymbol.
func InAlphabet(r rune) bool {
	switch {
	case r >= katakanaStart && r < katakanaStart+katakanaCount:
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	}
	return false
}

// IsBroken reports whether r belongs to the Broken set.
func IsBroken(r rune) bool {
	for _, b := range Broken {
		if b == r {
			return true
		}
	}
	return false
}
