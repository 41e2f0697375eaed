package lexer

// Sigils that the lexer itself consumes. All other emoji reach the parsers
// as identifier tokens; their meanings live in the parser and analyzer.
const (
	SigilString       = '🔤'
	SigilEscape       = '❌'
	SigilSymbol       = '🔟'
	SigilTrue         = '👍'
	SigilFalse        = '👎'
	SigilLineComment  = '👴'
	SigilBlockComment = '👵'
	SigilDocComment   = '🌮'
	// SigilInference is not an emoji but must tokenize as an identifier; it
	// asks the type parser to use the active type expectation.
	SigilInference = '●'

	argBracketOpen  = '〖'
	argBracketClose = '〗'
)

// isEmoji reports whether the rune belongs to one of the Unicode blocks the
// language treats as identifier characters.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // Misc Symbols and Pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // Emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // Transport and Map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // Supplemental Symbols and Pictographs
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF: // Symbols and Pictographs Extended-A
		return true
	case r >= 0x2600 && r <= 0x27BF: // Misc symbols, Dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // Misc Symbols and Arrows
		return true
	case r >= 0x25A0 && r <= 0x25FF: // Geometric Shapes (◀ ▶ ● …)
		return true
	case r >= 0x1F780 && r <= 0x1F7FF: // Geometric Shapes Extended (🟡 🟢 …)
		return true
	case r >= 0x23E9 && r <= 0x23FA: // media control symbols
		return true
	case r == 0x2139 || r == 0x2122 || r == 0x3030 || r == 0x303D:
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x1F000 && r <= 0x1F2FF: // Mahjong, Dominoes, Playing Cards, Enclosed Ideographic
		return true
	case r == 0x24C2 || (r >= 0x2190 && r <= 0x21FF):
		return true
	}
	return false
}

func isEmojiModifier(r rune) bool {
	return r >= 0x1F3FB && r <= 0x1F3FF
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}
