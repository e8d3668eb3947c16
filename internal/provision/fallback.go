package provision

import "github.com/Alvington/ImposterGame/internal/game"

// fallbackEntry is the game data shipped with the binary so a round
// can always start, API key or not.
type fallbackEntry struct {
	word         string
	hint         string
	imposterWord string
}

var categoryFallbacks = map[string]fallbackEntry{
	"Animals & Nature": {word: "Elephant", hint: "A gray giant with a memory", imposterWord: "Rhino"},
	"Food":             {word: "Sushi", hint: "Raw fish and vinegared rice", imposterWord: "Sashimi"},
	"Movies":           {word: "Inception", hint: "Dreams within dreams", imposterWord: "Interstellar"},
	"Sports":           {word: "Cricket", hint: "Played with a bat and a red ball", imposterWord: "Baseball"},
	"Science":          {word: "Photosynthesis", hint: "Plants making food from light", imposterWord: "Respiration"},
	"Bible":            {word: "Noah", hint: "Built a massive wooden ship", imposterWord: "Moses"},
	"Silly & Random":   {word: "Pogo Stick", hint: "Spring-loaded bouncing toy", imposterWord: "Trampoline"},
}

var defaultFallback = fallbackEntry{
	word:         "Solar Eclipse",
	hint:         "A rare cosmic alignment",
	imposterWord: "Lunar Eclipse",
}

// fallbackFor builds well-formed game data for a category, exposing
// only the field the strategy needs.
func fallbackFor(category string, strategy game.Strategy) game.GameData {
	base, ok := categoryFallbacks[category]
	if !ok {
		base = defaultFallback
	}

	data := game.GameData{
		Word:     base.word,
		Strategy: strategy,
	}
	switch strategy {
	case game.StrategyHint:
		data.Hint = base.hint
	case game.StrategyWrongWord:
		data.ImposterWord = base.imposterWord
	}
	return data
}
