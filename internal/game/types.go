package game

// Role is a player's allegiance for one round.
type Role string

const (
	RoleCivilian Role = "CIVILIAN"
	RoleImposter Role = "IMPOSTER"
)

// Difficulty steers word selection during provisioning.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "EASY"
	DifficultyAverage  Difficulty = "AVERAGE"
	DifficultyAdvanced Difficulty = "ADVANCED"
	DifficultyExpert   Difficulty = "EXPERT"
)

// Strategy decides what an imposter sees during the reveal:
// a cryptic hint, a related decoy word, or nothing at all.
type Strategy string

const (
	StrategyHint      Strategy = "HINT"
	StrategyWrongWord Strategy = "WRONG_WORD"
	StrategyBlind     Strategy = "BLIND"
)

// Secrets handed to imposters when the game data lacks the
// strategy's preferred field.
const (
	SecretBlind       = "???"
	SecretNoWrongWord = "Confusion"
	SecretNoHint      = "Hint Error"
)

// Player is one seat in a round. Created at role assignment and
// immutable afterwards except for IsEliminated, which vote
// resolution flips.
type Player struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	IsEliminated bool   `json:"isEliminated"`
	Secret       string `json:"secret"`
	PeerID       string `json:"peerId,omitempty"`
}

// Source credits where a generated word came from.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GameData is the secret material for one round, produced once by
// provisioning and replicated verbatim to every peer.
type GameData struct {
	Word         string   `json:"word"`
	Hint         string   `json:"hint,omitempty"`
	ImposterWord string   `json:"imposterWord,omitempty"`
	Strategy     Strategy `json:"strategy"`
	Sources      []Source `json:"sources,omitempty"`
}

// CustomItem is one user-supplied word/hint pair.
type CustomItem struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

// CustomCategory is a saved user-defined word list.
type CustomCategory struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Items []CustomItem `json:"items"`
}

// LobbySettings is the host-owned game configuration mirrored to
// every guest.
type LobbySettings struct {
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	Strategy     Strategy   `json:"strategy"`
	NumImposters int        `json:"numImposters"`
	Duration     int        `json:"duration"`
}

// DefaultSettings mirrors the lobby defaults every peer starts from.
func DefaultSettings() LobbySettings {
	return LobbySettings{
		Category:     "Silly & Random",
		Difficulty:   DifficultyAverage,
		Strategy:     StrategyHint,
		NumImposters: 1,
		Duration:     180,
	}
}

// Categories is the built-in category list shown during setup.
var Categories = []string{
	"Christmas", "Bible", "Animals & Nature", "Anime", "Famous People",
	"Food & Drink", "Brands", "Fashion & Clothes", "Film & TV",
	"Games", "Music", "Sports", "World & Flags", "Transport",
	"Easter", "Pop Culture", "Silly & Random",
}

// Player count bounds for a playable round.
const (
	MinPlayers = 3
	MaxPlayers = 12
)
