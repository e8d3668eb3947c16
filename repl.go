package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Alvington/ImposterGame/internal/game"
)

var loadingMessages = []string{
	"Generating unique secrets...",
	"Thinking of anti-tropes...",
	"Calibrating imposter data...",
	"Polishing the crystal ball...",
}

// console feeds stdin lines through a channel so interactive flows can
// select over input, timer ticks, and network events at once.
type console struct {
	lines chan string
}

func newConsole() *console {
	return newConsoleFrom(os.Stdin)
}

func newConsoleFrom(r io.Reader) *console {
	c := &console{lines: make(chan string)}
	go func() {
		defer close(c.lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			c.lines <- sc.Text()
		}
	}()
	return c
}

// readLine blocks for one line of input. The second return is false
// once stdin is closed.
func (c *console) readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	line, ok := <-c.lines
	return strings.TrimSpace(line), ok
}

func (c *console) promptString(prompt, def string) string {
	suffix := ""
	if def != "" {
		suffix = fmt.Sprintf(" [%s]", def)
	}
	line, ok := c.readLine(prompt + suffix + ": ")
	if !ok || line == "" {
		return def
	}
	return line
}

func (c *console) promptInt(prompt string, def, min, max int) int {
	for {
		line, ok := c.readLine(fmt.Sprintf("%s [%d]: ", prompt, def))
		if !ok || line == "" {
			return def
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < min || n > max {
			fmt.Printf("Enter a number between %d and %d.\n", min, max)
			continue
		}
		return n
	}
}

func (c *console) promptChoice(prompt string, options []string, def string) string {
	for i, opt := range options {
		fmt.Printf("  %2d. %s\n", i+1, opt)
	}
	for {
		line, ok := c.readLine(fmt.Sprintf("%s [%s]: ", prompt, def))
		if !ok || line == "" {
			return def
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
			return options[n-1]
		}
		for _, opt := range options {
			if strings.EqualFold(opt, line) {
				return opt
			}
		}
		fmt.Println("Pick an option by number or name.")
	}
}

func difficultyChoices() []string {
	return []string{
		string(game.DifficultyEasy),
		string(game.DifficultyAverage),
		string(game.DifficultyAdvanced),
		string(game.DifficultyExpert),
	}
}

func strategyChoices() []string {
	return []string{
		string(game.StrategyHint),
		string(game.StrategyWrongWord),
		string(game.StrategyBlind),
	}
}

// parseSuspects reads the accused seat ids off one line and checks
// them against the roster and the required count; a vote with the
// wrong cardinality never reaches resolution.
func parseSuspects(line string, players []game.Player, want int) ([]int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ','
	})
	ids := make([]int, 0, len(fields))
	seen := make(map[int]bool)
	for _, f := range fields {
		if f == "" {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("not a player id: %q", f)
		}
		if id < 0 || id >= len(players) {
			return nil, fmt.Errorf("no player with id %d", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("player %d accused twice", id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) != want {
		return nil, fmt.Errorf("accuse exactly %d player(s), got %d", want, len(ids))
	}
	return ids, nil
}

func printRoster(players []game.Player) {
	for _, p := range players {
		fmt.Printf("  %2d. %s\n", p.ID, p.Name)
	}
}

// printOutcome shows the verdict and the full post-round summary,
// eliminations included.
func printOutcome(r *game.Round) {
	if r.Winner() == game.RoleCivilian {
		fmt.Println("\n*** CIVILIANS WIN! Every imposter was caught. ***")
	} else {
		fmt.Println("\n*** IMPOSTERS WIN! ***")
	}
	if data := r.Data(); data != nil {
		fmt.Printf("The word was: %s\n", data.Word)
	}
	for _, p := range r.Players() {
		marker := ""
		if p.IsEliminated {
			marker = " [eliminated]"
		}
		fmt.Printf("  %s - %s%s\n", p.Name, p.Role, marker)
	}
}

func hideSecret() {
	// push the secret off a shared screen
	fmt.Print(strings.Repeat("\n", 40))
}
