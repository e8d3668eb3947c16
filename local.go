package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Alvington/ImposterGame/internal/game"
	"github.com/Alvington/ImposterGame/internal/provision"
	"github.com/Alvington/ImposterGame/internal/store"
)

// runLocal is pass-and-play: one shared device, every seat revealed in
// turn, no network anywhere.
func runLocal(ctx context.Context, cfg *Config) error {
	con := newConsole()
	cache := store.Open(cfg.cachePath)
	gen := provision.NewGenerator(cfg.apiKey, cfg.model, func(format string, args ...any) {
		logf(cfg, format, args...)
	})

	fmt.Println("IMPOSTER - Pass & Play")

	count := con.promptInt("How many players?", cache.PlayerCount(4), game.MinPlayers, game.MaxPlayers)
	cached := cache.PlayerNames()
	names := make([]string, count)
	for i := range names {
		def := fmt.Sprintf("Player %d", i+1)
		if i < len(cached) && cached[i] != "" {
			def = cached[i]
		}
		names[i] = con.promptString(fmt.Sprintf("Player %d name", i+1), def)
	}
	cache.SetPlayerCount(count)
	cache.SetPlayerNames(names)

	settings, items := promptSettings(con, cache, count)

	round := game.NewRound()
	for {
		if err := playLocalRound(ctx, cfg, con, gen, round, names, settings, items); err != nil {
			return err
		}

		next, ok := con.readLine("Play (a)gain with a new word, (n)ew setup, or (q)uit? [a]: ")
		if !ok {
			return nil
		}
		switch next {
		case "q", "quit":
			return nil
		case "n", "new":
			round.Reset()
			settings, items = promptSettings(con, cache, count)
		default:
			// keep the roster, transition straight into another reveal
		}
	}
}

func promptSettings(con *console, cache *store.Cache, playerCount int) (game.LobbySettings, []game.CustomItem) {
	settings := game.DefaultSettings()

	category, items := chooseCategory(con, cache, settings.Category)
	settings.Category = category

	settings.Difficulty = game.Difficulty(con.promptChoice("Difficulty", difficultyChoices(), string(settings.Difficulty)))
	settings.Strategy = game.Strategy(con.promptChoice("Imposter strategy", strategyChoices(), string(settings.Strategy)))
	maxImposters := playerCount / 2
	settings.NumImposters = con.promptInt("How many imposters?", 1, 1, maxImposters)
	settings.Duration = con.promptInt("Discussion time (seconds)?", settings.Duration, 30, 900)
	return settings, items
}

const (
	makeCategoryOption = "Create a custom category..."
	dropCategoryOption = "Delete a custom category..."
)

// chooseCategory picks the round's category. User-defined word lists
// sit alongside the built-in set, with authoring and deletion inline.
func chooseCategory(con *console, cache *store.Cache, def string) (string, []game.CustomItem) {
	for {
		customs := cache.CustomCategories()
		options := append([]string{}, game.Categories...)
		for _, c := range customs {
			options = append(options, c.Name)
		}
		options = append(options, makeCategoryOption)
		if len(customs) > 0 {
			options = append(options, dropCategoryOption)
		}

		choice := con.promptChoice("Category", options, def)
		switch choice {
		case makeCategoryOption:
			if cat, ok := promptNewCategory(con, cache); ok {
				return cat.Name, cat.Items
			}
		case dropCategoryOption:
			promptDeleteCategory(con, cache)
		default:
			for _, c := range customs {
				if c.Name == choice {
					return choice, c.Items
				}
			}
			return choice, nil
		}
	}
}

// promptNewCategory collects a name and word/hint pairs; a blank word
// ends the list.
func promptNewCategory(con *console, cache *store.Cache) (game.CustomCategory, bool) {
	name, ok := con.readLine("Category name: ")
	if !ok || name == "" {
		return game.CustomCategory{}, false
	}

	var items []game.CustomItem
	for {
		word, ok := con.readLine(fmt.Sprintf("Word %d (blank to finish): ", len(items)+1))
		if !ok {
			return game.CustomCategory{}, false
		}
		if word == "" {
			break
		}
		hint, ok := con.readLine("Hint for the imposter: ")
		if !ok {
			return game.CustomCategory{}, false
		}
		items = append(items, game.CustomItem{Word: word, Hint: hint})
	}
	if len(items) == 0 {
		fmt.Println("A custom category needs at least one word.")
		return game.CustomCategory{}, false
	}

	saved := cache.SaveCustomCategory(game.CustomCategory{Name: name, Items: items})
	fmt.Printf("Saved %q with %d word(s).\n", saved.Name, len(saved.Items))
	return saved, true
}

func promptDeleteCategory(con *console, cache *store.Cache) {
	customs := cache.CustomCategories()
	if len(customs) == 0 {
		return
	}
	names := make([]string, len(customs))
	for i, c := range customs {
		names[i] = c.Name
	}

	choice := con.promptChoice("Delete which category?", names, names[0])
	for _, c := range customs {
		if c.Name == choice {
			cache.DeleteCustomCategory(c.ID)
			fmt.Printf("Deleted %q.\n", choice)
			return
		}
	}
}

func playLocalRound(ctx context.Context, cfg *Config, con *console, gen *provision.Generator, round *game.Round, names []string, settings game.LobbySettings, items []game.CustomItem) error {
	fmt.Println(loadingMessages[rand.Intn(len(loadingMessages))])
	data := gen.GameData(ctx, settings.Category, settings.Difficulty, settings.Strategy, items)

	players, err := game.AssignRoles(names, nil, settings.NumImposters, data)
	if err != nil {
		return err
	}
	if err := round.Begin(players, data, settings.Duration, settings.Category); err != nil {
		return err
	}

	// every seat must affirm having seen its secret before the device
	// moves on; there is no skipping past a reveal
	for {
		p := round.Players()[round.RevealIndex()]
		if _, ok := con.readLine(fmt.Sprintf("\nPass the device to %s, then press Enter...", p.Name)); !ok {
			return nil
		}
		fmt.Printf("\n%s, your secret is: %s\n", p.Name, p.Secret)
		if _, ok := con.readLine("Press Enter once you have memorized it..."); !ok {
			return nil
		}
		hideSecret()
		done, err := round.AcknowledgeReveal()
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	if err := discussLocal(ctx, con, round); err != nil {
		return err
	}

	fmt.Printf("\nVote! Accuse exactly %d player(s).\n", settings.NumImposters)
	printRoster(round.Players())
	for {
		line, ok := con.readLine("Suspect id(s): ")
		if !ok {
			return nil
		}
		ids, err := parseSuspects(line, round.Players(), settings.NumImposters)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if _, err := round.ResolveVote(ids); err != nil {
			return err
		}
		break
	}

	printOutcome(round)
	return nil
}

// discussLocal runs the discussion countdown; voting opens when the
// timer expires or when the group asks for it early.
func discussLocal(ctx context.Context, con *console, round *game.Round) error {
	countdown := game.NewCountdown(round.Duration())
	fmt.Printf("\nDiscuss! %d seconds on the clock. Press Enter to open voting early.\n", countdown.Remaining())

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-con.lines:
			if !ok {
				return nil
			}
			countdown.Stop()
			return round.OpenVoting()
		case <-ticker.C:
			if countdown.Tick() {
				fmt.Println("Time's up! Voting is open.")
				return round.OpenVoting()
			}
			if rem := countdown.Remaining(); rem%30 == 0 || rem == 10 {
				fmt.Printf("%d seconds left...\n", rem)
			}
		}
	}
}
