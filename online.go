package main

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alvington/ImposterGame/internal/game"
	"github.com/Alvington/ImposterGame/internal/provision"
	"github.com/Alvington/ImposterGame/internal/session"
	"github.com/Alvington/ImposterGame/internal/store"
	"github.com/Alvington/ImposterGame/internal/transport"
)

// runHost creates a room, becomes its authority, and drives the game
// from the terminal.
func runHost(ctx context.Context, cfg *Config) error {
	con := newConsole()
	name := cfg.name
	if name == "" {
		name = con.promptString("Your name", "Host")
	}

	lf := func(format string, args ...any) { logf(cfg, format, args...) }
	code := transport.NewRoomCode()
	host := transport.NewHost(transport.HostOptions{
		Bind:    cfg.bind,
		Port:    cfg.port,
		Code:    code,
		Version: releaseVersion,
		Profile: cfg.profile,
		Logf:    lf,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := host.Start(runCtx); err != nil {
		return err
	}

	coord := session.NewHost(name, code, host, lf)
	go coord.Run(runCtx)

	fmt.Printf("IMPOSTER - Online room %s\n", code)
	fmt.Printf("Join URL: %s\n", host.JoinURL())
	fmt.Printf("Share QR: http://%s/room/%s/qr\n", host.Addr(), code)

	app := &onlineApp{
		cfg:    cfg,
		con:    con,
		coord:  coord,
		cache:  store.Open(cfg.cachePath),
		gen:    provision.NewGenerator(cfg.apiKey, cfg.model, lf),
		isHost: true,
	}
	return app.loop(runCtx)
}

// runJoin connects to an existing room as a guest and mirrors the
// host's broadcasts.
func runJoin(ctx context.Context, cfg *Config, target string) error {
	con := newConsole()
	name := cfg.name
	if name == "" {
		name = con.promptString("Your name", "Guest")
	}

	lf := func(format string, args ...any) { logf(cfg, format, args...) }
	url, code := joinTarget(target, cfg.bind)

	guest := transport.NewGuest(url, lf)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := guest.Start(runCtx); err != nil {
		fmt.Println("Could not connect to the room. Please check the code.")
		return err
	}

	coord := session.NewGuest(name, code, uuid.NewString(), guest, lf)
	go coord.Run(runCtx)

	fmt.Printf("IMPOSTER - Joined room %s\n", code)

	app := &onlineApp{
		cfg:   cfg,
		con:   con,
		coord: coord,
		cache: store.Open(cfg.cachePath),
		gen:   provision.NewGenerator(cfg.apiKey, cfg.model, lf),
	}
	return app.loop(runCtx)
}

// joinTarget resolves either a full join URL or a bare room code plus
// host address into the websocket URL to dial.
func joinTarget(target, addr string) (url, code string) {
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		code = target
		if i := strings.Index(code, "/room/"); i >= 0 {
			code = code[i+len("/room/"):]
		}
		code = strings.TrimSuffix(code, "/ws")
		return target, strings.ToUpper(code)
	}
	code = strings.ToUpper(strings.TrimSpace(target))
	return fmt.Sprintf("ws://%s/room/%s/ws", addr, code), code
}

// onlineApp is the networked front end: one select loop over terminal
// input, replication events, and the local countdown.
type onlineApp struct {
	cfg   *Config
	con   *console
	coord *session.Coordinator
	cache *store.Cache
	gen   *provision.Generator

	round     *game.Round
	countdown *game.Countdown
	isHost    bool
	revealed  bool
}

func (a *onlineApp) loop(ctx context.Context) error {
	a.round = game.NewRound()
	a.printHelp()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-a.coord.Events():
			if done := a.handleEvent(ev); done {
				return nil
			}
		case line, ok := <-a.con.lines:
			if !ok {
				return nil
			}
			if quit := a.handleLine(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		case <-ticker.C:
			a.handleTick()
		}
	}
}

func (a *onlineApp) printHelp() {
	if a.isHost {
		fmt.Println("Commands: players, settings, set <field> <value>, start, quit")
		fmt.Println("Fields: category, difficulty, strategy, imposters, duration")
	} else {
		fmt.Println("Commands: players, settings, quit (the host starts the round)")
	}
}

func (a *onlineApp) handleEvent(ev session.Event) (done bool) {
	switch e := ev.(type) {
	case session.LobbyChanged:
		fmt.Println("\nLobby:")
		for i, p := range e.Players {
			fmt.Printf("  %2d. %s\n", i+1, p.Name)
		}

	case session.SettingsChanged:
		printSettings(e.Settings)

	case session.RoundStarted:
		if a.round.State() != game.StateSetup && a.round.State() != game.StateWinner {
			a.round.Reset()
		}
		if err := a.round.Begin(e.Players, e.Data, e.Duration, e.Category); err != nil {
			logf(a.cfg, "GAME: dropping start: %v", err)
			return false
		}
		a.revealed = false
		a.countdown = nil
		fmt.Println("\nThe round is starting! Press Enter to reveal your secret.")

	case session.VoteResolved:
		switch a.round.State() {
		case game.StateWinner:
			// we resolved this vote locally; nothing to replay
		case game.StateReveal:
			if err := a.round.AcknowledgeOwnReveal(); err != nil {
				return false
			}
			a.applyVote(e.SuspectIDs)
		default:
			a.applyVote(e.SuspectIDs)
		}

	case session.RoundReset:
		a.round.Reset()
		a.countdown = nil
		fmt.Println("\nRound over - back to the lobby.")

	case session.ConnectionLost:
		fmt.Println("Disconnected from host.")
		return true
	}
	return false
}

func (a *onlineApp) applyVote(suspectIDs []int) {
	if _, err := a.round.ResolveVote(suspectIDs); err != nil {
		logf(a.cfg, "GAME: dropping vote sync: %v", err)
		return
	}
	a.countdown = nil
	printOutcome(a.round)
	a.printWinnerPrompt()
}

func (a *onlineApp) printWinnerPrompt() {
	if a.isHost {
		fmt.Println("Type 'again' for a new round, 'reset' to return to the lobby, or 'quit'.")
	} else {
		fmt.Println("Waiting for the host... ('quit' to leave)")
	}
}

func (a *onlineApp) handleLine(ctx context.Context, line string) (quit bool) {
	switch a.round.State() {
	case game.StateSetup:
		return a.handleLobbyLine(ctx, line)

	case game.StateReveal:
		if !a.revealed {
			p, _ := a.round.PlayerByPeer(a.coord.PeerID())
			fmt.Printf("\nYour secret is: %s\n", p.Secret)
			fmt.Println("Press Enter once you have memorized it...")
			a.revealed = true
			return false
		}
		hideSecret()
		if err := a.round.AcknowledgeOwnReveal(); err != nil {
			return false
		}
		a.countdown = game.NewCountdown(a.round.Duration())
		fmt.Printf("Discuss! %d seconds on the clock. Type 'vote' to open voting early.\n", a.countdown.Remaining())

	case game.StatePlaying:
		if line == "vote" || line == "" {
			a.openVoting()
		}

	case game.StateVoting:
		ids, err := parseSuspects(line, a.round.Players(), a.imposterCount())
		if err != nil {
			fmt.Println(err)
			return false
		}
		if _, err := a.round.ResolveVote(ids); err != nil {
			fmt.Println(err)
			return false
		}
		a.coord.AnnounceVote(ids)
		a.countdown = nil
		printOutcome(a.round)
		a.printWinnerPrompt()

	case game.StateWinner:
		switch line {
		case "quit", "q":
			return true
		case "again":
			if a.isHost {
				a.startRound(ctx)
			}
		case "reset":
			if a.isHost {
				a.round.Reset()
				a.coord.AnnounceReset()
				fmt.Println("Back to the lobby.")
			}
		}
	}
	return false
}

func (a *onlineApp) handleLobbyLine(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "quit", "q", "exit":
		return true
	case "players":
		fmt.Println("Lobby:")
		for i, p := range a.coord.Lobby() {
			fmt.Printf("  %2d. %s\n", i+1, p.Name)
		}
	case "settings":
		printSettings(a.coord.Settings())
	case "set":
		if !a.isHost {
			fmt.Println("Only the host can change settings.")
			return false
		}
		a.handleSet(fields[1:])
	case "start":
		if !a.isHost {
			fmt.Println("Only the host can start the round.")
			return false
		}
		a.startRound(ctx)
	default:
		a.printHelp()
	}
	return false
}

func (a *onlineApp) handleSet(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: set <category|difficulty|strategy|imposters|duration> <value>")
		return
	}
	settings := a.coord.Settings()
	value := strings.Join(args[1:], " ")

	switch args[0] {
	case "category":
		settings.Category = value
	case "difficulty":
		d := game.Difficulty(strings.ToUpper(value))
		switch d {
		case game.DifficultyEasy, game.DifficultyAverage, game.DifficultyAdvanced, game.DifficultyExpert:
			settings.Difficulty = d
		default:
			fmt.Printf("Unknown difficulty %q (%s)\n", value, strings.Join(difficultyChoices(), ", "))
			return
		}
	case "strategy":
		s := game.Strategy(strings.ToUpper(value))
		switch s {
		case game.StrategyHint, game.StrategyWrongWord, game.StrategyBlind:
			settings.Strategy = s
		default:
			fmt.Printf("Unknown strategy %q (%s)\n", value, strings.Join(strategyChoices(), ", "))
			return
		}
	case "imposters":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			fmt.Println("Imposter count must be a positive number.")
			return
		}
		settings.NumImposters = n
	case "duration":
		n, err := strconv.Atoi(value)
		if err != nil || n < 30 || n > 900 {
			fmt.Println("Duration must be between 30 and 900 seconds.")
			return
		}
		settings.Duration = n
	default:
		fmt.Printf("Unknown setting %q\n", args[0])
		return
	}

	a.coord.UpdateSettings(settings)
	printSettings(settings)
}

// startRound is host-only: provision the word, assign roles locally,
// replicate the resolved roster, and enter REVEAL.
func (a *onlineApp) startRound(ctx context.Context) {
	lobby := a.coord.Lobby()
	settings := a.coord.Settings()

	if len(lobby) < game.MinPlayers {
		fmt.Printf("Need at least %d players; the lobby has %d.\n", game.MinPlayers, len(lobby))
		return
	}
	if settings.NumImposters > len(lobby)/2 {
		fmt.Printf("Too many imposters for %d players; lower the setting.\n", len(lobby))
		return
	}

	names := make([]string, len(lobby))
	peerIDs := make([]string, len(lobby))
	for i, p := range lobby {
		names[i] = p.Name
		peerIDs[i] = p.PeerID
	}

	var items []game.CustomItem
	for _, c := range a.cache.CustomCategories() {
		if c.Name == settings.Category {
			items = c.Items
			break
		}
	}

	fmt.Println(loadingMessages[rand.Intn(len(loadingMessages))])
	data := a.gen.GameData(ctx, settings.Category, settings.Difficulty, settings.Strategy, items)

	players, err := game.AssignRoles(names, peerIDs, settings.NumImposters, data)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := a.round.Begin(players, data, settings.Duration, settings.Category); err != nil {
		fmt.Println(err)
		return
	}
	a.coord.AnnounceStart(data, players, settings.Duration, settings.Category)

	a.revealed = false
	a.countdown = nil
	fmt.Println("\nRound started! Press Enter to reveal your secret.")
}

func (a *onlineApp) handleTick() {
	if a.round.State() != game.StatePlaying || a.countdown == nil {
		return
	}
	if a.countdown.Tick() {
		fmt.Println("Time's up! Voting is open.")
		a.openVoting()
		return
	}
	if rem := a.countdown.Remaining(); rem%30 == 0 || rem == 10 {
		fmt.Printf("%d seconds left...\n", rem)
	}
}

func (a *onlineApp) openVoting() {
	if a.countdown != nil {
		a.countdown.Stop()
	}
	if err := a.round.OpenVoting(); err != nil {
		return
	}
	fmt.Printf("\nVote! Accuse exactly %d player(s) by id.\n", a.imposterCount())
	printRoster(a.round.Players())
}

func (a *onlineApp) imposterCount() int {
	count := 0
	for _, p := range a.round.Players() {
		if p.Role == game.RoleImposter {
			count++
		}
	}
	return count
}

func printSettings(s game.LobbySettings) {
	fmt.Printf("Settings: category=%q difficulty=%s strategy=%s imposters=%d duration=%ds\n",
		s.Category, s.Difficulty, s.Strategy, s.NumImposters, s.Duration)
}
