package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alvington/ImposterGame/internal/game"
	"github.com/Alvington/ImposterGame/internal/protocol"
	"github.com/Alvington/ImposterGame/internal/transport"
)

// room spins up a host coordinator plus n guests over an in-process
// transport, with every Run loop already going.
type room struct {
	host   *Coordinator
	guests []*Coordinator
}

func newRoom(t *testing.T, guestNames ...string) *room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	inproc := transport.NewInproc()
	host := NewHost("Alice", "ABCDE", inproc.HostEnd(), t.Logf)
	go host.Run(ctx)

	r := &room{host: host}
	for i, name := range guestNames {
		guest := NewGuest(name, "ABCDE", peerID(i), inproc.Connect(), t.Logf)
		go guest.Run(ctx)
		r.guests = append(r.guests, guest)
	}
	return r
}

func peerID(i int) string {
	return string(rune('a'+i)) + "-peer"
}

func waitEvent[E Event](t *testing.T, c *Coordinator) E {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			if typed, ok := ev.(E); ok {
				return typed
			}
		case <-deadline:
			var zero E
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestGuestJoinReplicatesLobby(t *testing.T) {
	r := newRoom(t, "Bob")

	hostView := waitEvent[LobbyChanged](t, r.host)
	guestView := waitEvent[LobbyChanged](t, r.guests[0])

	require.Len(t, hostView.Players, 2)
	assert.Equal(t, hostView.Players, guestView.Players)
	assert.Equal(t, "Alice", hostView.Players[0].Name)
	assert.Equal(t, "ABCDE", hostView.Players[0].PeerID)
	assert.Equal(t, "Bob", hostView.Players[1].Name)

	assert.Equal(t, r.host.Lobby(), r.guests[0].Lobby())
}

func TestSettingsArriveOnConnect(t *testing.T) {
	r := newRoom(t, "Bob")

	sync := waitEvent[SettingsChanged](t, r.guests[0])
	assert.Equal(t, game.DefaultSettings(), sync.Settings)
	assert.Equal(t, game.DefaultSettings(), r.guests[0].Settings())
}

func TestUpdateSettingsReplication(t *testing.T) {
	r := newRoom(t, "Bob")
	waitEvent[SettingsChanged](t, r.guests[0])

	changed := game.DefaultSettings()
	changed.Category = "Film & TV"
	changed.Difficulty = game.DifficultyExpert
	changed.NumImposters = 2
	r.host.UpdateSettings(changed)

	sync := waitEvent[SettingsChanged](t, r.guests[0])
	assert.Equal(t, changed, sync.Settings)
	assert.Equal(t, changed, r.host.Settings())
	assert.Equal(t, changed, r.guests[0].Settings())
}

func TestGuestCannotWriteSettings(t *testing.T) {
	r := newRoom(t, "Bob")
	waitEvent[SettingsChanged](t, r.guests[0])

	rogue := game.DefaultSettings()
	rogue.NumImposters = 6
	r.guests[0].UpdateSettings(rogue)

	// the host never observes the attempt
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, game.DefaultSettings(), r.host.Settings())
}

func TestAnnounceStartReachesGuests(t *testing.T) {
	r := newRoom(t, "Bob", "Carol")
	waitEvent[LobbyChanged](t, r.host)
	waitEvent[LobbyChanged](t, r.host)

	data := game.GameData{Word: "Sushi", Hint: "raw fish", Strategy: game.StrategyHint}
	names := []string{"Alice", "Bob", "Carol"}
	peers := []string{"ABCDE", peerID(0), peerID(1)}
	players, err := game.AssignRoles(names, peers, 1, data)
	require.NoError(t, err)

	r.host.AnnounceStart(data, players, 180, "Food")

	for _, guest := range r.guests {
		started := waitEvent[RoundStarted](t, guest)
		assert.Equal(t, "Sushi", started.Data.Word)
		assert.Equal(t, players, started.Players)
		assert.Equal(t, 180, started.Duration)
		assert.Equal(t, "Food", started.Category)
	}
}

func TestVoteFromGuestReachesEveryPeer(t *testing.T) {
	r := newRoom(t, "Bob", "Carol")
	waitEvent[LobbyChanged](t, r.host)
	waitEvent[LobbyChanged](t, r.host)

	r.guests[0].AnnounceVote([]int{2})

	hostVote := waitEvent[VoteResolved](t, r.host)
	assert.Equal(t, []int{2}, hostVote.SuspectIDs)

	// the host relays the vote to the guest that did not originate it
	otherVote := waitEvent[VoteResolved](t, r.guests[1])
	assert.Equal(t, []int{2}, otherVote.SuspectIDs)
}

func TestVoteFromHostReachesGuests(t *testing.T) {
	r := newRoom(t, "Bob")
	waitEvent[LobbyChanged](t, r.host)

	r.host.AnnounceVote([]int{0, 1})
	vote := waitEvent[VoteResolved](t, r.guests[0])
	assert.Equal(t, []int{0, 1}, vote.SuspectIDs)
}

func TestResetKeepsMembershipAndSettings(t *testing.T) {
	r := newRoom(t, "Bob")
	waitEvent[LobbyChanged](t, r.host)
	// on a guest the connect-time settings sync lands before the lobby
	// broadcast triggered by its own JOIN
	waitEvent[SettingsChanged](t, r.guests[0])
	waitEvent[LobbyChanged](t, r.guests[0])

	changed := game.DefaultSettings()
	changed.Duration = 60
	r.host.UpdateSettings(changed)
	waitEvent[SettingsChanged](t, r.guests[0])

	r.host.AnnounceReset()
	waitEvent[RoundReset](t, r.guests[0])

	assert.Len(t, r.guests[0].Lobby(), 2)
	assert.Equal(t, changed, r.guests[0].Settings())
	assert.Len(t, r.host.Lobby(), 2)
	assert.Equal(t, changed, r.host.Settings())
}

func TestGuestResetIsNotReplicated(t *testing.T) {
	r := newRoom(t, "Bob", "Carol")
	waitEvent[LobbyChanged](t, r.host)
	waitEvent[LobbyChanged](t, r.host)

	r.guests[0].AnnounceReset()

	time.Sleep(100 * time.Millisecond)
	select {
	case ev := <-r.guests[1].Events():
		_, isReset := ev.(RoundReset)
		assert.False(t, isReset, "reset from a guest must not propagate")
	default:
	}
}

func TestRepeatedJoinDoesNotDuplicateLobbyEntry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	inproc := transport.NewInproc()
	host := NewHost("Alice", "ABCDE", inproc.HostEnd(), t.Logf)
	go host.Run(ctx)

	guest := NewGuest("Bob", "ABCDE", "b-peer", inproc.Connect(), t.Logf)
	go guest.Run(ctx)
	waitEvent[LobbyChanged](t, host)
	waitEvent[LobbyChanged](t, guest)

	// a second peer re-sends its JOIN, as a reconnecting or
	// misbehaving client would
	rogueEnd := inproc.Connect()
	rogueConn := <-rogueEnd.Joined()
	require.True(t, rogueConn.Send(protocol.Join{Name: "Carol", PeerID: "c-peer"}))
	waitEvent[LobbyChanged](t, host)
	require.True(t, rogueConn.Send(protocol.Join{Name: "Carol", PeerID: "c-peer"}))
	waitEvent[LobbyChanged](t, host)

	want := []protocol.LobbyPlayer{
		{Name: "Alice", PeerID: "ABCDE"},
		{Name: "Bob", PeerID: "b-peer"},
		{Name: "Carol", PeerID: "c-peer"},
	}
	assert.Equal(t, want, host.Lobby())

	// the rebroadcast still validates, so the connected guest's mirror
	// keeps tracking the host
	deadline := time.After(2 * time.Second)
	for {
		got := waitEvent[LobbyChanged](t, guest)
		if len(got.Players) == 3 {
			assert.Equal(t, want, got.Players)
			break
		}
		select {
		case <-deadline:
			t.Fatal("guest never saw the full lobby")
		default:
		}
	}

	// a re-sent JOIN with a changed name updates the entry in place
	require.True(t, rogueConn.Send(protocol.Join{Name: "Caroline", PeerID: "c-peer"}))
	changed := waitEvent[LobbyChanged](t, host)
	require.Len(t, changed.Players, 3)
	assert.Equal(t, "Caroline", changed.Players[2].Name)
}

func TestConnectionLostOnHostClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	inproc := transport.NewInproc()
	hostEnd := inproc.HostEnd()
	guest := NewGuest("Bob", "ABCDE", "b-peer", inproc.Connect(), t.Logf)
	go guest.Run(ctx)

	// the host side closes its link without a coordinator, as if the
	// host process died
	hostConn := <-hostEnd.Joined()
	require.NoError(t, hostConn.Close())

	lost := waitEvent[ConnectionLost](t, guest)
	assert.ErrorIs(t, lost.Err, transport.ErrConnectionLost)
}

func TestHostSurvivesGuestDeparture(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	inproc := transport.NewInproc()
	host := NewHost("Alice", "ABCDE", inproc.HostEnd(), t.Logf)
	go host.Run(ctx)

	// drive the guest side by hand so the test owns the link
	guestEnd := inproc.Connect()
	guestConn := <-guestEnd.Joined()
	require.True(t, guestConn.Send(protocol.Join{Name: "Bob", PeerID: "b-peer"}))
	waitEvent[LobbyChanged](t, host)

	require.NoError(t, guestConn.Close())

	// membership is append-only: the host's lobby still lists Bob
	time.Sleep(100 * time.Millisecond)
	lobby := host.Lobby()
	require.Len(t, lobby, 2)
	assert.Equal(t, "Bob", lobby[1].Name)
}

func TestDefaultNames(t *testing.T) {
	inproc := transport.NewInproc()
	host := NewHost("  ", "ABCDE", inproc.HostEnd(), nil)
	assert.Equal(t, "Host", host.Name())
	assert.Equal(t, "ABCDE", host.PeerID())

	guest := NewGuest("", "ABCDE", "p1", inproc.Connect(), nil)
	assert.Equal(t, "Guest", guest.Name())
	assert.Equal(t, RoleGuest, guest.Role())
}
