package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"huddle/internal/event"
)

func TestJoinLimiter_SlidingWindow(t *testing.T) {
	req := require.New(t)
	rl := NewJoinLimiter(2, 10*time.Second)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	// Two attempts pass, the third inside the window is blocked
	req.True(rl.Allow("s1"))
	req.True(rl.Allow("s1"))
	req.False(rl.Allow("s1"))

	// Other sessions are unaffected
	req.True(rl.Allow("s2"))

	// Once the window slides past, attempts pass again
	clock = clock.Add(11 * time.Second)
	req.True(rl.Allow("s1"))
}

func TestJoinLimiter_ForgetResets(t *testing.T) {
	req := require.New(t)
	rl := NewJoinLimiter(1, time.Minute)

	req.True(rl.Allow("s1"))
	req.False(rl.Allow("s1"))

	rl.Forget("s1")
	req.True(rl.Allow("s1"))
}

func TestJoin_RateLimitedAttemptsAreDropped(t *testing.T) {
	req := require.New(t)
	fx := newFixture()
	host := fx.makeRoom("r1", "secret")
	host.reset()
	guest := fx.connect("g1")

	// When a guest hammers join with the wrong password
	for range 10 {
		fx.coord.Dispatch("g1", &event.JoinRoom{RoomID: "r1", Password: "wrong"})
	}

	// Then only the first attempts inside the window are answered
	req.Equal(joinLimit, guest.count(t, event.TypeJoinError))
	req.Empty(fx.coord.rooms["r1"].lobby)
}
