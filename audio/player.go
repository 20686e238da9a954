package audio

import (
	"bytes"
	"context"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

var _ assistant.Player = (*Player)(nil)

// Player pipes encoded audio to a command's stdin.
type Player struct {
	argv []string
}

// NewPlayer returns a Player that runs argv for every clip. The command must
// read the clip from stdin.
func NewPlayer(argv ...string) *Player {
	return &Player{argv: argv}
}

// Play blocks until the command exits. Cancelling ctx kills playback and
// returns the cancellation cause.
func (p *Player) Play(ctx context.Context, a assistant.Audio) error {
	if len(a.Data) == 0 {
		return nil
	}
	cmd, err := command(ctx, p.argv)
	if err != nil {
		return err
	}
	stderr := newTailBuffer(stderrLimit)
	cmd.Stdin = bytes.NewReader(a.Data)
	cmd.Stderr = stderr
	return runErr(ctx, "play", cmd.Run(), stderr)
}
