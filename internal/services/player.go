package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ---------------------------------------------------------------------------
// Audio playback
// Synthesized audio is played on the host's default output device by piping
// it into an external player. Headless hosts use DiscardPlayer.
// ---------------------------------------------------------------------------

// AudioPlayer plays synthesized audio.
type AudioPlayer interface {
	Play(ctx context.Context, audio *TTSResponse) error
}

// PlayerNone disables playback when used as the player command.
const PlayerNone = "none"

// NewAudioPlayer returns a CommandPlayer for command, or a DiscardPlayer when
// command is empty or "none".
func NewAudioPlayer(command string) AudioPlayer {
	command = strings.TrimSpace(command)
	if command == "" || command == PlayerNone {
		return DiscardPlayer{}
	}
	return NewCommandPlayer(command)
}

// DiscardPlayer drops audio.
type DiscardPlayer struct{}

func (DiscardPlayer) Play(ctx context.Context, audio *TTSResponse) error {
	return nil
}

// CommandPlayer runs an external program (ffplay by default) and writes the
// audio to its stdin. Plays are serialized since they share one speaker.
type CommandPlayer struct {
	mu     sync.Mutex
	binary string
	args   []string
}

// NewCommandPlayer parses a command line such as "ffplay -volume 80".
// Arguments are split on whitespace; quoting is not supported.
func NewCommandPlayer(command string) *CommandPlayer {
	fields := strings.Fields(command)
	return &CommandPlayer{binary: fields[0], args: fields[1:]}
}

func (p *CommandPlayer) Play(ctx context.Context, audio *TTSResponse) error {
	if audio == nil || len(audio.AudioData) == 0 {
		return fmt.Errorf("no audio to play")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	args := p.buildArgs(audio.Format)
	cmd := exec.CommandContext(ctx, p.binary, args...)
	cmd.Stdin = bytes.NewReader(audio.AudioData)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Printf("[Player] Playing %d bytes (%s) with %s", len(audio.AudioData), audio.Format, p.binary)

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s failed: %w: %s", p.binary, err, msg)
		}
		return fmt.Errorf("%s failed: %w", p.binary, err)
	}

	return nil
}

// buildArgs adds the ffplay flags needed to read audio from stdin.
// Other players get their configured arguments unchanged.
func (p *CommandPlayer) buildArgs(format string) []string {
	args := append([]string(nil), p.args...)
	if !isFFplay(p.binary) {
		return args
	}

	args = append(args, "-nodisp", "-autoexit", "-loglevel", "quiet")
	if rate, ok := pcmSampleRate(format); ok {
		// Raw PCM has no header, so the decoder must be told the layout.
		args = append(args, "-f", "s16le", "-ar", strconv.Itoa(rate), "-ac", "1")
	}
	return append(args, "-i", "-")
}

func isFFplay(binary string) bool {
	return binary == "ffplay" || strings.HasSuffix(binary, "/ffplay")
}
