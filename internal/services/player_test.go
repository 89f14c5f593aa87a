package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAudioPlayer(t *testing.T) {
	assert.IsType(t, DiscardPlayer{}, NewAudioPlayer(""))
	assert.IsType(t, DiscardPlayer{}, NewAudioPlayer("none"))
	assert.IsType(t, &CommandPlayer{}, NewAudioPlayer("ffplay"))
}

func TestCommandPlayerArgs(t *testing.T) {
	p := NewCommandPlayer("ffplay -volume 80")

	assert.Equal(t,
		[]string{"-volume", "80", "-nodisp", "-autoexit", "-loglevel", "quiet", "-i", "-"},
		p.buildArgs(FormatMP3))

	assert.Equal(t,
		[]string{"-volume", "80", "-nodisp", "-autoexit", "-loglevel", "quiet", "-f", "s16le", "-ar", "24000", "-ac", "1", "-i", "-"},
		p.buildArgs(FormatPCM))

	assert.Equal(t,
		[]string{"-volume", "80", "-nodisp", "-autoexit", "-loglevel", "quiet", "-f", "s16le", "-ar", "16000", "-ac", "1", "-i", "-"},
		p.buildArgs(pcmFormat(16000)))

	// configured args must not be mutated between calls
	assert.Equal(t, []string{"-volume", "80"}, p.args)
}

func TestCommandPlayerOtherBinary(t *testing.T) {
	p := NewCommandPlayer("mpg123 -q -")
	assert.Equal(t, []string{"-q", "-"}, p.buildArgs(FormatMP3))
}

func TestCommandPlayerRejectsEmptyAudio(t *testing.T) {
	p := NewCommandPlayer("ffplay")
	assert.Error(t, p.Play(context.Background(), &TTSResponse{}))
}

func TestDiscardPlayer(t *testing.T) {
	assert.NoError(t, DiscardPlayer{}.Play(context.Background(), mp3("x")))
}

func TestCommandPlayerPipesAudio(t *testing.T) {
	p := NewCommandPlayer("cat")
	assert.NoError(t, p.Play(context.Background(), mp3("audio")))
}

func TestCommandPlayerReportsStderr(t *testing.T) {
	p := NewCommandPlayer("cat /nonexistent/fala-audio")

	err := p.Play(context.Background(), mp3("audio"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cat failed: exit status 1")
	assert.Contains(t, err.Error(), "/nonexistent/fala-audio")
}

func TestCommandPlayerSerializesPlayback(t *testing.T) {
	p := NewCommandPlayer("sleep 0.2")

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Play(context.Background(), mp3("audio")))
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestPCMSampleRate(t *testing.T) {
	rate, ok := pcmSampleRate(FormatPCM)
	assert.True(t, ok)
	assert.Equal(t, 24000, rate)

	_, ok = pcmSampleRate(FormatMP3)
	assert.False(t, ok)
}
