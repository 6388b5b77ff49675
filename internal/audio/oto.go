package audio

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"BuddyStudio/internal/errors"
)

const readyTimeout = 3 * time.Second

// A process may only ever hold one oto context, so it is shared by every
// Oto device and opened on first use.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

func openContext(sampleRate int) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		otoErr = err
		return
	}
	select {
	case <-ready:
	case <-time.After(readyTimeout):
		otoErr = errors.New(errors.ErrCodeUnavailable, "audio output not ready after %s", readyTimeout)
		return
	}
	otoCtx, otoRate = ctx, sampleRate
}

var _ Device = (*Oto)(nil)

// Oto plays through github.com/ebitengine/oto.
type Oto struct {
	ctx  *oto.Context
	rate int
}

// NewOto opens the process-wide output. The first caller fixes the sample
// rate; later callers get a device at that rate whatever they ask for.
func NewOto(sampleRate int) (*Oto, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	otoOnce.Do(func() { openContext(sampleRate) })
	if otoErr != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, otoErr, "open audio output")
	}
	return &Oto{ctx: otoCtx, rate: otoRate}, nil
}

func (o *Oto) SampleRate() int { return o.rate }

func (o *Oto) Resume() error {
	if err := o.ctx.Resume(); err != nil {
		return errors.Wrap(errors.ErrCodeNotAllowed, err, "resume audio output")
	}
	return nil
}

// Play starts pcm on a fresh player and returns at once. The player is
// closed when it drains.
func (o *Oto) Play(pcm []byte) error {
	if err := o.ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "audio output failed")
	}
	if len(pcm) == 0 {
		return nil
	}
	p := o.ctx.NewPlayer(bytes.NewReader(pcm))
	p.Play()
	go func() {
		for p.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		_ = p.Close()
	}()
	return nil
}
