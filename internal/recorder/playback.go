package recorder

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
)

// PlaybackConfig controls tape playback behavior.
type PlaybackConfig struct {
	Dir        string
	FilePrefix string
	// Speed scales the gap between tick timestamps, read as milliseconds.
	// Zero replays as fast as possible.
	Speed       float64
	MaxLineSize int
}

// Clock allows deterministic playback control.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Playback replays tape entries in file order.
type Playback struct {
	cfg   PlaybackConfig
	clock Clock
}

// NewPlayback validates the config and creates a playback engine.
func NewPlayback(cfg PlaybackConfig) (*Playback, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Playback{cfg: cfg, clock: realClock{}}, nil
}

// WithClock swaps the clock implementation.
func (p *Playback) WithClock(clock Clock) *Playback {
	if clock != nil {
		p.clock = clock
	}
	return p
}

// Run replays tape entries and calls the handler for each one.
func (p *Playback) Run(ctx context.Context, handler func(Entry) error) error {
	if handler == nil {
		return errors.Wrap(exception.ErrNilInstance, "playback handler")
	}
	files, err := p.collectFiles()
	if err != nil {
		return err
	}

	var prevTS int64 = -1
	for _, path := range files {
		if err := p.playFile(ctx, path, handler, &prevTS); err != nil {
			return err
		}
	}
	return nil
}

func (c PlaybackConfig) withDefaults() PlaybackConfig {
	if c.FilePrefix == "" {
		c.FilePrefix = defaultFilePrefix
	}
	return c
}

// Validate checks if the config is usable.
func (c PlaybackConfig) Validate() error {
	switch {
	case c.Dir == "":
		return errors.Wrap(exception.ErrInvalidArgument, "playback config: Dir is empty")
	case c.Speed < 0:
		return errors.Wrap(exception.ErrInvalidArgument, "playback config: Speed must be >= 0")
	case c.MaxLineSize < 0:
		return errors.Wrap(exception.ErrInvalidArgument, "playback config: MaxLineSize must be >= 0")
	}
	return nil
}

func (p *Playback) collectFiles() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "read tape dir")
	}
	prefix := p.cfg.FilePrefix + "-"
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, tapeSuffix) {
			continue
		}
		files = append(files, filepath.Join(p.cfg.Dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func (p *Playback) playFile(ctx context.Context, path string, handler func(Entry) error, prevTS *int64) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	reader := NewReader(file, p.cfg.MaxLineSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		e, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrapf(err, "read %s", path)
		}

		if err := p.pace(ctx, e.State.Timestamp, prevTS); err != nil {
			return err
		}
		if err := handler(e); err != nil {
			return err
		}
	}
}

func (p *Playback) pace(ctx context.Context, current int64, prevTS *int64) error {
	if p.cfg.Speed <= 0 {
		return nil
	}
	if *prevTS >= 0 {
		if delta := current - *prevTS; delta > 0 {
			sleep := time.Duration(float64(delta) * float64(time.Millisecond) / p.cfg.Speed)
			if err := p.clock.Sleep(ctx, sleep); err != nil {
				return err
			}
		}
	}
	*prevTS = current
	return nil
}
