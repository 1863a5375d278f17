// Package play implements the noteblock player command.
package play

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/noteblock/cmd/common"
	"github.com/gigurra/noteblock/cmd/common/config"
	"github.com/gigurra/noteblock/cmd/jukebox"
	"github.com/gigurra/noteblock/cmd/jukebox/bus"
	"github.com/gigurra/noteblock/cmd/jukebox/catalog"
	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/gigurra/noteblock/cmd/jukebox/speaker"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var ErrNothingToPlay = errors.New("nothing to play")

type Params struct {
	Paths   []string `pos:"true" optional:"true" help:"Song files, directories or archives to queue."`
	Watch   string   `short:"w" optional:"true" help:"Directory to watch; songs added to it are queued and played."`
	Repeat  bool     `short:"r" help:"Start over after the last song."`
	Volume  float64  `optional:"true" help:"Note volume in (0, 1]. Overrides the config file."`
	Print   bool     `short:"p" help:"Print notes instead of playing them."`
	NoTUI   bool     `long:"no-tui" help:"Log progress instead of showing the player."`
	Config  string   `short:"c" optional:"true" help:"Config file (default ~/.noteblock/config.yaml)."`
	Verbose bool     `short:"v" help:"Log every song event."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "play",
		Short:       "Play note block songs",
		Long:        "Queue songs from files, directories and archives and play them in order. Songs ending in .nbs are read as Note Block Studio files.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "play: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

// localName is the directory name of the person at the keyboard.
const localName = "local"

// emitterCloser is the note output of a session.
type emitterCloser interface {
	jukebox.Emitter
	Close()
}

type printOutput struct{ *speaker.Printer }

func (printOutput) Close() {}

// session wires a jukebox to its output, listeners and sources.
type session struct {
	cfg       *config.Config
	bus       *bus.Bus
	directory *listener.Directory
	registry  *jukebox.Registry
	local     listener.ID
	jukebox   *jukebox.Jukebox
	output    emitterCloser
	watcher   *catalog.Watcher

	finishOnce sync.Once
	finished   chan struct{}
	finishErr  error
}

func newSession(cfg *config.Config, output func(local listener.ID) emitterCloser, repeat bool) (*session, error) {
	sounds, err := cfg.SoundTable()
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		bus:       bus.New(),
		directory: listener.NewDirectory(),
		registry:  jukebox.NewRegistry(),
		finished:  make(chan struct{}),
	}
	s.local = s.directory.Connect(localName)
	s.output = output(s.local)
	s.jukebox = jukebox.New(jukebox.Options{
		Bus:           s.bus,
		Emitter:       s.output,
		Resolver:      s.directory,
		Sounds:        sounds,
		Volume:        cfg.Volume,
		Decoder:       catalog.Decode,
		OnDecodeError: cfg.Policy(),
		Repeat:        cfg.Repeat || repeat,
	})
	s.registry.Tune(s.local, s.jukebox)

	s.bus.Subscribe(jukebox.KindQueueFinished, func(f bus.Fact) {
		s.finish(f.(jukebox.QueueFinished).Err)
	})
	s.bus.Subscribe(jukebox.KindSongStarted, func(f bus.Fact) {
		started := f.(jukebox.SongStarted)
		name, _ := s.directory.Name(started.Listener)
		slog.Debug("song started", "song", started.Title, "listener", name)
	})
	s.bus.Subscribe(jukebox.KindSongFailed, func(f bus.Fact) {
		failed := f.(jukebox.SongFailed)
		slog.Debug("song failed", "position", failed.Position, "song", failed.Name)
	})
	if cfg.Notify {
		newNotifier(s.local, sendNotification).subscribe(s.bus)
	}
	return s, nil
}

func (s *session) finish(err error) {
	s.finishOnce.Do(func() {
		s.finishErr = err
		close(s.finished)
	})
}

// watch queues songs appearing in dir. A song arriving while the jukebox is
// idle starts right away.
func (s *session) watch(dir string) error {
	w, err := catalog.NewWatcher(dir, s.cfg.Extensions, func(r jukebox.Resource) {
		s.jukebox.Enqueue(r)
		slog.Info("queued", "song", r.Name())
		if s.jukebox.IsStopped() {
			if err := s.jukebox.PlayAt(len(s.jukebox.Queue()) - 1); err != nil {
				slog.Warn("cannot play new song", "song", r.Name(), "error", err)
			}
		}
	})
	if err != nil {
		return err
	}
	s.watcher = w
	w.StartAsync()
	return nil
}

func (s *session) close() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.registry.Forget(s.jukebox)
	s.jukebox.Close()
	s.directory.Disconnect(s.local)
	s.output.Close()
}

// Run plays the queue described by params until it finishes, the user quits
// or the process is interrupted.
func Run(params *Params, stdout io.Writer) error {
	common.SetupLogging(params.Verbose)

	cfg, err := config.Load(params.Config)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	if params.Volume != 0 {
		cfg.Volume = params.Volume
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	songs, err := catalog.Resolve(ctx, params.Paths, cfg.Extensions)
	if err != nil {
		return err
	}
	if len(songs) == 0 && params.Watch == "" {
		return ErrNothingToPlay
	}

	tui := !params.Print && !params.NoTUI && isTerminal(stdout)
	noteOut := stdout
	if tui {
		// the player owns the terminal
		noteOut = io.Discard
		common.SetupLoggingTo(io.Discard, params.Verbose)
	}

	s, err := newSession(cfg, outputFor(params.Print, noteOut), params.Repeat)
	if err != nil {
		return err
	}
	defer s.close()

	s.jukebox.Enqueue(songs...)
	if params.Watch != "" {
		if err := s.watch(params.Watch); err != nil {
			return err
		}
	}
	if len(songs) > 0 {
		if err := s.jukebox.Play(); err != nil {
			return err
		}
	}

	// Only a watching player outlives its queue.
	finished := s.finished
	if params.Watch != "" {
		finished = nil
	}

	if tui {
		return runTUI(ctx, s.jukebox, finished)
	}

	select {
	case <-ctx.Done():
		slog.Info("interrupted")
		return nil
	case <-finished:
		return s.finishErr
	}
}

// outputFor picks where notes go: the speaker, or text on stdout when
// printing was asked for or there is no audio device.
func outputFor(printNotes bool, stdout io.Writer) func(listener.ID) emitterCloser {
	return func(local listener.ID) emitterCloser {
		if !printNotes {
			out, err := speaker.New(local)
			if err == nil {
				return out
			}
			slog.Warn("no audio output, printing notes instead", "error", err)
		}
		return printOutput{speaker.NewPrinter(stdout, local)}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
