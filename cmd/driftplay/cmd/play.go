package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/go-drift/player/cmd/driftplay/internal/config"
	"github.com/go-drift/player/cmd/driftplay/internal/progress"
	"github.com/go-drift/player/pkg/clock"
	"github.com/go-drift/player/pkg/errors"
	"github.com/go-drift/player/pkg/media/ffmpeg"
	"github.com/go-drift/player/pkg/media/mpv"
	"github.com/go-drift/player/pkg/player"
)

func init() {
	RegisterCommand(&Command{
		Name:  "play",
		Short: "Play episodes",
		Long: `Play one or more episodes in mpv.

Episodes come from the URLs on the command line or, when none are given,
from the episodes list in the config file. Playback resumes where the
episode was last stopped.

Flags:
  -config FILE    Config file (default: driftplay.yaml)
  -episode N      Start at episode N (1-based)

Keys:
  space, k        play/pause
  j, l, arrows    seek 10s, volume
  f, m            fullscreen, mute
  n, p            next/previous episode
  < >             playback rate
  a, s            ambient colour, stable voice
  i, o            skip intro/outro
  v, r            next quality, next server
  enter, c        play next now, cancel auto-advance
  q               quit`,
		Usage: "driftplay play [-config FILE] [-episode N] [URL...]",
		Run:   runPlay,
	})
}

type playOptions struct {
	configPath string
	episode    int
	urls       []string
}

func parsePlayArgs(args []string) (playOptions, error) {
	opts := playOptions{configPath: config.DefaultFile, episode: 1}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-config" || arg == "--config":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a file path", arg)
			}
			opts.configPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			opts.configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "-episode" || arg == "--episode":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a number", arg)
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 1 {
				return opts, fmt.Errorf("invalid episode number %q", args[i+1])
			}
			opts.episode = n
			i++
		default:
			opts.urls = append(opts.urls, arg)
		}
	}
	return opts, nil
}

func runPlay(args []string) error {
	opts, err := parsePlayArgs(args)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
	}
	episodes := cfg.Episodes
	if len(opts.urls) > 0 {
		episodes = config.EpisodesFromURLs(opts.urls)
	}
	if len(episodes) == 0 {
		return fmt.Errorf("nothing to play: pass URLs or list episodes in %s", opts.configPath)
	}
	if opts.episode > len(episodes) {
		return fmt.Errorf("episode %d out of range (have %d)", opts.episode, len(episodes))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := progress.Open(cfg.ProgressDB)
	if err != nil {
		return err
	}
	defer store.Close()

	loop := clock.NewLoop(0)
	el, err := mpv.Start(ctx, mpv.Config{
		Path:       cfg.MPVPath,
		MinVersion: cfg.MinMPVVersion,
		Dispatch:   loop.Dispatch,
	})
	if err != nil {
		return err
	}
	defer el.Close()

	fs := &fullscreen{el: el, dispatch: loop.Dispatch}
	p := player.New(el, player.Options{
		Clock:        clock.System(loop.Dispatch),
		Dispatch:     loop.Dispatch,
		Sampler:      &ffmpeg.Sampler{Path: cfg.FFmpegPath, Width: player.PreviewWidth},
		AudioFactory: el.AudioFactory(),
		Fullscreen:   fs,
	})
	fs.player = p

	s := &session{
		cfg:      cfg,
		episodes: episodes,
		player:   p,
		store:    store,
		recorder: progress.NewRecorder(store, cfg.ProgressInterval),
		dispatch: loop.Dispatch,
		quit:     cancel,
		out:      os.Stdout,
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		// Deferred first so the held records print after the terminal is
		// restored.
		defer holdLogs(os.Stderr)()
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer term.Restore(fd, old)
	}
	go readKeys(os.Stdin, func(key string) { loop.Dispatch(func() { s.key(key) }) })

	loop.Post(func() { s.start(opts.episode - 1) })
	loop.Run(ctx)

	s.recorder.Flush()
	p.Dispose()
	fmt.Fprintln(s.out, "\r")
	return nil
}

func readKeys(r io.Reader, emit func(string)) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, k := range decodeKeys(buf[:n]) {
			emit(k)
		}
		if err != nil {
			return
		}
	}
}

// fullscreen toggles mpv's window and reports the change back to the
// player on the loop.
type fullscreen struct {
	el       *mpv.Element
	player   *player.Player
	dispatch func(func())
}

func (f *fullscreen) RequestFullscreen() error { return f.set(true) }
func (f *fullscreen) ExitFullscreen() error    { return f.set(false) }

func (f *fullscreen) set(on bool) error {
	if err := f.el.SetFullscreen(on); err != nil {
		return err
	}
	f.dispatch(func() { f.player.FullscreenChanged(on) })
	return nil
}

// session owns the episode list and maps keys to player actions. All of
// its methods run on the loop.
type session struct {
	cfg      *config.Resolved
	episodes []config.Episode
	index    int
	player   *player.Player
	store    *progress.Store
	recorder *progress.Recorder
	dispatch func(func())
	quit     func()
	out      io.Writer
	lastLine string
}

func (s *session) start(index int) {
	s.player.SetVolume(s.cfg.Volume)
	s.player.SetAmbient(s.cfg.Ambient)
	s.player.SetStableVoice(s.cfg.StableVoice)
	s.player.AddListener(s.render)
	s.load(index)
}

func (s *session) load(index int) {
	ep := s.episodes[index]
	s.index = index
	key := ep.Key()

	resume := 0.0
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	entry, ok, err := s.store.Get(ctx, key)
	cancel()
	if err != nil {
		errors.Report(&errors.PlayerError{Op: "progress.Get", Kind: errors.KindBackend, Source: key, Err: err})
	} else if ok {
		resume = entry.ResumeAt()
	}

	options := ep.QualityOptions()
	q, srv, _ := player.ResolveSelection(options, "", "")
	props := player.Props{
		StreamURL: srv.StreamURL,
		Title:     ep.Title,
		OnTimeUpdate: func(t, d float64) {
			s.recorder.Record(key, t, d)
		},
		InitialSeekSeconds: resume,
		Intro:              ep.IntroWindow(),
		Outro:              ep.OutroWindow(),
		DisableAutoAdvance: !s.cfg.AutoAdvance,
		QualityOptions:     options,
		ActiveQuality:      q.Label,
		ActiveServer:       srv.Name,
	}
	if index+1 < len(s.episodes) {
		props.OnNext = func() { s.dispatch(func() { s.load(index + 1) }) }
	}
	if index > 0 {
		props.OnPrevious = func() { s.dispatch(func() { s.load(index - 1) }) }
	}
	s.player.SetProps(props)
	s.player.Play()
}

func (s *session) key(name string) {
	p := s.player
	st := p.State()
	switch name {
	case "q", keyCtrlC:
		s.quit()
	case " ":
		p.KeyDown(player.KeyEvent{Key: player.KeySpace})
		p.KeyUp(player.KeyEvent{Key: player.KeySpace})
	case "<", ">":
		step := 1
		if name == "<" {
			step = -1
		}
		p.SetRate(stepRate(st.Rate, step))
	case "a":
		p.ToggleAmbient()
	case "s":
		p.ToggleStableVoice()
	case "i":
		if st.ShowSkipIntro {
			p.SkipIntro()
		}
	case "o":
		if st.ShowSkipOutro {
			p.SkipOutro()
		}
	case "v":
		p.SelectQuality(nextQuality(p.Props()))
	case "r":
		p.SelectServer(nextServer(p.Props(), p.Servers()))
	case keyEnter:
		if st.AutoAdvance.Armed {
			p.PlayNextNow()
		}
	case "c":
		p.CancelAutoAdvance()
	case keyEscape:
		p.DismissNotice()
		p.CloseSettings()
	default:
		p.KeyDown(player.KeyEvent{Key: name})
	}
}

func stepRate(current float64, step int) float64 {
	for i, r := range player.Rates {
		if r == current {
			j := min(max(i+step, 0), len(player.Rates)-1)
			return player.Rates[j]
		}
	}
	return 1
}

func nextQuality(props player.Props) string {
	opts := props.QualityOptions
	for i, q := range opts {
		if q.Label == props.ActiveQuality {
			return opts[(i+1)%len(opts)].Label
		}
	}
	if len(opts) > 0 {
		return opts[0].Label
	}
	return ""
}

func nextServer(props player.Props, servers []player.ServerOption) string {
	for i, srv := range servers {
		if srv.Name == props.ActiveServer {
			return servers[(i+1)%len(servers)].Name
		}
	}
	if len(servers) > 0 {
		return servers[0].Name
	}
	return ""
}

func (s *session) render(st player.State) {
	line := statusLine(s.episodes[s.index].Title, s.player.Props().ActiveQuality, st)
	if line == s.lastLine {
		return
	}
	s.lastLine = line
	fmt.Fprintf(s.out, "\r\x1b[2K%s", line)
}

// statusLine renders one terminal line for st.
func statusLine(title, quality string, st player.State) string {
	var b strings.Builder
	if st.AmbientEnabled {
		fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm  \x1b[0m ", st.Glow.R, st.Glow.G, st.Glow.B)
	}
	if st.NoStream {
		fmt.Fprintf(&b, "%s  No stream available", title)
		return b.String()
	}

	icon := "||"
	if st.Playing {
		icon = "> "
	}
	fmt.Fprintf(&b, "%s %s  %s / %s", icon, title,
		player.FormatTime(st.CurrentTime), player.FormatTime(st.Duration))

	var tags []string
	if quality != "" {
		tags = append(tags, quality)
	}
	if rate := st.EffectiveRate(); rate != 1 {
		tags = append(tags, strconv.FormatFloat(rate, 'g', -1, 64)+"x")
	}
	if st.Muted {
		tags = append(tags, "muted")
	} else {
		tags = append(tags, fmt.Sprintf("vol %d%%", int(st.Volume*100+0.5)))
	}
	if st.StableVoice {
		tags = append(tags, "stable voice")
	}
	if st.Loading || !st.BufferHealthy {
		tags = append(tags, "buffering")
	}
	fmt.Fprintf(&b, "  [%s]", strings.Join(tags, ", "))

	switch {
	case st.AutoAdvance.Armed:
		fmt.Fprintf(&b, "  Next episode in %d (enter: now, c: cancel)", st.AutoAdvance.Countdown)
	case st.ShowSkipIntro:
		b.WriteString("  i: skip intro")
	case st.ShowSkipOutro:
		b.WriteString("  o: skip outro")
	}
	if st.Notice != "" {
		b.WriteString("  " + st.Notice)
	}
	return b.String()
}
