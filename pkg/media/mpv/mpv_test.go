package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/player/pkg/audio"
	"github.com/go-drift/player/pkg/clock"
	"github.com/go-drift/player/pkg/media"
	"github.com/go-drift/player/pkg/player"
	drifttest "github.com/go-drift/player/pkg/testing"
)

// fakeMPV answers IPC commands on one end of a pipe.
type fakeMPV struct {
	conn net.Conn
	fail map[string]string

	writeMu sync.Mutex
	got     chan string
}

func newFake(t *testing.T, fail map[string]string) (*fakeMPV, *Conn) {
	t.Helper()
	client, server := net.Pipe()
	f := &fakeMPV{conn: server, fail: fail, got: make(chan string, 64)}
	go f.serve()
	conn := NewConn(client)
	t.Cleanup(func() {
		server.Close()
		conn.Close()
	})
	return f, conn
}

func (f *fakeMPV) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil || len(req.Command) == 0 {
			continue
		}
		name := fmt.Sprint(req.Command[0])
		reply := map[string]any{"request_id": req.RequestID, "error": "success", "data": nil}
		if msg, ok := f.fail[name]; ok {
			reply["error"] = msg
		}
		if name != "observe_property" {
			f.got <- join(req.Command)
		}
		f.write(reply)
	}
}

func join(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}

func (f *fakeMPV) write(v any) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	line, _ := json.Marshal(v)
	f.conn.Write(append(line, '\n'))
}

func (f *fakeMPV) property(id int, name string, data any) {
	f.write(map[string]any{"event": "property-change", "id": id, "name": name, "data": data})
}

func (f *fakeMPV) next(t *testing.T) string {
	t.Helper()
	select {
	case c := <-f.got:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a command")
		return ""
	}
}

func newElement(t *testing.T, fail map[string]string) (*fakeMPV, *Element, chan media.Event) {
	t.Helper()
	f, conn := newFake(t, fail)
	el, err := NewElement(conn, ElementOptions{CommandTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}
	events := make(chan media.Event, 64)
	el.SetEventHandler(func(ev media.Event) { events <- ev })
	return f, el, events
}

func nextEvent(t *testing.T, events chan media.Event) media.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return media.Event{}
	}
}

func TestElementCommands(t *testing.T) {
	f, el, _ := newElement(t, nil)

	tests := []struct {
		call func() error
		want []string
	}{
		{func() error { return el.Load("ep1.mp4") }, []string{"set_property pause true", "loadfile ep1.mp4 replace"}},
		{el.Pause, []string{"set_property pause true"}},
		{el.Play, []string{"set_property pause false"}},
		{func() error { return el.SetCurrentTime(30) }, []string{"seek 30 absolute"}},
		{func() error { return el.SetVolume(0.25) }, []string{"set_property volume 25"}},
		{func() error { return el.SetMuted(true) }, []string{"set_property mute true"}},
		{func() error { return el.SetPlaybackRate(1.5) }, []string{"set_property speed 1.5"}},
		{func() error { return el.SetFullscreen(true) }, []string{"set_property fullscreen true"}},
		{func() error { return el.Load("") }, []string{"set_property pause true", "stop"}},
	}
	for _, tt := range tests {
		if err := tt.call(); err != nil {
			t.Fatalf("%s: %v", tt.want, err)
		}
		for _, want := range tt.want {
			if got := f.next(t); got != want {
				t.Errorf("command: got %q, want %q", got, want)
			}
		}
	}
}

func TestElementEvents(t *testing.T) {
	f, el, events := newElement(t, nil)
	el.Load("ep1.mp4")
	f.next(t)
	f.next(t)
	f.write(map[string]any{"event": "start-file"})

	f.property(propDuration, "duration", 120.5)
	if ev := nextEvent(t, events); ev.Type != media.EventLoadedMetadata {
		t.Errorf("duration: got %v, want loadedmetadata", ev.Type)
	}
	if got := el.Duration(); got != 120.5 {
		t.Errorf("Duration: got %v, want 120.5", got)
	}

	f.property(propPause, "pause", false)
	if ev := nextEvent(t, events); ev.Type != media.EventPlay {
		t.Errorf("pause=false: got %v, want play", ev.Type)
	}
	f.property(propTimePos, "time-pos", 12.0)
	if ev := nextEvent(t, events); ev.Type != media.EventTimeUpdate {
		t.Errorf("time-pos: got %v, want timeupdate", ev.Type)
	}
	if got := el.CurrentTime(); got != 12 {
		t.Errorf("CurrentTime: got %v, want 12", got)
	}

	f.property(propVolume, "volume", 50.0)
	if ev := nextEvent(t, events); ev.Type != media.EventVolumeChange {
		t.Errorf("volume: got %v, want volumechange", ev.Type)
	}
	if got := el.Volume(); got != 0.5 {
		t.Errorf("Volume: got %v, want 0.5", got)
	}

	f.property(propCacheState, "demuxer-cache-state", map[string]any{
		"seekable-ranges": []map[string]float64{{"start": 0, "end": 40}},
	})
	f.property(propPausedForCache, "paused-for-cache", true)
	if ev := nextEvent(t, events); ev.Type != media.EventWaiting {
		t.Errorf("paused-for-cache: got %v, want waiting", ev.Type)
	}
	if got := el.Buffered(); len(got) != 1 || got[0] != (media.TimeRange{Start: 0, End: 40}) {
		t.Errorf("Buffered: got %v, want [0 40]", got)
	}

	f.property(propEOFReached, "eof-reached", true)
	if ev := nextEvent(t, events); ev.Type != media.EventEnded {
		t.Errorf("eof-reached: got %v, want ended", ev.Type)
	}
	if !el.Ended() {
		t.Error("Ended: got false, want true")
	}

	f.write(map[string]any{"event": "end-file", "reason": "error", "file_error": "loading failed"})
	ev := nextEvent(t, events)
	if ev.Type != media.EventError || ev.Code != media.ErrCodeSourceError || ev.Message != "loading failed" {
		t.Errorf("end-file: got %+v", ev)
	}
}

func TestLoadPausesPlayingElement(t *testing.T) {
	f, el, events := newElement(t, nil)
	f.property(propPause, "pause", false)
	if ev := nextEvent(t, events); ev.Type != media.EventPlay {
		t.Fatalf("pause=false: got %v, want play", ev.Type)
	}

	if err := el.Load("ep2.mp4"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := f.next(t); got != "set_property pause true" {
		t.Errorf("first Load command: got %q, want set_property pause true", got)
	}
	if got := f.next(t); got != "loadfile ep2.mp4 replace" {
		t.Errorf("second Load command: got %q, want loadfile", got)
	}
	if ev := nextEvent(t, events); ev.Type != media.EventPause {
		t.Errorf("Load while playing: got %v, want pause", ev.Type)
	}
	if !el.Paused() {
		t.Error("Paused after Load: got false, want true")
	}

	// mpv confirms the pause; the cached value already matches.
	f.property(propPause, "pause", true)
	f.property(propSpeed, "speed", 2.0)
	if ev := nextEvent(t, events); ev.Type != media.EventRateChange {
		t.Errorf("after confirmed pause: got %v, want ratechange", ev.Type)
	}
}

func TestLoadDropsPreviousFileValues(t *testing.T) {
	f, el, events := newElement(t, nil)
	el.Load("ep1.mp4")
	f.write(map[string]any{"event": "start-file"})
	f.property(propTimePos, "time-pos", 1300.0)
	if ev := nextEvent(t, events); ev.Type != media.EventTimeUpdate {
		t.Fatalf("ep1 time-pos: got %v, want timeupdate", ev.Type)
	}

	el.Load("ep2.mp4")
	f.property(propTimePos, "time-pos", 1310.0)
	f.property(propDuration, "duration", 1400.0)
	f.property(propEOFReached, "eof-reached", true)
	f.write(map[string]any{"event": "start-file"})
	f.property(propTimePos, "time-pos", 3.0)

	if ev := nextEvent(t, events); ev.Type != media.EventTimeUpdate {
		t.Errorf("first ep2 event: got %v, want timeupdate", ev.Type)
	}
	if got := el.CurrentTime(); got != 3 {
		t.Errorf("CurrentTime: got %v, want 3", got)
	}
	if got := el.Duration(); got != 0 {
		t.Errorf("Duration: got %v, want 0 until ep2 reports one", got)
	}
	if el.Ended() {
		t.Error("Ended: got true from the previous file")
	}
}

// TestPlayerFollowsElementAcrossSources drives a player over mpv through
// an episode change. mpv keeps its pause state across loadfile, so the
// play request for the second episode only produces an event if Load
// paused first.
func TestPlayerFollowsElementAcrossSources(t *testing.T) {
	f, conn := newFake(t, nil)
	loop := clock.NewLoop(0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	el, err := NewElement(conn, ElementOptions{Dispatch: loop.Dispatch, CommandTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}
	onLoop := func(fn func()) {
		done := make(chan struct{})
		loop.Post(func() {
			defer close(done)
			fn()
		})
		<-done
	}
	var p *player.Player
	waitPlaying := func() bool {
		deadline := time.Now().Add(2 * time.Second)
		for {
			var playing bool
			onLoop(func() { playing = p.State().Playing })
			if playing || time.Now().After(deadline) {
				return playing
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
	expect := func(want ...string) {
		t.Helper()
		for _, w := range want {
			if got := f.next(t); got != w {
				t.Errorf("command: got %q, want %q", got, w)
			}
		}
	}

	onLoop(func() {
		p = player.New(el, player.Options{Clock: drifttest.NewFakeClock(), Dispatch: loop.Dispatch})
		p.SetProps(player.Props{StreamURL: "ep1.mp4"})
		p.Play()
	})
	expect("set_property pause true", "loadfile ep1.mp4 replace", "set_property pause false")
	f.write(map[string]any{"event": "start-file"})
	f.property(propPause, "pause", false)
	if !waitPlaying() {
		t.Fatal("Playing after first episode: got false, want true")
	}

	onLoop(func() {
		p.SetProps(player.Props{StreamURL: "ep2.mp4"})
		p.Play()
	})
	expect("set_property pause true", "loadfile ep2.mp4 replace", "set_property pause false")
	f.property(propPause, "pause", true)
	f.write(map[string]any{"event": "start-file"})
	f.property(propPause, "pause", false)
	if !waitPlaying() {
		t.Error("Playing after source change: got false, want true")
	}
	if el.Paused() {
		t.Error("element Paused after source change: got true, want false")
	}
}

func TestElementIgnoresUnchangedInitialValues(t *testing.T) {
	f, _, events := newElement(t, nil)
	f.property(propPause, "pause", true)
	f.property(propSpeed, "speed", 1.0)
	f.property(propTimePos, "time-pos", nil)
	f.property(propSpeed, "speed", 2.0)
	if ev := nextEvent(t, events); ev.Type != media.EventRateChange {
		t.Errorf("first event: got %v, want ratechange", ev.Type)
	}
}

func TestElementSeeked(t *testing.T) {
	f, el, events := newElement(t, nil)
	f.write(map[string]any{"event": "playback-restart"})
	el.SetCurrentTime(5)
	f.next(t)
	f.write(map[string]any{"event": "playback-restart"})
	if ev := nextEvent(t, events); ev.Type != media.EventSeeked {
		t.Errorf("after seek: got %v, want seeked", ev.Type)
	}
}

func TestCommandError(t *testing.T) {
	_, el, _ := newElement(t, map[string]string{"seek": "property unavailable"})
	err := el.SetCurrentTime(3)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("SetCurrentTime: got %v, want *CommandError", err)
	}
	if cmdErr.Command != "seek" || cmdErr.Message != "property unavailable" {
		t.Errorf("CommandError: got %+v", cmdErr)
	}
}

func TestElementClose(t *testing.T) {
	_, el, _ := newElement(t, nil)
	if err := el.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := el.Play(); !errors.Is(err, media.ErrClosed) {
		t.Errorf("Play after Close: got %v, want ErrClosed", err)
	}
	if _, err := el.AudioFactory()(); !errors.Is(err, media.ErrClosed) {
		t.Errorf("AudioFactory after Close: got %v, want ErrClosed", err)
	}
}

func TestConnClosedFailsPending(t *testing.T) {
	client, server := net.Pipe()
	conn := NewConn(client)
	go func() {
		bufio.NewReader(server).ReadString('\n')
		server.Close()
	}()
	_, err := conn.Command(t.Context(), "get_property", "pause")
	if !errors.Is(err, ErrConnClosed) {
		t.Errorf("Command: got %v, want ErrConnClosed", err)
	}
	conn.Close()
}

func TestFilterGraph(t *testing.T) {
	got := FilterGraph(audio.StableVoiceChain)
	want := "lavfi=[acompressor=threshold=0.0630957:knee=8:ratio=12:attack=3:release=250,volume=1.4]"
	if got != want {
		t.Errorf("FilterGraph:\n got %s\nwant %s", got, want)
	}
}

func TestAudioContextRoute(t *testing.T) {
	f, el, _ := newElement(t, nil)
	ctx, err := el.AudioFactory()()
	if err != nil {
		t.Fatalf("AudioFactory: %v", err)
	}
	if ctx.State() != audio.StateRunning {
		t.Errorf("State: got %v, want running", ctx.State())
	}
	if err := ctx.Disconnect(); err != nil {
		t.Errorf("Disconnect before Route: %v", err)
	}
	if err := ctx.Route(audio.StableVoiceChain); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if got := f.next(t); !strings.HasPrefix(got, "af add @driftsv:lavfi=[acompressor") {
		t.Errorf("Route command: got %q", got)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := f.next(t); got != "af remove @driftsv" {
		t.Errorf("Close command: got %q, want af remove @driftsv", got)
	}
	if err := ctx.Route(audio.StableVoiceChain); err == nil {
		t.Error("Route after Close: expected an error")
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		output  string
		want    string
		wantErr bool
	}{
		{"mpv 0.36.0 Copyright © 2000-2023 mpv/MPlayer/mplayer2 projects\n", "v0.36.0", false},
		{"mpv v0.37.0-512-gabc1234 Copyright", "v0.37.0-512-gabc1234", false},
		{"mpv 0.34 Copyright", "v0.34", false},
		{"not a player", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q): err = %v, wantErr %v", tt.output, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q): got %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		output string
		ok     bool
	}{
		{"mpv 0.36.0 Copyright", true},
		{"mpv 0.33.0 Copyright", true},
		{"mpv v0.33.0-12-gdeadbee Copyright", true},
		{"mpv 0.32.0 Copyright", false},
		{"mpv 0.29 Copyright", false},
	}
	for _, tt := range tests {
		err := CheckVersion(tt.output, MinVersion)
		if (err == nil) != tt.ok {
			t.Errorf("CheckVersion(%q): got %v, want ok=%v", tt.output, err, tt.ok)
		}
	}
}

func TestBaseArgs(t *testing.T) {
	args := strings.Join(BaseArgs("/tmp/x.sock"), " ")
	for _, want := range []string{"--idle=yes", "--pause=yes", "--keep-open=yes", "--input-ipc-server=/tmp/x.sock"} {
		if !strings.Contains(args, want) {
			t.Errorf("BaseArgs: %q missing %s", args, want)
		}
	}
	if a, b := SocketPath(), SocketPath(); a == b {
		t.Errorf("SocketPath: got %q twice", a)
	}
}
