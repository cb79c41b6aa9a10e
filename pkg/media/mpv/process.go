package mpv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Config configures Start.
type Config struct {
	// Path is the mpv binary. Defaults to "mpv" on PATH.
	Path string
	// MinVersion rejects older binaries. Empty skips the check.
	MinVersion string
	// Args are appended to the default arguments.
	Args []string
	// Dispatch is passed to the element.
	Dispatch func(func())
	// StartTimeout bounds waiting for the IPC socket. Defaults to 5s.
	StartTimeout time.Duration
}

// BaseArgs are the arguments every managed mpv is started with: idle with
// no file, paused until asked to play, and held on the last frame at the
// end so the element can report ended rather than unloading.
func BaseArgs(socket string) []string {
	return []string{
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
		"--force-window=yes",
		"--no-terminal",
		"--input-ipc-server=" + socket,
	}
}

// SocketPath returns a fresh IPC socket path in the temp directory.
func SocketPath() string {
	return filepath.Join(os.TempDir(), "driftplay-"+uuid.NewString()+".sock")
}

// Start launches mpv and returns an element connected to it. Closing the
// element quits the process.
func Start(ctx context.Context, cfg Config) (*Element, error) {
	path := cfg.Path
	if path == "" {
		path = "mpv"
	}
	if cfg.MinVersion != "" {
		out, err := exec.CommandContext(ctx, path, "--version").Output()
		if err != nil {
			return nil, fmt.Errorf("mpv: %s --version: %w", path, err)
		}
		if err := CheckVersion(string(out), cfg.MinVersion); err != nil {
			return nil, err
		}
	}

	socket := SocketPath()
	cmd := exec.Command(path, append(BaseArgs(socket), cfg.Args...)...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("mpv: start: %w", err)
	}
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	kill := func() {
		cmd.Process.Kill()
		<-exited
		os.Remove(socket)
	}

	timeout := cfg.StartTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := Dial(dialCtx, socket)
	if err != nil {
		kill()
		return nil, err
	}
	el, err := NewElement(conn, ElementOptions{Dispatch: cfg.Dispatch})
	if err != nil {
		conn.Close()
		kill()
		return nil, err
	}
	el.onClose = func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		conn.Command(ctx, "quit")
		select {
		case <-exited:
			os.Remove(socket)
		case <-time.After(2 * time.Second):
			kill()
		}
		return nil
	}
	return el, nil
}
