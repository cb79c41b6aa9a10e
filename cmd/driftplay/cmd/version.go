package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/go-drift/player/cmd/driftplay/internal/config"
	"github.com/go-drift/player/pkg/media/mpv"
)

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long: `Show the driftplay version and the version of the mpv binary it will
use, checked against the configured minimum.`,
		Usage: "driftplay version [-config FILE]",
		Run:   runVersion,
	})
}

func printVersion() {
	fmt.Printf("driftplay version %s (built %s)\n", Version, BuildTime)
}

func runVersion(args []string) error {
	opts, err := parsePlayArgs(args)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return err
	}

	printVersion()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, cfg.MPVPath, "--version").Output()
	if err != nil {
		fmt.Printf("mpv: not found (%s)\n", cfg.MPVPath)
		return nil
	}
	v, err := mpv.ParseVersion(string(out))
	if err != nil {
		fmt.Printf("mpv: %v\n", err)
		return nil
	}
	status := "ok"
	if err := mpv.CheckVersion(string(out), cfg.MinMPVVersion); err != nil {
		status = "too old, need " + cfg.MinMPVVersion
	}
	fmt.Printf("mpv: %s (%s)\n", v, status)
	return nil
}
