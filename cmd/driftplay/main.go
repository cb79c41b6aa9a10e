// Command driftplay plays episodes in mpv with the drift player's
// controls, previews and progress tracking.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/player/cmd/driftplay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
