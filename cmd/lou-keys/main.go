// Package main is the entry point for the lou-keys CLI.
//
// Usage:
//
//	lou-keys [flags] <command> [args]
//
// Commands:
//
//	decode    - Show how note tokens are decoded
//	coords    - Show where the pen goes for a melody
//	profiles  - List keyboard profiles
//	play      - Play a melody on the Line-us
//	export    - Write a melody as a MIDI file
//	listen    - Tap keys live from a MIDI keyboard
//	ports     - List serial ports
package main

import (
	"fmt"
	"os"

	"github.com/chase3718/lou-keys/cmd/lou-keys/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
