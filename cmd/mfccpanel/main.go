// Command mfccpanel renders and inspects MFCC feature matrices.
//
// Usage:
//
//	mfccpanel [flags] <command> [args]
//
// Commands:
//
//	serve      - HTTP control panel
//	extract    - send a WAV clip to the feature service and draw the result
//	render     - draw a matrix stored as CSV
//	stats      - print the summary of a matrix stored as CSV
//	preview    - local dB band spectrogram of a WAV clip
//	train      - upload a labeled wake word sample
//	detect     - ask the service which wake word a clip matches
//	wakewords  - list the trained wake words
//	dataset    - download the wake word dataset archive
//	config     - print the effective configuration
package main

import (
	"fmt"
	"os"

	"github.com/thomasteplick/mfccpanel/cmd/mfccpanel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
