// afv - Android audio playback viewer
//
// afv reads the audio_flinger dump of an Android device and reports which
// applications are playing audio, over adb, a local shell or a saved dump.
package main

import (
	"os"

	"github.com/tl/afv/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
