// lrcparse - LRC lyric decoder
//
// lrcparse decodes LRC lyric files into timed intervals, reports which files
// are not LRC, and keeps a searchable catalog of decoded lyrics.
package main

import (
	"os"

	"github.com/ccollicutt/lrcparse/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
