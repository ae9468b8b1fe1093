package psxtim

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/psxtim/tim"
)

// Extract finds every TIM image inside file, which can be a cue sheet or
// any other binary, and writes each one to dir named after its offset. It
// returns the images found.
func (l *Library) Extract(file, dir string) ([]tim.Found, error) {
	var b []byte
	var err error
	if strings.ToLower(filepath.Ext(file)) == ".cue" {
		b, err = ReadDisc(file)
	} else {
		b, err = ioutil.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	found := tim.Scan(b)
	for _, f := range found {
		name := filepath.Join(dir, fmt.Sprintf("%08X.tim", f.Offset))
		if err := ioutil.WriteFile(name, f.Bytes(b), 0644); err != nil {
			return nil, err
		}
		l.logger.Printf("Extracted %s %dx%d to \"%s\"\n", f.Image.Flags.PixelMode, f.Image.Pixels.Width, f.Image.Pixels.Height, name)
	}

	return found, nil
}
