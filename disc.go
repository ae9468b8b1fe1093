package psxtim

import (
	"fmt"
	"hash/crc32"
	"io/ioutil"
	"path/filepath"

	"github.com/bodgit/psxtim/edc"
	"github.com/pkg/errors"
	"github.com/vchimishuk/chub/cue"
)

const (
	rawSectorSize = 2352
	userDataSize  = 2048
	// Sync, address and mode
	mode1Header = 16
	// Mode 1 header plus the XA subheader
	mode2Header = 24
)

var errAudioOnly = errors.New("psxtim: audio-only discs have no data track")

func firstDataTrack(sheet *cue.Sheet) (string, cue.TrackDataType, error) {
	for _, file := range sheet.Files {
		for _, track := range file.Tracks {
			switch track.DataType {
			case cue.DataTypeMode1_2048, cue.DataTypeMode1_2352, cue.DataTypeMode2_2352:
				return file.Name, track.DataType, nil
			}
		}
	}
	return "", cue.DataTypeAudio, errAudioOnly
}

// Strip the per-sector framing leaving just the user data, counting any
// sectors that fail their EDC check
func userData(b []byte, header int) ([]byte, int) {
	out := make([]byte, 0, len(b)/rawSectorSize*userDataSize)
	bad := 0
	for off := 0; off+rawSectorSize <= len(b); off += rawSectorSize {
		if !edc.Verify(b[off : off+rawSectorSize]) {
			bad++
		}
		out = append(out, b[off+header:off+header+userDataSize]...)
	}
	return out, bad
}

func readDisc(file string) ([]byte, int, error) {
	sheet, err := cue.ParseFile(file)
	if err != nil {
		return nil, 0, err
	}

	fileName, dataType, err := firstDataTrack(sheet)
	if err != nil {
		return nil, 0, err
	}

	b, err := ioutil.ReadFile(filepath.Join(filepath.Dir(file), fileName))
	if err != nil {
		return nil, 0, errors.Wrapf(err, "psxtim: reading track for \"%s\"", file)
	}

	switch dataType {
	case cue.DataTypeMode1_2352:
		b, bad := userData(b, mode1Header)
		return b, bad, nil
	case cue.DataTypeMode2_2352:
		b, bad := userData(b, mode2Header)
		return b, bad, nil
	default:
		return b, 0, nil
	}
}

// ReadDisc returns the user data of the first data track referenced by the
// cue sheet in file. The whole track is held in memory. Sectors that fail
// their EDC check are still returned.
func ReadDisc(file string) ([]byte, error) {
	b, _, err := readDisc(file)
	return b, err
}

func crcBytes(b []byte) string {
	return fmt.Sprintf("%.*X", crc32.Size<<1, crc32.ChecksumIEEE(b))
}
