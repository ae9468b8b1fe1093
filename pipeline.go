package psxtim

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/psxtim/tim"
	"github.com/pkg/errors"
)

const defaultWorkers = 10

func wanted(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	if _, ok := kindOf(ext); ok {
		return true
	}
	return ext == ".cue"
}

func (l *Library) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !wanted(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// add catalogues the image in b. Anything that fails to decode is logged
// and skipped.
func (l *Library) add(file string, position int, b []byte, kind Kind) error {
	m, err := kind.parser().Parse(b)
	if err != nil {
		l.logger.Printf("Skipping %s at %d in \"%s\": %v\n", kind, position, file, err)
		return nil
	}

	id, err := l.db.AddImage(b, kind, m)
	if err != nil {
		return errors.Wrapf(err, "psxtim: adding \"%s\"", file)
	}

	if err := l.db.AddSource(id, Source{
		Path:     file,
		Position: int64(position),
		CRC:      crcBytes(b),
	}); err != nil {
		return errors.Wrapf(err, "psxtim: adding \"%s\"", file)
	}

	l.logger.Printf("Found %s (%s) at %d in \"%s\"\n", kind, m.PixelData().Mode, position, file)

	return nil
}

func (l *Library) addFile(file string) error {
	ext := strings.ToLower(filepath.Ext(file))

	if kind, ok := kindOf(ext); ok {
		b, err := ioutil.ReadFile(file)
		if err != nil {
			return err
		}
		return l.add(file, 0, b, kind)
	}

	b, bad, err := readDisc(file)
	if err != nil {
		l.logger.Printf("Unable to read disc \"%s\": %v\n", file, err)
		return nil
	}
	if bad > 0 {
		l.logger.Printf("%d sectors in \"%s\" failed EDC check\n", bad, file)
	}

	found := tim.Scan(b)
	if len(found) == 0 {
		l.logger.Printf("No images in \"%s\"\n", file)
	}

	for _, f := range found {
		if err := l.add(file, f.Offset, f.Bytes(b), KindTIM); err != nil {
			return err
		}
	}

	return nil
}

func (l *Library) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := l.addFile(file); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path cataloguing every .tim, .dp and .cue file found using the
// given number of workers, or a default if it's less than one.
func (l *Library) Scan(path string, workers int) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if workers < 1 {
		workers = defaultWorkers
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := l.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errc, err := l.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
