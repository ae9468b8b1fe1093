package psxtim

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"

	"github.com/bodgit/psxtim/render"
	"github.com/bodgit/psxtim/tim"
	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// ImageDB stores each distinct image once, rendered as a PNG, along with
// every place it was found.
type ImageDB struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Entry is a catalogued image.
type Entry struct {
	Hash     string
	Kind     Kind
	Mode     tim.PixelMode
	Width    int
	Height   int
	Palettes int
	Sources  []Source
}

// Source is one occurrence of an image. Position is the byte offset within
// the file, or within the data track user data for disc images.
type Source struct {
	Path     string
	Position int64
	CRC      string
}

// NewImageDB opens or creates the database in file
func NewImageDB(file string) (*ImageDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=10000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, hash TEXT NOT NULL UNIQUE, kind INTEGER NOT NULL, mode INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, palettes INTEGER NOT NULL, png BLOB NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS source (image_id INTEGER NOT NULL, path TEXT NOT NULL, position INTEGER NOT NULL, crc TEXT NOT NULL, UNIQUE(path, position), FOREIGN KEY(image_id) REFERENCES image(id))"); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	return &ImageDB{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

// Close closes the database
func (db *ImageDB) Close() error {
	db.dec.Close()
	if err := db.enc.Close(); err != nil {
		return err
	}
	return db.db.Close()
}

// Hash returns the key used to store the raw image bytes in b
func Hash(b []byte) string {
	return fmt.Sprintf("%016X", xxhash.Sum64(b))
}

// AddImage stores m, decoded from b, unless an image with the same bytes is
// already present. It returns the row id either way.
func (db *ImageDB) AddImage(b []byte, kind Kind, m tim.Image) (int64, error) {
	hash := Hash(b)

	var id int64
	switch err := db.db.QueryRow("SELECT id FROM image WHERE hash = ?", hash).Scan(&id); err {
	case sql.ErrNoRows:
	case nil:
		return id, nil
	default:
		return 0, err
	}

	r, err := render.New(m)
	if err != nil {
		return 0, err
	}

	surface, err := render.Image(r, 0)
	if err != nil {
		return 0, err
	}

	png := new(bytes.Buffer)
	if err := render.Write(png, surface, render.PNG); err != nil {
		return 0, err
	}

	bounds := r.Bounds()

	// Another worker may have added the same image in the meantime
	if _, err := db.db.Exec("INSERT OR IGNORE INTO image (hash, kind, mode, width, height, palettes, png) VALUES (?, ?, ?, ?, ?, ?, ?)", hash, kind, m.PixelData().Mode, bounds.Dx(), bounds.Dy(), len(m.Palettes()), db.enc.EncodeAll(png.Bytes(), nil)); err != nil {
		return 0, err
	}

	if err := db.db.QueryRow("SELECT id FROM image WHERE hash = ?", hash).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

// AddSource records where an image was found
func (db *ImageDB) AddSource(image int64, source Source) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO source (image_id, path, position, crc) VALUES (?, ?, ?, ?)", image, source.Path, source.Position, source.CRC); err != nil {
		return err
	}
	return nil
}

func (db *ImageDB) sources(image int64) ([]Source, error) {
	rows, err := db.db.Query("SELECT path, position, crc FROM source WHERE image_id = ? ORDER BY path, position", image)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.Path, &s.Position, &s.CRC); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// Find returns the image with the given hash, or nil if there isn't one
func (db *ImageDB) Find(hash string) (*Entry, error) {
	var id int64
	e := Entry{Hash: hash}
	switch err := db.db.QueryRow("SELECT id, kind, mode, width, height, palettes FROM image WHERE hash = ?", hash).Scan(&id, &e.Kind, &e.Mode, &e.Width, &e.Height, &e.Palettes); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		var err error
		if e.Sources, err = db.sources(id); err != nil {
			return nil, err
		}
		return &e, nil
	default:
		return nil, err
	}
}

// List returns every image ordered by hash
func (db *ImageDB) List() ([]Entry, error) {
	rows, err := db.db.Query("SELECT id, hash, kind, mode, width, height, palettes FROM image ORDER BY hash")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	var entries []Entry
	for rows.Next() {
		var id int64
		var e Entry
		if err := rows.Scan(&id, &e.Hash, &e.Kind, &e.Mode, &e.Width, &e.Height, &e.Palettes); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		if entries[i].Sources, err = db.sources(id); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// ErrNotFound is returned by Export for unknown hashes
var ErrNotFound = errors.New("psxtim: image not found")

// Export writes the stored PNG rendering of an image to w
func (db *ImageDB) Export(hash string, w io.Writer) error {
	var blob []byte
	switch err := db.db.QueryRow("SELECT png FROM image WHERE hash = ?", hash).Scan(&blob); err {
	case sql.ErrNoRows:
		return ErrNotFound
	case nil:
	default:
		return err
	}

	b, err := db.dec.DecodeAll(blob, nil)
	if err != nil {
		return errors.Wrapf(err, "psxtim: decompressing %s", hash)
	}

	_, err = w.Write(b)
	return err
}
