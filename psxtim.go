/*
Package psxtim is a library for cataloguing PlayStation TIM images, whether
they are standalone files or buried inside disc images.
*/
package psxtim

import "log"

// Library scans for images and stores them in an ImageDB.
type Library struct {
	db     *ImageDB
	logger *log.Logger
}

// New returns a Library using db, logging anything skipped to logger
func New(db *ImageDB, logger *log.Logger) *Library {
	return &Library{
		db:     db,
		logger: logger,
	}
}
