// Package store selects and opens a history persistence driver.
package store

import (
	"fmt"

	"github.com/clubchat/clubchat-server/internal/core"
	"github.com/clubchat/clubchat-server/internal/store/buntdb"
	"github.com/clubchat/clubchat-server/internal/store/jsonfile"
	"github.com/clubchat/clubchat-server/internal/store/sqlite"
)

// Store persists the bounded room log.
type Store interface {
	core.HistoryStore
	Close() error
}

// Open builds the configured driver. limit caps how many entries a Save
// retains.
func Open(driver, path string, limit int) (Store, error) {
	switch driver {
	case "jsonfile", "":
		return jsonfile.New(path, limit), nil
	case "sqlite":
		return sqlite.New(path, limit)
	case "buntdb":
		return buntdb.New(path, limit)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
