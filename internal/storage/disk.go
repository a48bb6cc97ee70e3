package storage

import (
	"errors"
	"io/fs"
	"os"
)

// sqliteSidecars are the files SQLite keeps next to a WAL-mode database.
var sqliteSidecars = []string{"-wal", "-shm"}

// Footprint returns the bytes on disk used by a SQLite database at dbPath, including its
// WAL sidecars, plus any extra files such as a persisted vector index. Missing files count as 0.
func Footprint(dbPath string, extra ...string) (int64, error) {
	paths := []string{}
	if dbPath != "" {
		paths = append(paths, dbPath)
		for _, suffix := range sqliteSidecars {
			paths = append(paths, dbPath+suffix)
		}
	}
	paths = append(paths, extra...)

	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
		}
	}
	return total, nil
}
