package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default taskmon data directory name (relative to home).
	DefaultDataDir = ".taskmon"
	// DBFile is the SQLite database filename inside the data directory.
	DBFile = "taskmon.db"
)

// DataDir returns the taskmon data directory inside home.
func DataDir(home string) string {
	return filepath.Join(home, DefaultDataDir)
}

// DBPath returns the path of the task database inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}
