package cfg

import "time"

type Cfg struct {
	// Settings and state
	ConfigFile   string
	StateFile    string
	StateBackend string

	// Runtime
	Workers    int
	StatusPort string
	RunOnce    bool

	// Application metadata
	UserAgent string
	Timezone  string
	Location  *time.Location
	Debug     bool
	Version   string
}

const (
	StateBackendJSON   = "json"
	StateBackendSQLite = "sqlite"
)
