package cli

import (
	"io"

	"github.com/runnerr0/viewtally/internal/aggregate"
	"github.com/runnerr0/viewtally/internal/storage"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file (default ~/.config/viewtally/config.yaml)" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// deps are the collaborators tests inject instead of the real upstream and
// the configured history backend.
type deps struct {
	api   aggregate.API // nil means a real YouTube client
	store storage.Store // nil means open the configured backend
}

// CheckCommand runs one aggregation and records it.
type CheckCommand struct {
	Query string `long:"query" short:"q" description:"Search query (default from config)"`

	globals *GlobalFlags
	version string
	deps    deps
}

// HistoryCommand prints the recorded runs with a bar chart and trend.
type HistoryCommand struct {
	globals *GlobalFlags
	version string
	deps    deps
}

// ClearCommand deletes the recorded history with a safety prompt.
type ClearCommand struct {
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	deps    deps
	stdin   io.Reader // nil means os.Stdin
}

// KeyCommand stores or shows the API key.
type KeyCommand struct {
	Set  string `long:"set" description:"Save this API key to the config file"`
	Show bool   `long:"show" description:"Show the configured API key (masked)"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows configuration and history summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	deps    deps
}

// ServeCommand starts the HTTP service.
type ServeCommand struct {
	Host string `long:"host" description:"Override listen host"`
	Port int    `long:"port" description:"Override listen port"`

	globals *GlobalFlags
	version string
	deps    deps
}
