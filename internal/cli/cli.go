package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Check   *CheckCommand
	History *HistoryCommand
	Clear   *ClearCommand
	Key     *KeyCommand
	Status  *StatusCommand
	Serve   *ServeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "viewtally"
	parser.LongDescription = "Count the total YouTube views of every video matching a search term, and keep a history of the counts."

	cmds := &commands{
		Check:   &CheckCommand{globals: &globals, version: version},
		History: &HistoryCommand{globals: &globals, version: version},
		Clear:   &ClearCommand{globals: &globals, version: version},
		Key:     &KeyCommand{globals: &globals, version: version},
		Status:  &StatusCommand{globals: &globals, version: version},
		Serve:   &ServeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("check", "Count views now", "Search for the query, sum the views of every matching video and record the result.", cmds.Check)
	parser.AddCommand("history", "Show recorded counts", "Show the recorded counts, oldest first, with a bar chart and the trend.", cmds.History)
	parser.AddCommand("clear", "Delete recorded counts", "Delete the whole history. Destructive operation with safety prompt.", cmds.Clear)
	parser.AddCommand("key", "Set or show the API key", "Save the YouTube Data API key to the config file, or show the configured one.", cmds.Key)
	parser.AddCommand("status", "Show configuration summary", "Show configuration, history backend and the last recorded count.", cmds.Status)
	parser.AddCommand("serve", "Start the HTTP service", "Serve runs, history and metrics over HTTP until interrupted.", cmds.Serve)

	return parser, &globals, cmds
}

// Run is the main entry point for the viewtally CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("viewtally %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
