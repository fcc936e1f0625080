package tui

import "strings"

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// Known command names. Aliases are resolved by ParseCommand.
const (
	CmdQuit   = "quit"
	CmdReload = "reload"
	CmdClose  = "close"
	CmdOpen   = "open"
	CmdFilter = "filter"
	CmdHelp   = "help"
)

var aliases = map[string]string{
	"q": CmdQuit,
	"r": CmdReload,
	"c": CmdClose,
	"o": CmdOpen,
	"f": CmdFilter,
	"h": CmdHelp,
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	name, args, _ := strings.Cut(input, " ")
	cmd := Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
	if full, ok := aliases[cmd.Name]; ok {
		cmd.Name = full
	}
	return cmd
}
