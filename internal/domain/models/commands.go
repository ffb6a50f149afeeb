package models

import "strings"

// CommandType enumerates the chat commands staff can send.
type CommandType string

const (
	CommandCount   CommandType = "count"
	CommandToday   CommandType = "today"
	CommandSummary CommandType = "summary"
	CommandCheck   CommandType = "check"
	CommandDelete  CommandType = "delete"
	CommandConfirm CommandType = "yes"
	CommandCancel  CommandType = "no"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed staff instruction extracted from WhatsApp text.
// Args keep their original case so item names round-trip unchanged.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text such as
// "/count Coffee Beans 80 50". The leading slash is optional.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch CommandType(head) {
	case CommandCount, CommandToday, CommandSummary, CommandCheck, CommandDelete, CommandHelp:
		cmd.Type = CommandType(head)
	case CommandConfirm, "y", "confirm":
		cmd.Type = CommandConfirm
	case CommandCancel, "n", "cancel":
		cmd.Type = CommandCancel
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
