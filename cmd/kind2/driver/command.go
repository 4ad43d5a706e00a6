package driver

import "fmt"

// Command selects which entry point of the embedded program is invoked.
type Command int

const (
	CmdRun Command = iota
	CmdCheck
	CmdCompile
)

var commands = []struct {
	name  string
	entry string
}{
	CmdRun:     {"run", "Kind2.Run"},
	CmdCheck:   {"check", "Kind2.Check"},
	CmdCompile: {"compile", "Kind2.Compile"},
}

// ParseCommand maps a command name (run, check, compile) to a Command.
func ParseCommand(name string) (Command, error) {
	for c, def := range commands {
		if def.name == name {
			return Command(c), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

func (c Command) valid() bool { return c >= 0 && int(c) < len(commands) }

func (c Command) String() string {
	if !c.valid() {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commands[c].name
}

// Entry returns the name of the entry point c invokes.
func (c Command) Entry() (string, error) {
	if !c.valid() {
		return "", fmt.Errorf("%w: %v", ErrUnknownCommand, c)
	}
	return commands[c].entry, nil
}
