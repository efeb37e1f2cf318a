package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/valarxu/mahjong-practice/config"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-json")
	Args    []string // Possible argument values (for non-option arguments)
}

var commandMetadata = map[string]CommandMetadata{
	"decompose": {Options: []string{"-json"}},
	"score":     {Options: []string{"-raw"}},
	"draws":     {Options: []string{"-json"}},
	"best":      {Options: []string{"-n"}},
	"set": {
		Args: []string{config.ConfigThreads, config.ConfigDrawSort, config.ConfigDebug},
	},
	"help": {Args: []string{"draws", "best", "drill", "script"}},
}

var commandNames = []string{
	"help", "hand", "river", "exposed", "draw", "discard", "kong", "show",
	"decompose", "score", "classify", "draws", "best", "drill", "script",
	"set", "cache", "exit",
}

var boolValues = []string{"true", "false"}

// commands whose argument is a single tile from the current hand.
var handTileCommands = map[string]bool{
	"discard": true, "classify": true, "draws": true, "kong": true,
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// If we can't parse, fall back to simple space splitting
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case lastCompleteField == "-json" || lastCompleteField == "-raw":
			completions = boolValues
		case cmdName == "set" && lastCompleteField == config.ConfigDrawSort:
			completions = []string{"kind", "delta"}
		case cmdName == "set" && lastCompleteField == config.ConfigDebug:
			completions = boolValues
		case handTileCommands[cmdName] && !strings.HasPrefix(prefix, "-") &&
			(endsWithSpace && len(fields) == 1 || !endsWithSpace && len(fields) == 2):
			for _, k := range c.sc.hand.Kinds() {
				completions = append(completions, k.String())
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// Return only the part that needs to be added
			suffix := completion[len(prefix):]
			matches = append(matches, []rune(suffix))
		}
	}

	return matches, len(prefix)
}
