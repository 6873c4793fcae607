package command

import "strings"

// articles are filler words stripped from command arguments so that
// "take the brass lantern" and "take brass lantern" resolve identically.
var articles = map[string]bool{
	"the": true,
	"a":   true,
	"an":  true,
}

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command, lowercased, with
	// articles removed.
	Args []string
	// RawArgs is the raw text after the command word.
	RawArgs string
}

// Target returns the argument words joined back into a single noun phrase.
func (p ParseResult) Target() string {
	return strings.Join(p.Args, " ")
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	for _, word := range strings.Fields(rest) {
		word = strings.ToLower(word)
		if articles[word] {
			continue
		}
		args = append(args, word)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}
