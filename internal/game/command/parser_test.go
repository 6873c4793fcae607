package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ParseResult
	}{
		{
			name:  "empty input",
			input: "",
			want:  ParseResult{},
		},
		{
			name:  "whitespace only",
			input: "   \t  ",
			want:  ParseResult{},
		},
		{
			name:  "bare command",
			input: "look",
			want:  ParseResult{Command: "look"},
		},
		{
			name:  "uppercase normalized",
			input: "LOOK",
			want:  ParseResult{Command: "look"},
		},
		{
			name:  "command with argument",
			input: "take shell",
			want:  ParseResult{Command: "take", Args: []string{"shell"}, RawArgs: "shell"},
		},
		{
			name:  "articles stripped",
			input: "take the brass lantern",
			want:  ParseResult{Command: "take", Args: []string{"brass", "lantern"}, RawArgs: "the brass lantern"},
		},
		{
			name:  "argument case normalized",
			input: "examine Conch SHELL",
			want:  ParseResult{Command: "examine", Args: []string{"conch", "shell"}, RawArgs: "Conch SHELL"},
		},
		{
			name:  "extra whitespace collapsed",
			input: "  drop   the   leaves  ",
			want:  ParseResult{Command: "drop", Args: []string{"leaves"}, RawArgs: "the   leaves"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestParseResult_Target(t *testing.T) {
	assert.Equal(t, "brass lantern", Parse("take the brass lantern").Target())
	assert.Equal(t, "", Parse("look").Target())
}
