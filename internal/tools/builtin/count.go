package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/windlant/letter-counter/internal/tools"
)

// CountLettersToolDef counts how often a single character occurs in a text.
var CountLettersToolDef = tools.ToolDefinition{
	Name:        "count_letters",
	Description: "Count how many times a letter occurs in a text. The comparison ignores case.",
	Parameters: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text":   {Type: "string", Description: "The text to search"},
			"letter": {Type: "string", Description: "A single letter to count"},
		},
		Required: []string{"text", "letter"},
	},
	Function: CountLettersTool,
}

// CountLettersTool returns the number of case-insensitive occurrences of
// args["letter"] in args["text"] as a decimal string.
func CountLettersTool(_ context.Context, args tools.ToolArguments) (string, error) {
	text, _ := args["text"].(string)
	letter, _ := args["letter"].(string)

	if utf8.RuneCountInString(letter) != 1 {
		return "", fmt.Errorf("letter must be exactly one character, got %q", letter)
	}
	target, _ := utf8.DecodeRuneInString(letter)
	target = unicode.ToLower(target)

	n := 0
	for _, r := range strings.ToLower(text) {
		if r == target {
			n++
		}
	}
	return strconv.Itoa(n), nil
}
