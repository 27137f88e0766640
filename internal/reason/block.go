package reason

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// yamlBlockRegex matches one fenced yaml block and captures its body.
var yamlBlockRegex = regexp.MustCompile("(?s)```yaml[ \t]*\n(.*?)```")

// BlockError reports a response violating the structured-response
// contract: stages that request structured output require exactly one
// fenced yaml block.
type BlockError struct {
	Blocks int
}

func (e *BlockError) Error() string {
	if e.Blocks == 0 {
		return "response contains no fenced yaml block"
	}
	return fmt.Sprintf("response contains %d fenced yaml blocks, want exactly one", e.Blocks)
}

// ExtractBlock returns the body of the single fenced yaml block in a
// response. Zero or multiple blocks yields a *BlockError; callers treat
// that as retryable.
func ExtractBlock(response string) (string, error) {
	matches := yamlBlockRegex.FindAllStringSubmatch(response, -1)
	if len(matches) != 1 {
		return "", &BlockError{Blocks: len(matches)}
	}
	return matches[0][1], nil
}

// DecodeBlock extracts the single fenced yaml block and unmarshals it
// into out.
func DecodeBlock(response string, out any) error {
	body, err := ExtractBlock(response)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("decode yaml block: %w", err)
	}
	return nil
}
