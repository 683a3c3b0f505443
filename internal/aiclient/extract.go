package aiclient

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"
)

// FunctionArguments decodes the function-call payload of the first choice
// into dst. It reports false, never an error, when the response has no
// choices, the choice carries no function call, or the arguments string is
// not valid JSON. An absent payload is an expected outcome for the caller,
// not a failure.
func FunctionArguments(resp *openai.ChatCompletionResponse, dst any) bool {
	if resp == nil || len(resp.Choices) == 0 {
		return false
	}
	call := resp.Choices[0].Message.FunctionCall
	if call == nil || call.Arguments == "" {
		return false
	}
	return json.Unmarshal([]byte(call.Arguments), dst) == nil
}

// TextContent returns the assistant text of the first choice. The content
// may legitimately be empty; ok is false only when there is no choice at
// all.
func TextContent(resp *openai.ChatCompletionResponse) (string, bool) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", false
	}
	return resp.Choices[0].Message.Content, true
}
