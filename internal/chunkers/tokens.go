package chunkers

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

var (
	tokenizer     *tiktoken.Tiktoken
	tokenizerOnce sync.Once
	tokenizerErr  error
)

// getTokenizer returns a cached tiktoken encoder.
// Uses cl100k_base encoding (GPT-4, GPT-3.5-turbo). The BPE ranks come from the
// embedded offline loader so chunking never touches the network.
func getTokenizer() (*tiktoken.Tiktoken, error) {
	tokenizerOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		tokenizer, tokenizerErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tokenizer, tokenizerErr
}

// heuristicTokens estimates ~4 characters per token.
func heuristicTokens(text string) int {
	return (len(text) + 3) / 4
}

// CountTokens returns the token count for text using tiktoken.
// Falls back to heuristic (~4 chars per token) if tiktoken fails.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	enc, err := getTokenizer()
	if err != nil {
		return heuristicTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateTokens returns the token count used for chunk metadata.
func EstimateTokens(text string) int {
	return CountTokens(text)
}
