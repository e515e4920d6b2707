package prompt

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts prompt tokens so rendered prompts stay inside the
// model's context window. Encodings are cached per normalized model name.
type TokenCounter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

// NewTokenCounter creates an empty counter.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{cache: make(map[string]*tiktoken.Tiktoken)}
}

// Count returns the token count of text for the given model. On encoding
// failure it falls back to a conservative 4-chars-per-token estimate so the
// builder never blocks on tokenization.
func (c *TokenCounter) Count(text, model string) int {
	enc, err := c.encodingFor(model)
	if err != nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *TokenCounter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	key := normalizeModel(model)
	c.mu.RLock()
	enc, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[key]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(key)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	c.cache[key] = enc
	return enc, nil
}

// normalizeModel maps provider-prefixed model ids (e.g.
// "meta-llama/llama-3.1-8b-instruct:free") to a tiktoken-compatible family.
func normalizeModel(model string) string {
	model = strings.ToLower(model)
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	model = strings.TrimSuffix(model, ":free")
	switch {
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		// cl100k_base via gpt-4 is a close enough approximation for the
		// open-weight families served over OpenAI-compatible APIs.
		return "gpt-4"
	}
}
