// Package tokencount estimates prompt token counts so the answer-mode
// completion budget can be sized before the call is issued.
//
// It uses tiktoken-go; Claude tokenization differs from OpenAI's but
// cl100k_base is a close enough approximation for budget selection.
package tokencount

import (
	"log/slog"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token estimation.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewCounter creates a token counter.
func NewCounter() *Counter { return &Counter{} }

// DefaultCounter is a process-wide counter instance.
var DefaultCounter = NewCounter()

func (c *Counter) encoding() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding("cl100k_base")
	})
	return c.enc, c.err
}

// EstimateTokens returns an estimated token count for text. When the
// encoding cannot be loaded it falls back to the rough ~4 chars/token
// heuristic rather than failing.
func (c *Counter) EstimateTokens(text string) int {
	enc, err := c.encoding()
	if err != nil {
		slog.Warn("token encoding unavailable, using estimate", slog.Any("error", err))
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateTokensDefault uses the default counter.
func EstimateTokensDefault(text string) int {
	return DefaultCounter.EstimateTokens(text)
}
