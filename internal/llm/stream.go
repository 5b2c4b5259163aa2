package llm

import (
	"context"
	"strings"
	"time"

	"github.com/posinsight/posinsight/pkg/models"
)

// chunkDelay paces the simulated stream so the chat widget renders text
// progressively.
const chunkDelay = 10 * time.Millisecond

// Stream runs a completion and emits the final text as whitespace-delimited
// chunks with a small inter-chunk delay. This is a presentation affordance,
// not incremental generation: the full response is produced first and then
// split. The channel closes after the last chunk or when ctx is done.
func (c *Client) Stream(ctx context.Context, system string, history []models.ChatMessage, userMessage string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		result := c.Complete(ctx, system, history, userMessage)
		for _, chunk := range strings.Fields(result.Content) {
			select {
			case out <- chunk + " ":
			case <-ctx.Done():
				return
			}
			select {
			case <-time.After(chunkDelay):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
