package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"time"

	"github.com/hippocampus-app/hippocampus/internal/chat"
)

// Processor feeds watched images into the receipt pipeline. Files are
// deduplicated by content hash so a rename or re-copy of the same image does
// not log the expense twice.
type Processor struct {
	chat   *chat.Service
	member string
	logger *slog.Logger

	seen map[string]struct{} // sha256 hex of processed images
}

func NewProcessor(chatSvc *chat.Service, member string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		chat:   chatSvc,
		member: member,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Run consumes watcher events until ctx is cancelled or the channel closes.
func (p *Processor) Run(ctx context.Context, paths <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			p.process(ctx, path)
		}
	}
}

func (p *Processor) process(ctx context.Context, path string) {
	start := time.Now()

	image, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("ingest.read_failed", "path", path, "error", err)
		return
	}
	if len(image) == 0 {
		// Writes often arrive before content; the debounced rewrite event
		// will pick the file up again.
		return
	}

	sum := sha256.Sum256(image)
	hash := hex.EncodeToString(sum[:])
	if _, dup := p.seen[hash]; dup {
		p.logger.Debug("ingest.deduplicated", "path", path)
		return
	}

	reply, err := p.chat.HandleReceipt(ctx, p.member, image)
	if err != nil {
		p.logger.Error("ingest.receipt_failed", "path", path, "error", err)
		return
	}
	p.seen[hash] = struct{}{}

	p.logger.Info("ingest.receipt.ok", "path", path, "kind", reply.Kind,
		"reply", reply.Text, "elapsed_ms", time.Since(start).Milliseconds())
}
