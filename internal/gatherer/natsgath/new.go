package natsgath

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the part of *nats.Conn the gatherer uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// New creates a NATS gatherer that streams run events to the given subject.
func New(nc Publisher, runUuid string, subject string, logger *slog.Logger) *natsGatherer {
	if logger == nil {
		logger = slog.Default()
	}
	return &natsGatherer{
		nc:      nc,
		subject: subject,
		runUuid: runUuid,
		log:     logger.With("subject", subject),
	}
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("catalyst"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}
