package sqsgath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "eu-central-1"

// SendMessageAPI is the part of *sqs.Client the gatherer uses.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// NewSqsResponseQueueGatherer loads the default AWS configuration and
// creates a gatherer that queues run events on queueUrl.
func NewSqsResponseQueueGatherer(ctx context.Context, runUuid, queueUrl, region string, logger *slog.Logger) (*sqsResQueueGatherer, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return New(sqs.NewFromConfig(cfg), runUuid, queueUrl, logger), nil
}

func New(client SendMessageAPI, runUuid, queueUrl string, logger *slog.Logger) *sqsResQueueGatherer {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqsResQueueGatherer{
		sqsClient: client,
		queueUrl:  queueUrl,
		runUuid:   runUuid,
		log:       logger.With("queue", queueUrl),
	}
}
