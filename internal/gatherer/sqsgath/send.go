package sqsgath

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const sendTimeout = 10 * time.Second

func (s *sqsResQueueGatherer) send(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("failed to marshal message", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	_, err = s.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(b)),
	})
	if err != nil {
		s.log.Warn("failed to send message", "error", err)
		if s.err == nil {
			s.err = err
		}
	}
}
