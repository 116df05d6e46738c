package sqsgath

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/catalyst/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("id")}, nil
}

func TestSqsGathererQueuesRun(t *testing.T) {
	client := &fakeSQS{}
	g := New(client, "run-1", "https://sqs.eu-central-1.amazonaws.com/1/results", nil)

	g.StartRun(1)
	g.FinishTest(0, api.NewSpawnError("d", "d", "permission denied"))
	g.FinishNoError()
	require.NoError(t, g.Err())

	require.Len(t, client.inputs, 3)
	for _, in := range client.inputs {
		assert.Equal(t, "https://sqs.eu-central-1.amazonaws.com/1/results", aws.ToString(in.QueueUrl))
	}

	var res api.TestResult
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[1].MessageBody)), &res))
	assert.Equal(t, api.ResultMsg, res.MsgType)
	assert.Equal(t, api.NewSpawnError("d", "d", "permission denied"), res.Result)

	var finish api.FinishRun
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[2].MessageBody)), &finish))
	assert.Equal(t, api.RunFailed, finish.Status)
}

func TestSqsGathererSendFailure(t *testing.T) {
	client := &fakeSQS{err: errors.New("AccessDenied")}
	g := New(client, "run-2", "q", nil)
	g.StartRun(0)
	g.InternalError("boom")
	require.EqualError(t, g.Err(), "AccessDenied")
}
