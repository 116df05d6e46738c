package natsgath

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/programme-lv/catalyst/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func TestNatsGathererStreamsRun(t *testing.T) {
	pub := &fakePublisher{}
	g := New(pub, "run-1", "catalyst.results", nil)

	g.StartRun(2)
	g.FinishTest(0, api.NewSuccess("a", "a", 0))
	g.FinishTest(1, api.NewAborted("c", "c", "aborted", strings.Repeat("y", 200)))
	g.FinishNoError()
	require.NoError(t, g.Err())

	require.Len(t, pub.msgs, 4)
	for _, m := range pub.msgs {
		assert.Equal(t, "catalyst.results", m.subject)
	}

	var start api.StartRun
	require.NoError(t, json.Unmarshal(pub.msgs[0].data, &start))
	assert.Equal(t, api.StartRunMsg, start.MsgType)
	assert.Equal(t, "run-1", start.RunUuid)
	assert.Equal(t, 2, start.Testcases)

	var res api.TestResult
	require.NoError(t, json.Unmarshal(pub.msgs[2].data, &res))
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, api.Aborted, res.Result.Kind)
	assert.Equal(t, strings.Repeat("y", MaxDiagnosticWidth)+"[...]", res.Result.Diagnostic)

	var finish api.FinishRun
	require.NoError(t, json.Unmarshal(pub.msgs[3].data, &finish))
	assert.Equal(t, api.FinishRunMsg, finish.MsgType)
	assert.Equal(t, api.RunFailed, finish.Status)
	assert.Equal(t, 1, finish.Counts[api.Aborted])
	assert.Nil(t, finish.ErrorMessage)
}

func TestNatsGathererInternalError(t *testing.T) {
	pub := &fakePublisher{}
	g := New(pub, "run-2", "results", nil)
	g.StartRun(1)
	g.InternalError("boom")

	var finish api.FinishRun
	require.NoError(t, json.Unmarshal(pub.msgs[1].data, &finish))
	assert.Equal(t, api.RunInternalError, finish.Status)
	require.NotNil(t, finish.ErrorMessage)
	assert.Equal(t, "boom", *finish.ErrorMessage)
}

func TestNatsGathererRecordsPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	g := New(pub, "run-3", "results", nil)
	g.StartRun(0)
	g.FinishNoError()
	require.EqualError(t, g.Err(), "nats: connection closed")
}
