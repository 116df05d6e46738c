package api

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Frame size constraints. A frame never exceeds PIPE_BUF on Linux so that a
// single write to a pipe is atomic.
const (
	MaxMessageSize = 4096
	frameHeaderLen = 4
	maxBodyLen     = MaxMessageSize - frameHeaderLen
)

var (
	// ErrMessageTooLarge means the message does not fit into one frame.
	// Partial delivery is never attempted.
	ErrMessageTooLarge = errors.New("result message too large")

	// ErrNoMessage is returned by Decode when the channel was closed before
	// any byte of a frame arrived.
	ErrNoMessage = errors.New("channel closed without a result message")
)

// Encode frames msg as a 4-byte big-endian body length followed by the JSON
// body.
func Encode(msg Message) ([]byte, error) {
	if !msg.Kind.valid() {
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	body, err := marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if len(body) > maxBodyLen {
		return nil, fmt.Errorf("%w: testcase '%s' for test '%s' needs %d bytes, limit is %d",
			ErrMessageTooLarge, msg.Name, msg.Path, len(body)+frameHeaderLen, MaxMessageSize)
	}

	frame := make([]byte, frameHeaderLen+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[frameHeaderLen:], body)
	return frame, nil
}

// WriteMessage encodes msg and hands it to w in a single Write call.
func WriteMessage(w io.Writer, msg Message) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}
	n, err := w.Write(frame)
	if err != nil {
		return fmt.Errorf("failed to write result message: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("short write of result message: %d of %d bytes", n, len(frame))
	}
	return nil
}

// DiagnosticCut marks a diagnostic that was shortened to fit into a frame.
const DiagnosticCut = "[...]"

// FitDiagnostic shortens msg.Diagnostic, on a rune boundary, until the encoded
// message fits into one frame. Invalid UTF-8 becomes U+FFFD first. The second
// return value reports whether anything was cut. A message whose other fields
// are already too large is left to Encode to reject.
func FitDiagnostic(msg Message) (Message, bool) {
	msg.Diagnostic = strings.ToValidUTF8(msg.Diagnostic, "\uFFFD")
	if bodyFits(msg) {
		return msg, false
	}

	full := msg.Diagnostic
	cuts := make([]int, 0, utf8.RuneCountInString(full))
	for i := range full {
		cuts = append(cuts, i)
	}
	withPrefix := func(n int) Message {
		m := msg
		m.Diagnostic = full[:n] + DiagnosticCut
		return m
	}

	// encoded size grows with the prefix, so the first prefix that no
	// longer fits bounds the answer
	k := sort.Search(len(cuts), func(i int) bool {
		return !bodyFits(withPrefix(cuts[i]))
	})
	if k == 0 {
		msg.Diagnostic = ""
		return msg, true
	}
	return withPrefix(cuts[k-1]), true
}

func bodyFits(msg Message) bool {
	body, err := marshal(msg)
	return err == nil && len(body) <= maxBodyLen
}

// marshal is json.Marshal without HTML escaping.
func marshal(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode reads exactly one frame from r.
func Decode(r io.Reader) (Message, error) {
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Message{}, ErrNoMessage
		}
		return Message{}, fmt.Errorf("failed to read frame header: %w", err)
	}

	bodyLen := binary.BigEndian.Uint32(header[:])
	if bodyLen > maxBodyLen {
		return Message{}, fmt.Errorf("%w: frame announces %d bytes", ErrMessageTooLarge, bodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Message{}, fmt.Errorf("failed to read frame body: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if !msg.Kind.valid() {
		return Message{}, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	return msg, nil
}
