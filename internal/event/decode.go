package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// Decode error taxonomy. The connection handler maps these onto the wire
// replies, so the three cases must stay distinguishable via errors.Is.
var (
	// ErrNoData means the peer closed or went silent before sending anything.
	ErrNoData = errors.New("event: no data received")

	// ErrInvalidFormat means the bytes received do not form a complete JSON
	// document: a syntax error, or a connection that closed or timed out
	// mid-document.
	ErrInvalidFormat = errors.New("event: invalid JSON format")

	// ErrBadShape means a complete JSON document was received but a field
	// has the wrong type, or the document is not an object at all.
	ErrBadShape = errors.New("event: message shape invalid")
)

// DecodeMessage reads exactly one message document from r.
//
// The decoder streams: it reads only as many bytes as one document needs,
// reporting "incomplete" and "malformed" as distinct errors rather than
// re-parsing an accumulated buffer. Absent fields keep their defaults
// (device_name "unknown", pin 0, state "unknown", time_diff_sec 0); an
// absent timestamp is filled with now().
//
// Parameters:
//   - r: Source of the document bytes (a net.Conn in production)
//   - now: Clock used for the timestamp default
//
// Returns:
//   - Message: Decoded message with defaults applied
//   - error: ErrNoData, ErrInvalidFormat, or ErrBadShape (wrapped)
func DecodeMessage(r io.Reader, now func() time.Time) (Message, error) {
	cr := &countingReader{r: r}

	// First pass establishes framing only: read exactly one document.
	var raw json.RawMessage
	if err := json.NewDecoder(cr).Decode(&raw); err != nil {
		if cr.n == 0 {
			return Message{}, ErrNoData
		}
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	// Second pass checks shape. Anything other than an object (null, array,
	// scalar, mistyped field) is a shape error, not a framing error.
	if len(raw) == 0 || raw[0] != '{' {
		return Message{}, fmt.Errorf("%w: document is not an object", ErrBadShape)
	}

	msg := Message{
		DeviceName: DefaultDeviceName,
		State:      DefaultState,
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrBadShape, err)
	}

	if msg.Timestamp == "" {
		msg.Timestamp = now().Format(TimestampLayout)
	}

	return msg, nil
}

// countingReader tracks whether any bytes were read, which is what separates
// "peer sent nothing" from "peer sent garbage".
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
