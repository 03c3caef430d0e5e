// Package watch decodes the newline-delimited JSON event stream returned by a
// Kubernetes-style watch request.
//
// Each line is one metav1.WatchEvent. Failures are reported per line where the
// stream can continue (FromUtf8, SerdeError, Api for ERROR events) and as a
// terminal error where it cannot (ReadEvents, LinesCodecMaxLineLengthExceeded).
package watch

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/json"
	apiwatch "k8s.io/apimachinery/pkg/watch"

	"kubeclient/pkg/errx"
)

// DefaultMaxLineLength places no practical bound on an event line.
const DefaultMaxLineLength = math.MaxInt

const initialBufferSize = 64 * 1024

// Event is one decoded watch event.
type Event struct {
	Type   apiwatch.EventType
	Object *unstructured.Unstructured
}

// InvalidUTF8Error is the source of FromUtf8 errors raised by the decoder.
type InvalidUTF8Error struct {
	Line   int
	Offset int
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("invalid utf-8 sequence in line %d at byte %d", e.Line, e.Offset)
}

// ErrUnknownEventType is wrapped by SerdeError when an event names a type the
// decoder does not recognise.
var ErrUnknownEventType = errors.New("unknown watch event type")

// Decoder reads watch events from a stream.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	err     error
}

// NewDecoder returns a decoder reading from r. maxLineLength bounds a single
// event line; values <= 0 mean DefaultMaxLineLength.
func NewDecoder(r io.Reader, maxLineLength int) *Decoder {
	if maxLineLength <= 0 {
		maxLineLength = DefaultMaxLineLength
	}
	// The scanner buffer holds the line and its terminator.
	bufSize := maxLineLength
	if bufSize < math.MaxInt {
		bufSize++
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(initialBufferSize, bufSize)), bufSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next event. It returns io.EOF at the end of the stream.
// A terminal error is returned again by every later call.
func (d *Decoder) Next() (Event, error) {
	if d.err != nil {
		return Event{}, d.err
	}
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return d.decode(line)
	}

	err := d.scanner.Err()
	switch {
	case err == nil:
		d.err = io.EOF
	case errors.Is(err, bufio.ErrTooLong):
		d.err = errx.LinesCodecMaxLineLengthExceeded().WithContext("line", d.line+1)
	default:
		d.err = errx.ReadEvents(err)
	}
	return Event{}, d.err
}

func (d *Decoder) decode(line []byte) (Event, error) {
	if !utf8.Valid(line) {
		return Event{}, errx.FromUTF8(&InvalidUTF8Error{Line: d.line, Offset: invalidOffset(line)})
	}

	var raw metav1.WatchEvent
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, errx.Serde(err).WithContext("line", d.line)
	}

	eventType := apiwatch.EventType(raw.Type)
	switch eventType {
	case apiwatch.Added, apiwatch.Modified, apiwatch.Deleted, apiwatch.Bookmark:
	case apiwatch.Error:
		var status metav1.Status
		if err := json.Unmarshal(raw.Object.Raw, &status); err != nil {
			return Event{}, errx.Serde(err).WithContext("line", d.line)
		}
		return Event{Type: eventType}, errx.API(status)
	default:
		return Event{}, errx.Serde(fmt.Errorf("%w: %q", ErrUnknownEventType, raw.Type)).WithContext("line", d.line)
	}

	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(raw.Object.Raw); err != nil {
		return Event{}, errx.Serde(err).WithContext("line", d.line)
	}
	return Event{Type: eventType, Object: obj}, nil
}

func invalidOffset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}

// Terminal reports whether err ends the stream.
func Terminal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	return errx.IsKind(err, errx.KindReadEvents) || errx.IsKind(err, errx.KindLinesCodecMaxLineLengthExceeded)
}
