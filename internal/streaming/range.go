package streaming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultChunkSize bounds how much of a video one open-ended range
// request returns.
const DefaultChunkSize int64 = 10 << 20 // 10 MiB

// Range request errors.
var (
	// ErrMalformedRange indicates a Range header that does not match
	// the bytes=start-[end] form.
	ErrMalformedRange = errors.New("malformed range header")

	// ErrUnsatisfiableRange indicates a range whose start lies at or
	// beyond the end of the resource.
	ErrUnsatisfiableRange = errors.New("requested range not satisfiable")
)

// Window is the resolved byte window of a range request. Start and End
// are inclusive offsets within a resource of Total bytes.
type Window struct {
	Start int64
	End   int64
	Total int64
}

// Length returns the number of bytes the window covers.
func (w Window) Length() int64 {
	return w.End - w.Start + 1
}

// ContentRange renders the window as a Content-Range header value.
func (w Window) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", w.Start, w.End, w.Total)
}

// ParseRange resolves a Range header of the form "bytes=start-" or
// "bytes=start-end" against a resource of size bytes. An omitted end
// yields a window of at most chunkSize bytes; an explicit end is
// clamped to the last byte of the resource. Multi-range and suffix
// forms are not supported.
func ParseRange(header string, size, chunkSize int64) (Window, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return Window{}, ErrMalformedRange
	}
	if strings.Contains(spec, ",") {
		return Window{}, ErrMalformedRange
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok || startStr == "" {
		return Window{}, ErrMalformedRange
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return Window{}, ErrMalformedRange
	}
	if start >= size {
		return Window{}, ErrUnsatisfiableRange
	}

	end := start + chunkSize - 1
	if endStr = strings.TrimSpace(endStr); endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return Window{}, ErrMalformedRange
		}
	}
	if end > size-1 {
		end = size - 1
	}

	return Window{Start: start, End: end, Total: size}, nil
}
