package execreduce

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	fieldSep  = '\t'
	recordSep = '\n'
)

// Decode parses one TSV line (without its terminator) into a record.
func Decode(line string) (KeyValue, error) {
	key, value, ok := strings.Cut(line, string(fieldSep))
	if !ok || strings.IndexByte(value, fieldSep) >= 0 {
		return KeyValue{}, &DecodeError{Text: line}
	}

	return KeyValue{Key: key, Value: value}, nil
}

// Encode returns the TSV line for kv, terminator included.
func (kv KeyValue) Encode() string {
	return kv.Key + string(fieldSep) + kv.Value + string(recordSep)
}

// Encodable reports whether kv survives a round trip through the TSV
// format: no TAB or newline in the key, none in the value.
func (kv KeyValue) Encodable() bool {
	return !strings.ContainsAny(kv.Key, "\t\n") && !strings.ContainsAny(kv.Value, "\t\n")
}

func (kv KeyValue) String() string {
	return kv.Key + string(fieldSep) + kv.Value
}

// Reader decodes records from a TSV stream. Lines have no length limit.
type Reader struct {
	r    *bufio.Reader
	line int
}

// DefaultBufferSize is the read buffer size used by NewReader.
const DefaultBufferSize = 64 << 10

func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, DefaultBufferSize)
}

// NewReaderSize returns a Reader whose read buffer holds size bytes. Lines
// longer than the buffer are still read whole. bufio enforces a minimum of
// 16 bytes.
func NewReaderSize(r io.Reader, size int) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, size)}
}

// Read returns the next record, or io.EOF once the stream is exhausted.
// A final line without a terminator is still a record.
func (r *Reader) Read() (KeyValue, error) {
	line, err := r.r.ReadString(recordSep)
	if err != nil && !errors.Is(err, io.EOF) {
		return KeyValue{}, fmt.Errorf("%w: read record: %w", ErrIO, err)
	}
	if line == "" {
		return KeyValue{}, io.EOF
	}

	r.line++

	kv, derr := Decode(strings.TrimSuffix(line, string(recordSep)))
	if derr != nil {
		var de *DecodeError
		if errors.As(derr, &de) {
			de.Line = r.line
		}
		return KeyValue{}, derr
	}

	return kv, nil
}

// ReadAll drains r into memory.
func (r *Reader) ReadAll() ([]KeyValue, error) {
	var kvs []KeyValue
	for {
		kv, err := r.Read()
		if errors.Is(err, io.EOF) {
			return kvs, nil
		}
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, kv)
	}
}

// Writer encodes records as TSV lines. Flush must be called before the
// underlying writer is closed.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 64<<10)}
}

func (w *Writer) Write(kv KeyValue) error {
	if !kv.Encodable() {
		return fmt.Errorf("%w: %q", ErrEncode, kv.String())
	}

	w.w.WriteString(kv.Key)
	w.w.WriteByte(fieldSep)
	w.w.WriteString(kv.Value)
	if err := w.w.WriteByte(recordSep); err != nil {
		return fmt.Errorf("%w: write record: %w", ErrIO, err)
	}

	return nil
}

func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush records: %w", ErrIO, err)
	}

	return nil
}
