package frame

import "strings"

// Broker volume output limits.
const (
	MaxBrokers       = 40
	MaxBrokerNameLen = 49

	// maxVolumeLen is the widest rendered total.
	maxVolumeLen = 24

	// Worst case: braces, every element at full width, commas between them.
	brokerNameListCap = 2 + MaxBrokers*(MaxBrokerNameLen+2) + (MaxBrokers - 1)
	volumeListCap     = 2 + MaxBrokers*maxVolumeLen + (MaxBrokers - 1)
)

// boundedBuffer is a string builder with a fixed byte capacity. Every write
// goes through fit, which checks capacity before and after the append.
type boundedBuffer struct {
	name     string
	capacity int
	b        strings.Builder
}

func newBoundedBuffer(name string, capacity int) *boundedBuffer {
	bb := &boundedBuffer{name: name, capacity: capacity}
	bb.b.Grow(capacity)
	return bb
}

// reserve fails if n more bytes would not fit, without writing anything.
func (bb *boundedBuffer) reserve(n int) error {
	return bb.check(bb.b.Len() + n)
}

func (bb *boundedBuffer) write(s string) error {
	if err := bb.check(bb.b.Len() + len(s)); err != nil {
		return err
	}
	bb.b.WriteString(s)
	return bb.check(bb.b.Len())
}

func (bb *boundedBuffer) check(need int) error {
	if need > bb.capacity {
		return newCapacityError(BrokerVolumeFrame1, bb.name, need, bb.capacity)
	}
	return nil
}

func (bb *boundedBuffer) String() string {
	return bb.b.String()
}

// arrayWriter renders a Postgres-style array literal into a bounded buffer.
type arrayWriter struct {
	buf *boundedBuffer
	n   int
}

func newArrayWriter(buf *boundedBuffer) (*arrayWriter, error) {
	if err := buf.write("{"); err != nil {
		return nil, err
	}
	return &arrayWriter{buf: buf}, nil
}

// raw appends an element verbatim.
func (w *arrayWriter) raw(elem string) error {
	if w.n > 0 {
		elem = "," + elem
	}
	if err := w.buf.write(elem); err != nil {
		return err
	}
	w.n++
	return nil
}

// quoted appends an element wrapped in double quotes, escaping '"' and '\'.
func (w *arrayWriter) quoted(elem string) error {
	return w.raw(quoteElement(elem))
}

func (w *arrayWriter) close() (string, error) {
	if err := w.buf.write("}"); err != nil {
		return "", err
	}
	return w.buf.String(), nil
}

var elementEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteElement(s string) string {
	return `"` + elementEscaper.Replace(s) + `"`
}
