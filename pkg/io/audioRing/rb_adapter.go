package audioring

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/smallnest/ringbuffer"
)

var ErrFrameTooLarge = errors.New("audioring: frame too large for buffer")

type rbBuffer struct {
	mu sync.Mutex
	rb *ringbuffer.RingBuffer
}

// New returns a Buffer backed by a byte ring of size bytes. Frames are stored with a
// 4 byte length prefix.
func New(size int) Buffer {
	return &rbBuffer{rb: ringbuffer.New(size)}
}

func (r *rbBuffer) Capacity() int {
	return r.rb.Capacity()
}

// Len is the number of buffered bytes, prefixes included.
func (r *rbBuffer) Len() int {
	return r.rb.Length()
}

func (r *rbBuffer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rb.Reset()
}

func (r *rbBuffer) Enqueue(f Frame) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	need := len(data) + 4
	if need > r.rb.Capacity() {
		return ErrFrameTooLarge
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for r.rb.Free() < need {
		if !r.dropOldest() {
			r.rb.Reset()
			break
		}
	}

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(data)))
	if _, err := r.rb.Write(prefix[:]); err != nil {
		return err
	}
	_, err = r.rb.Write(data)
	return err
}

func (r *rbBuffer) Dequeue() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.next()
	if !ok {
		return Frame{}, false
	}
	var f Frame
	if err := f.UnmarshalBinary(data); err != nil {
		return Frame{}, false
	}
	return f, true
}

// next reads one length-prefixed record. Caller holds mu.
func (r *rbBuffer) next() ([]byte, bool) {
	if r.rb.IsEmpty() {
		return nil, false
	}
	var prefix [4]byte
	if n, err := r.rb.Read(prefix[:]); err != nil || n != 4 {
		return nil, false
	}
	size := int(binary.LittleEndian.Uint32(prefix[:]))
	data := make([]byte, size)
	if size == 0 {
		return data, true
	}
	if n, err := r.rb.Read(data); err != nil || n != size {
		return nil, false
	}
	return data, true
}

func (r *rbBuffer) dropOldest() bool {
	_, ok := r.next()
	return ok
}
