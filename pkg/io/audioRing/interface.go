package audioring

import (
	"encoding/binary"
	"errors"
	"time"
)

// HeaderSize is the length of the header the browser puts in front of every PCM
// chunk: sampleRate(4) + channels(2) + reserved(2), little endian.
const HeaderSize = 8

var ErrShortFrame = errors.New("audioring: frame shorter than header")

type Frame struct {
	PCM        []byte
	Timestamp  time.Time
	SampleRate int32
	Channels   int16
}

// ParseFrame splits a binary socket message into its header fields and PCM.
func ParseFrame(msg []byte, at time.Time) (Frame, error) {
	if len(msg) < HeaderSize {
		return Frame{}, ErrShortFrame
	}
	pcm := make([]byte, len(msg)-HeaderSize)
	copy(pcm, msg[HeaderSize:])
	return Frame{
		PCM:        pcm,
		Timestamp:  at,
		SampleRate: int32(binary.LittleEndian.Uint32(msg[0:4])),
		Channels:   int16(binary.LittleEndian.Uint16(msg[4:6])),
	}, nil
}

// MarshalBinary encodes timestamp(8) + sampleRate(4) + channels(2) + len(4) + pcm.
func (f *Frame) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 18+len(f.PCM))
	binary.LittleEndian.PutUint64(buf[0:], uint64(f.Timestamp.UnixNano()))
	binary.LittleEndian.PutUint32(buf[8:], uint32(f.SampleRate))
	binary.LittleEndian.PutUint16(buf[12:], uint16(f.Channels))
	binary.LittleEndian.PutUint32(buf[14:], uint32(len(f.PCM)))
	copy(buf[18:], f.PCM)
	return buf, nil
}

func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < 18 {
		return ErrShortFrame
	}
	f.Timestamp = time.Unix(0, int64(binary.LittleEndian.Uint64(data[0:])))
	f.SampleRate = int32(binary.LittleEndian.Uint32(data[8:]))
	f.Channels = int16(binary.LittleEndian.Uint16(data[12:]))
	n := int(binary.LittleEndian.Uint32(data[14:]))
	if len(data[18:]) < n {
		return ErrShortFrame
	}
	f.PCM = make([]byte, n)
	copy(f.PCM, data[18:18+n])
	return nil
}

// Buffer holds recent microphone frames. When full, the oldest frames are dropped.
type Buffer interface {
	Enqueue(f Frame) error
	Dequeue() (Frame, bool)
	Len() int
	Capacity() int
	Reset()
}
