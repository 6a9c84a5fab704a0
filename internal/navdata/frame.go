package navdata

import (
	"encoding/binary"
	"fmt"
)

// Option record tags
const (
	TagDemo     uint16 = 0
	TagChecksum uint16 = 0xFFFF
)

// recordPrefixSize is the tag and size prefix of every option record
const recordPrefixSize = 4

// Frame is a decoded navdata datagram
type Frame struct {
	Header Header

	Data    DroneData
	HasData bool // false when the datagram carried no demo record

	Checksum      uint32 // value transmitted by the drone
	HasChecksum   bool
	ChecksumValid bool

	SkippedTags []uint16 // unknown option records, in wire order
}

// Decode decodes a whole navdata datagram.
//
// Records are walked from the end of the header. Unknown tags are skipped by their declared
// size and the checksum record terminates the walk. A checksum mismatch does not fail decoding,
// it is reported through ChecksumValid. Any read past the end of buf fails the whole frame
// with ErrTruncatedFrame.
func Decode(buf []byte) (*Frame, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}

	f := Frame{Header: h}
	c := cursor{buf: buf, off: HeaderSize}

	for c.remaining() > 0 {
		start := c.off

		tag, ok := c.uint16()
		if !ok {
			return nil, &FrameError{Offset: start, Section: "record", Err: ErrTruncatedFrame}
		}
		size, ok := c.uint16()
		if !ok {
			return nil, &FrameError{Offset: start, Section: sectionName(tag), Err: ErrTruncatedFrame}
		}
		if size < recordPrefixSize {
			return nil, &FrameError{Offset: start, Section: sectionName(tag), Err: ErrInvalidRecord}
		}

		content, ok := c.next(int(size) - recordPrefixSize)
		if !ok {
			return nil, &FrameError{Offset: start, Section: sectionName(tag), Err: ErrTruncatedFrame}
		}

		switch tag {
		case TagDemo:
			if len(content) < DemoSize {
				return nil, &FrameError{Offset: start, Section: sectionName(tag), Err: ErrTruncatedFrame}
			}
			f.Data = decodeDroneData(content)
			f.HasData = true

		case TagChecksum:
			if len(content) < 4 {
				return nil, &FrameError{Offset: start, Section: sectionName(tag), Err: ErrTruncatedFrame}
			}
			f.Checksum = binary.LittleEndian.Uint32(content[:4])
			f.HasChecksum = true
			f.ChecksumValid = sum(buf[:start]) == f.Checksum // covers everything before the record
			return &f, nil

		default:
			f.SkippedTags = append(f.SkippedTags, tag)
		}
	}

	return &f, nil
}

// Verify applies the strict checksum policy to a decoded frame
func (f *Frame) Verify() error {
	if !f.HasChecksum {
		return ErrMissingChecksum
	}
	if !f.ChecksumValid {
		return fmt.Errorf("%w: transmitted 0x%08x", ErrChecksumMismatch, f.Checksum)
	}
	return nil
}
