// Package navdatatest provides helpers to build navdata datagrams and to play the drone
// side of the telemetry channel in tests.
package navdatatest

import (
	"encoding/binary"

	"github.com/roman-kulish/ardrone-link/internal/navdata"
)

// Builder assembles a navdata datagram record by record
type Builder struct {
	header  navdata.Header
	records []byte
}

func NewBuilder(status, sequence uint32) *Builder {
	return &Builder{
		header: navdata.Header{
			Magic:    navdata.Magic,
			Status:   status,
			Sequence: sequence,
		},
	}
}

// Magic overrides the header magic
func (b *Builder) Magic(magic uint32) *Builder {
	b.header.Magic = magic
	return b
}

// Demo appends a demo record holding d
func (b *Builder) Demo(d navdata.DroneData) *Builder {
	content, _ := d.MarshalBinary()
	return b.Option(navdata.TagDemo, content)
}

// Option appends a record whose declared size matches its content
func (b *Builder) Option(tag uint16, content []byte) *Builder {
	return b.Record(tag, uint16(len(content)+4), content)
}

// Record appends a record with an explicit declared size, which may disagree with the content
func (b *Builder) Record(tag, size uint16, content []byte) *Builder {
	b.records = binary.LittleEndian.AppendUint16(b.records, tag)
	b.records = binary.LittleEndian.AppendUint16(b.records, size)
	b.records = append(b.records, content...)
	return b
}

// Raw appends bytes as they are
func (b *Builder) Raw(p []byte) *Builder {
	b.records = append(b.records, p...)
	return b
}

// Bytes returns the header and the records appended so far, without a checksum record
func (b *Builder) Bytes() []byte {
	buf := make([]byte, 0, navdata.HeaderSize+len(b.records))
	buf = binary.LittleEndian.AppendUint32(buf, b.header.Magic)
	buf = binary.LittleEndian.AppendUint32(buf, b.header.Status)
	buf = binary.LittleEndian.AppendUint32(buf, b.header.Sequence)
	buf = binary.LittleEndian.AppendUint32(buf, b.header.VisionFlag)
	return append(buf, b.records...)
}

// Build returns the datagram terminated by a correct checksum record
func (b *Builder) Build() []byte {
	buf := b.Bytes()

	var sum uint32
	for _, v := range buf {
		sum += uint32(v)
	}

	buf = binary.LittleEndian.AppendUint16(buf, navdata.TagChecksum)
	buf = binary.LittleEndian.AppendUint16(buf, 8)
	return binary.LittleEndian.AppendUint32(buf, sum)
}
