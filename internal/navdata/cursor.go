package navdata

import "encoding/binary"

// cursor walks a datagram and refuses to hand out bytes past its end
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

// next returns the following n bytes and advances past them
func (c *cursor) next(n int) ([]byte, bool) {
	if n < 0 || n > c.remaining() {
		return nil, false
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, true
}

func (c *cursor) uint16() (uint16, bool) {
	b, ok := c.next(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}
