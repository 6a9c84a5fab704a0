package navdata

// checksumRecordSize is the full size of the terminal checksum record
const checksumRecordSize = 8

// Checksum returns the wrapping sum of every byte of buf except the trailing checksum record
func Checksum(buf []byte) uint32 {
	if len(buf) < checksumRecordSize {
		return 0
	}

	return sum(buf[:len(buf)-checksumRecordSize])
}

func sum(b []byte) uint32 {
	var s uint32
	for _, v := range b {
		s += uint32(v)
	}
	return s
}

// Validate reports whether the checksum of buf matches the claimed value
func Validate(buf []byte, claimed uint32) bool {
	return Checksum(buf) == claimed
}
