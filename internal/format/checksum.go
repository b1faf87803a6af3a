package format

import "hash/crc32"

// FileHeaderChecksum computes the CRC32 (IEEE) of the first 120 header bytes.
// b must hold at least FileChecksumRegion bytes.
func FileHeaderChecksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b[:FileChecksumRegion])
}

// ChunkHeaderChecksum computes the CRC32 of the chunk header and its string and
// template tables, skipping the flags and checksum fields. b must hold at least
// ChunkRecordsStart bytes.
func ChunkHeaderChecksum(b []byte) uint32 {
	sum := crc32.Update(0, crc32.IEEETable, b[:ChunkChecksumSkipStart])
	return crc32.Update(sum, crc32.IEEETable, b[ChunkChecksumSkipEnd:ChunkRecordsStart])
}

// ChunkRecordsChecksum computes the CRC32 of the record area [0x200, freeSpace).
// ok is false when freeSpace lies outside the chunk.
func ChunkRecordsChecksum(b []byte, freeSpace int) (uint32, bool) {
	if freeSpace < ChunkRecordsStart || freeSpace > len(b) {
		return 0, false
	}
	return crc32.ChecksumIEEE(b[ChunkRecordsStart:freeSpace]), true
}
