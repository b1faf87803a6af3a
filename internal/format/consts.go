// Package format houses low-level decoders for the EVTX container: the file
// header, chunk headers and event record framing. Parsing here is
// allocation-light and independent from the public API; binary XML payloads are
// handed to internal/binxml untouched.
package format

var (
	// FileSignature is the eight-byte magic at the start of every EVTX file.
	FileSignature = []byte("ElfFile\x00")

	// ChunkSignature is the eight-byte magic at the start of every chunk.
	ChunkSignature = []byte("ElfChnk\x00")

	// RecordSignature is the four-byte magic at the start of every event record
	// (0x00002a2a read little-endian).
	RecordSignature = []byte{0x2a, 0x2a, 0x00, 0x00}
)

// File header layout. The header occupies a full 4 KiB block; only the first
// 128 bytes carry data.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x000   8    "ElfFile\0"
//	 0x008   8    First chunk number
//	 0x010   8    Last chunk number
//	 0x018   8    Next record identifier
//	 0x020   4    Header size (128)
//	 0x024   2    Minor version (1)
//	 0x026   2    Major version (3)
//	 0x028   2    Header block size (4096), i.e. offset of the first chunk
//	 0x02A   2    Number of chunks
//	 0x078   4    File flags (0x1 dirty, 0x2 full)
//	 0x07C   4    CRC32 of bytes [0x000, 0x078)
const (
	FileHeaderBlockSize = 0x1000
	FileHeaderSize      = 0x80

	FileSignatureOffset       = 0x00
	FileSignatureSize         = 8
	FileFirstChunkOffset      = 0x08
	FileLastChunkOffset       = 0x10
	FileNextRecordIDOffset    = 0x18
	FileHeaderSizeOffset      = 0x20
	FileMinorVersionOffset    = 0x24
	FileMajorVersionOffset    = 0x26
	FileHeaderBlockSizeOffset = 0x28
	FileChunkCountOffset      = 0x2A
	FileFlagsOffset           = 0x78
	FileChecksumOffset        = 0x7C

	// FileChecksumRegion is the number of leading header bytes covered by the
	// header CRC32.
	FileChecksumRegion = 0x78

	// FileMajorVersion is the only major version this package understands.
	FileMajorVersion = 3
)

// File header flags.
const (
	FileFlagDirty uint32 = 0x1
	FileFlagFull  uint32 = 0x2
)

// Chunk layout.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x000   8    "ElfChnk\0"
//	 0x008   8    First event record number
//	 0x010   8    Last event record number
//	 0x018   8    First event record identifier
//	 0x020   8    Last event record identifier
//	 0x028   4    Header size (128)
//	 0x02C   4    Offset of the last event record
//	 0x030   4    Free space offset (end of record data)
//	 0x034   4    CRC32 of record data [0x200, free space offset)
//	 0x078   4    Flags
//	 0x07C   4    CRC32 of [0x000, 0x078) and [0x080, 0x200)
//	 0x080 256    Common string offsets, 64 buckets
//	 0x180 128    Template pointers, 32 buckets
//	 0x200  ...   Event records
const (
	ChunkSize = 0x10000

	ChunkSignatureOffset         = 0x00
	ChunkSignatureSize           = 8
	ChunkFirstRecordNumberOffset = 0x08
	ChunkLastRecordNumberOffset  = 0x10
	ChunkFirstRecordIDOffset     = 0x18
	ChunkLastRecordIDOffset      = 0x20
	ChunkHeaderSizeOffset        = 0x28
	ChunkLastRecordOffsetOffset  = 0x2C
	ChunkFreeSpaceOffsetOffset   = 0x30
	ChunkRecordsChecksumOffset   = 0x34
	ChunkFlagsOffset             = 0x78
	ChunkHeaderChecksumOffset    = 0x7C
	ChunkStringTableOffset       = 0x80
	ChunkTemplateTableOffset     = 0x180
	ChunkRecordsStart            = 0x200

	ChunkHeaderSize      = 0x80
	ChunkStringBuckets   = 64
	ChunkTemplateBuckets = 32

	// ChunkChecksumSkipStart and ChunkChecksumSkipEnd delimit the bytes excluded
	// from the chunk header checksum (flags and the checksum itself).
	ChunkChecksumSkipStart = 0x78
	ChunkChecksumSkipEnd   = 0x80
)

// Event record layout.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x00    4    2a 2a 00 00
//	 0x04    4    Record size (header + payload + trailing size copy)
//	 0x08    8    Event record identifier
//	 0x10    8    Written time (FILETIME)
//	 0x18   ...   Binary XML payload
//	 size-4  4    Copy of record size
const (
	RecordSignatureSize = 4
	RecordSizeOffset    = 0x04
	RecordIDOffset      = 0x08
	RecordTimeOffset    = 0x10
	RecordHeaderSize    = 0x18
	RecordTrailerSize   = 4

	// RecordMinSize is a record with an empty payload.
	RecordMinSize = RecordHeaderSize + RecordTrailerSize
)
