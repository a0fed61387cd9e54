/*
	This file supports serialization/deserialization and compression of data.
*/

package seglib

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is the format of compression for storing data.
// NOTE: Should be no more than 8 (3 bits) of compression types.
type Compression uint8

const (
	Uncompressed Compression = iota
	Snappy
	Gzip
	Zstd
)

func (compress Compression) String() string {
	switch compress {
	case Uncompressed:
		return "No compression"
	case Snappy:
		return "Go Snappy compression"
	case Gzip:
		return "Gzip compression"
	case Zstd:
		return "Zstd compression"
	default:
		return "Unknown compression"
	}
}

// ParseCompression returns the Compression for strings like "snappy".
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none", "uncompressed":
		return Uncompressed, nil
	case "snappy":
		return Snappy, nil
	case "gzip":
		return Gzip, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// Checksum is the type of checksum employed for error checking stored data.
// NOTE: Should be no more than 4 (2 bits) of checksum types.
type Checksum uint8

const (
	NoChecksum Checksum = 0
	CRC32               = 1 << iota
)

func (checksum Checksum) String() string {
	switch checksum {
	case NoChecksum:
		return "No checksum"
	case CRC32:
		return "CRC32 checksum"
	default:
		return "Unknown checksum"
	}
}

// ParseChecksum returns the Checksum for strings like "crc32".
func ParseChecksum(s string) (Checksum, error) {
	switch s {
	case "", "none":
		return NoChecksum, nil
	case "crc32":
		return CRC32, nil
	default:
		return 0, fmt.Errorf("unknown checksum %q", s)
	}
}

// SerializationFormat is a single byte combining both compression and checksum methods.
type SerializationFormat uint8

func EncodeSerializationFormat(compress Compression, checksum Checksum) SerializationFormat {
	a := (uint8(compress) & 0x07) << 5
	b := (uint8(checksum) & 0x03) << 3
	return SerializationFormat(a | b)
}

func DecodeSerializationFormat(s SerializationFormat) (compress Compression, checksum Checksum) {
	compress = Compression(uint8(s) >> 5)
	checksum = Checksum((uint8(s) >> 3) & 0x03)
	return
}

// SerializeData serializes a slice of bytes using optional compression, checksum.
func SerializeData(data []byte, compress Compression, checksum Checksum) (s []byte, err error) {
	var buffer bytes.Buffer

	// Store the requested compression and checksum
	format := EncodeSerializationFormat(compress, checksum)
	err = binary.Write(&buffer, binary.LittleEndian, format)
	if err != nil {
		return
	}

	// Handle compression if requested
	var byteData []byte
	switch compress {
	case Uncompressed:
		byteData = data
	case Snappy:
		byteData = snappy.Encode(nil, data)
	case Gzip:
		var gzipBuf bytes.Buffer
		zw := gzip.NewWriter(&gzipBuf)
		if _, err = zw.Write(data); err != nil {
			return
		}
		if err = zw.Close(); err != nil {
			return
		}
		byteData = gzipBuf.Bytes()
	case Zstd:
		var enc *zstd.Encoder
		if enc, err = zstd.NewWriter(nil); err != nil {
			return
		}
		byteData = enc.EncodeAll(data, nil)
		enc.Close()
	default:
		err = fmt.Errorf("illegal compression (%s) during serialization", compress)
	}
	if err != nil {
		return
	}

	// Handle checksum if requested
	switch checksum {
	case NoChecksum:
	case CRC32:
		crcChecksum := crc32.ChecksumIEEE(byteData)
		err = binary.Write(&buffer, binary.LittleEndian, crcChecksum)
	default:
		err = fmt.Errorf("illegal checksum (%s) in SerializeData()", checksum)
	}
	if err == nil {
		// Note the actual data is written last, after any checksum so we don't have to
		// worry about length when deserializing.
		_, err = buffer.Write(byteData)
		if err == nil {
			s = buffer.Bytes()
		}
	}
	return
}

// DeserializeData deserializes a slice of bytes using stored compression, checksum.
// If uncompress parameter is false, the data is not uncompressed.
func DeserializeData(s []byte, uncompress bool) (data []byte, compress Compression, err error) {
	buffer := bytes.NewBuffer(s)

	// Get the stored compression and checksum
	var format SerializationFormat
	err = binary.Read(buffer, binary.LittleEndian, &format)
	if err != nil {
		return
	}
	var checksum Checksum
	compress, checksum = DecodeSerializationFormat(format)

	// Get any checksum.
	var storedCrc32 uint32
	switch checksum {
	case NoChecksum:
	case CRC32:
		err = binary.Read(buffer, binary.LittleEndian, &storedCrc32)
	default:
		err = fmt.Errorf("illegal checksum in deserializing data")
	}
	if err != nil {
		return
	}

	// Get the possibly compressed data.
	cdata := buffer.Bytes()

	// Perform any requested checksum
	switch checksum {
	case CRC32:
		crcChecksum := crc32.ChecksumIEEE(cdata)
		if crcChecksum != storedCrc32 {
			err = fmt.Errorf("bad checksum.  Stored %x got %x", storedCrc32, crcChecksum)
			return
		}
	}

	// Uncompress if needed
	if uncompress {
		switch compress {
		case Uncompressed:
			data = cdata
		case Snappy:
			data, err = snappy.Decode(nil, cdata)
		case Gzip:
			var zr *gzip.Reader
			if zr, err = gzip.NewReader(bytes.NewReader(cdata)); err != nil {
				return
			}
			var gzipBuf bytes.Buffer
			if _, err = gzipBuf.ReadFrom(zr); err != nil {
				return
			}
			if err = zr.Close(); err != nil {
				return
			}
			data = gzipBuf.Bytes()
		case Zstd:
			var dec *zstd.Decoder
			if dec, err = zstd.NewReader(nil); err != nil {
				return
			}
			data, err = dec.DecodeAll(cdata, nil)
			dec.Close()
		default:
			err = fmt.Errorf("illegal compression format (%d) in deserialization", compress)
		}
	}
	return
}

// fieldMagic starts every serialized field so stray data fails fast.
var fieldMagic = [4]byte{'S', 'G', 'F', '1'}

// MarshalBinary encodes a field as a type byte, rank byte, little-endian int32
// dimensions, then the packed element data.
func (f *Field) MarshalBinary() ([]byte, error) {
	if f.Rank() > 255 {
		return nil, fmt.Errorf("cannot serialize field of rank %d", f.Rank())
	}
	var buffer bytes.Buffer
	buffer.Write(fieldMagic[:])
	buffer.WriteByte(byte(f.dtype))
	buffer.WriteByte(byte(f.Rank()))
	for _, d := range f.shape {
		if d > 0x7FFFFFFF {
			return nil, fmt.Errorf("cannot serialize field dimension %d", d)
		}
		if err := binary.Write(&buffer, binary.LittleEndian, int32(d)); err != nil {
			return nil, err
		}
	}
	buffer.Write(f.data)
	return buffer.Bytes(), nil
}

// UnmarshalBinary decodes a field serialized by MarshalBinary.
func (f *Field) UnmarshalBinary(b []byte) error {
	if len(b) < 6 || !bytes.Equal(b[:4], fieldMagic[:]) {
		return fmt.Errorf("data lacks field serialization magic bytes")
	}
	t := DataType(b[4])
	if _, found := typeBytes[t]; !found {
		return fmt.Errorf("serialized field has unknown data type (%d)", b[4])
	}
	rank := int(b[5])
	if len(b) < 6+rank*4 {
		return fmt.Errorf("serialized field truncated in %d-dim shape", rank)
	}
	shape := make([]int, rank)
	for d := 0; d < rank; d++ {
		shape[d] = int(int32(binary.LittleEndian.Uint32(b[6+d*4:])))
		if shape[d] < 0 {
			return fmt.Errorf("serialized field has negative dimension %d", shape[d])
		}
	}
	decoded, err := FieldFromBytes(t, shape, b[6+rank*4:])
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

// SerializeField serializes a field with the given compression and checksum.
func SerializeField(f *Field, compress Compression, checksum Checksum) ([]byte, error) {
	b, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return SerializeData(b, compress, checksum)
}

// DeserializeField deserializes a field written by SerializeField.
func DeserializeField(s []byte) (*Field, error) {
	b, _, err := DeserializeData(s, true)
	if err != nil {
		return nil, err
	}
	var f Field
	if err := f.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return &f, nil
}
