package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// File layout (little endian):
//
//	magic     [4]byte "AGVX"
//	version   uint16
//	dims      uint32
//	count     uint32
//	idLen     uint16
//	buildID   [idLen]byte
//	vectors   [count*dims]float32
var magic = [4]byte{'A', 'G', 'V', 'X'}

const formatVersion uint16 = 1

const (
	// maxDims bounds the vector size accepted from a file header.
	maxDims = 1 << 16
	// maxPrealloc caps the float32s reserved before any vector is read.
	maxPrealloc = 1 << 20
)

// ErrCorrupt indicates the serialised index could not be decoded.
var ErrCorrupt = errors.New("flat: corrupt index file")

type header struct {
	Magic   [4]byte
	Version uint16
	Dims    uint32
	Count   uint32
	IDLen   uint16
}

// Encode writes the index and its build identifier to w.
func (x *Index) Encode(w io.Writer, buildID string) error {
	if len(buildID) > math.MaxUint16 {
		return fmt.Errorf("flat: build id too long (%d bytes)", len(buildID))
	}

	bw := bufio.NewWriter(w)
	h := header{
		Magic:   magic,
		Version: formatVersion,
		Dims:    uint32(x.dims),
		Count:   uint32(x.n),
		IDLen:   uint16(len(buildID)),
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := bw.WriteString(buildID); err != nil {
		return fmt.Errorf("write build id: %w", err)
	}

	buf := make([]byte, 4)
	for _, f := range x.data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write vectors: %w", err)
		}
	}
	return bw.Flush()
}

// Decode reads an index written by Encode, returning it with its build identifier.
func Decode(r io.Reader) (*Index, string, error) {
	br := bufio.NewReader(r)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, "", fmt.Errorf("%w: read header: %w", ErrCorrupt, err)
	}
	if h.Magic != magic {
		return nil, "", fmt.Errorf("%w: bad magic %q", ErrCorrupt, h.Magic[:])
	}
	if h.Version != formatVersion {
		return nil, "", fmt.Errorf("%w: unsupported version %d", ErrCorrupt, h.Version)
	}
	if h.Dims == 0 || h.Count == 0 {
		return nil, "", fmt.Errorf("%w: empty index (dims=%d, count=%d)", ErrCorrupt, h.Dims, h.Count)
	}
	if h.Dims > maxDims {
		return nil, "", fmt.Errorf("%w: %d dimensions exceeds %d", ErrCorrupt, h.Dims, maxDims)
	}

	id := make([]byte, h.IDLen)
	if _, err := io.ReadFull(br, id); err != nil {
		return nil, "", fmt.Errorf("%w: read build id: %w", ErrCorrupt, err)
	}

	// Memory grows with the rows actually present, not the claimed count.
	dims := int(h.Dims)
	data := make([]float32, 0, min(uint64(h.Count)*uint64(h.Dims), maxPrealloc))
	row := make([]byte, dims*4)
	for i := uint32(0); i < h.Count; i++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, "", fmt.Errorf("%w: read vector %d of %d: %w", ErrCorrupt, i, h.Count, err)
		}
		for j := range dims {
			data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(row[j*4:])))
		}
	}
	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("%w: trailing data", ErrCorrupt)
	}

	return &Index{dims: int(h.Dims), n: int(h.Count), data: data}, string(id), nil
}
