package canvas

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// The raster format stores a canvas losslessly:
//
//	uint64 (little endian)  header length
//	header                  protobuf message, fields below
//	zlib stream             width*height*3 little-endian float64 samples
const (
	rasterFieldWidth             protowire.Number = 1
	rasterFieldHeight            protowire.Number = 2
	rasterFieldDataLayoutVersion protowire.Number = 3

	rasterDataLayoutVersion = 1
)

type rasterHeader struct {
	width, height     uint64
	dataLayoutVersion uint64
}

func (h rasterHeader) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, rasterFieldWidth, protowire.VarintType)
	b = protowire.AppendVarint(b, h.width)
	b = protowire.AppendTag(b, rasterFieldHeight, protowire.VarintType)
	b = protowire.AppendVarint(b, h.height)
	b = protowire.AppendTag(b, rasterFieldDataLayoutVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, h.dataLayoutVersion)
	return b
}

func (h *rasterHeader) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var dst *uint64
		switch num {
		case rasterFieldWidth:
			dst = &h.width
		case rasterFieldHeight:
			dst = &h.height
		case rasterFieldDataLayoutVersion:
			dst = &h.dataLayoutVersion
		}

		if dst == nil || typ != protowire.VarintType {
			// Unknown field; skip it.
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		*dst = v
		b = b[n:]
	}
	return nil
}

// maxRasterHeaderLength bounds the header allocation for corrupt input.
const maxRasterHeaderLength = 1 << 16

// maxRasterPixels bounds the canvas a header may ask ReadRaster to allocate.
const maxRasterPixels = 1 << 24

func ReadRaster(in io.Reader) (*Canvas, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > maxRasterHeaderLength {
		return nil, fmt.Errorf("header length %d exceeds limit %d", headerLength, maxRasterHeaderLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := rasterHeader{}
	if err := hdr.unmarshal(headerBytes); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	if hdr.dataLayoutVersion != rasterDataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", hdr.dataLayoutVersion)
	}

	if hdr.width == 0 || hdr.height == 0 {
		return nil, fmt.Errorf("bad raster size %dx%d", hdr.width, hdr.height)
	}
	if hdr.width > maxRasterPixels || hdr.height > maxRasterPixels/hdr.width {
		return nil, fmt.Errorf("raster size %dx%d exceeds limit of %d pixels", hdr.width, hdr.height, maxRasterPixels)
	}

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	c := New(int(hdr.width), int(hdr.height))
	samples := make([]float64, 3*len(c.Pixels))
	if err := binary.Read(zipReader, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("while reading samples: %w", err)
	}
	for i := range c.Pixels {
		copy(c.Pixels[i][:], samples[3*i:3*i+3])
	}

	return c, nil
}

func WriteRaster(c *Canvas, w io.Writer) error {
	hdrBytes := rasterHeader{
		width:             uint64(c.Width),
		height:            uint64(c.Height),
		dataLayoutVersion: rasterDataLayoutVersion,
	}.marshal()

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	samples := make([]float64, 0, 3*len(c.Pixels))
	for _, p := range c.Pixels {
		samples = append(samples, p[0], p[1], p[2])
	}

	zipWriter := zlib.NewWriter(w)
	if err := binary.Write(zipWriter, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("while writing samples: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}
