// Package stl decodes triangle meshes from binary and ASCII STL files.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"stlshade/aabox"
	"stlshade/vmath/vec3"
)

// Mesh is an indexed triangle mesh.  Vertices shared between facets are
// stored once.
type Mesh struct {
	Name  string
	Verts []vec3.T
	Faces [][3]int
}

func (m *Mesh) Vertices() []vec3.T {
	return m.Verts
}

func (m *Mesh) Triangles() [][3]int {
	return m.Faces
}

// Bounds returns the smallest box containing every vertex.
func (m *Mesh) Bounds() aabox.AABox {
	b := aabox.Empty()
	for _, v := range m.Verts {
		b = aabox.GrowToPoint(b, v)
	}
	return b
}

type builder struct {
	mesh  *Mesh
	index map[vec3.T]int
}

func newBuilder() *builder {
	return &builder{
		mesh:  &Mesh{},
		index: map[vec3.T]int{},
	}
}

func (b *builder) vertex(v vec3.T) int {
	if i, ok := b.index[v]; ok {
		return i
	}
	i := len(b.mesh.Verts)
	b.mesh.Verts = append(b.mesh.Verts, v)
	b.index[v] = i
	return i
}

func (b *builder) facet(p [3]vec3.T) {
	b.mesh.Faces = append(b.mesh.Faces, [3]int{b.vertex(p[0]), b.vertex(p[1]), b.vertex(p[2])})
}

const (
	binaryHeaderSize = 80
	binaryFacetSize  = 50
)

var ErrMalformed = errors.New("malformed stl")

// Read decodes an STL stream, detecting whether it is binary or ASCII.
func Read(in io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("while reading stl: %w", err)
	}
	return Decode(data)
}

// Decode decodes STL data, detecting whether it is binary or ASCII.  Binary
// files may also begin with "solid", so the facet count is checked against
// the file size first.
func Decode(data []byte) (*Mesh, error) {
	if len(data) >= binaryHeaderSize+4 {
		count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
		if uint64(len(data)) == binaryHeaderSize+4+uint64(count)*binaryFacetSize {
			return decodeBinary(data, int(count))
		}
	}

	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return decodeASCII(data)
	}

	return nil, fmt.Errorf("%w: neither a binary nor an ascii stl (%d bytes)", ErrMalformed, len(data))
}

func decodeBinary(data []byte, count int) (*Mesh, error) {
	b := newBuilder()
	b.mesh.Name = string(bytes.TrimRight(data[:binaryHeaderSize], "\x00 "))

	facets := data[binaryHeaderSize+4:]
	for i := 0; i < count; i++ {
		facet := facets[i*binaryFacetSize : (i+1)*binaryFacetSize]

		// Skip the stored normal; it is recomputed from the winding.
		var p [3]vec3.T
		for v := 0; v < 3; v++ {
			for axis := 0; axis < 3; axis++ {
				off := 12 + v*12 + axis*4
				p[v][axis] = float64(math.Float32frombits(binary.LittleEndian.Uint32(facet[off:])))
			}
		}
		b.facet(p)
	}
	return b.mesh, nil
}

func decodeASCII(data []byte) (*Mesh, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Split(bufio.ScanWords)

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}

	b := newBuilder()
	if tok, _ := next(); tok != "solid" {
		return nil, fmt.Errorf("%w: missing solid keyword", ErrMalformed)
	}

	var p [3]vec3.T
	nv := 0
	for {
		tok, ok := next()
		if !ok {
			break
		}

		switch tok {
		case "vertex":
			if nv == 3 {
				return nil, fmt.Errorf("%w: facet %d has more than 3 vertices", ErrMalformed, len(b.mesh.Faces))
			}
			for axis := 0; axis < 3; axis++ {
				f, ok := next()
				if !ok {
					return nil, fmt.Errorf("%w: truncated vertex", ErrMalformed)
				}
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: bad coordinate %q: %v", ErrMalformed, f, err)
				}
				p[nv][axis] = v
			}
			nv++
		case "endfacet":
			if nv != 3 {
				return nil, fmt.Errorf("%w: facet %d has %d vertices", ErrMalformed, len(b.mesh.Faces), nv)
			}
			b.facet(p)
			nv = 0
		case "endsolid":
			return b.mesh, nil
		default:
			// Names, "facet normal nx ny nz", and loop keywords carry
			// nothing we use.
			if len(b.mesh.Faces) == 0 && nv == 0 && b.mesh.Name == "" && !isKeyword(tok) && !isNumber(tok) {
				b.mesh.Name = tok
			}
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("while scanning ascii stl: %w", err)
	}
	return nil, fmt.Errorf("%w: missing endsolid", ErrMalformed)
}

func isKeyword(tok string) bool {
	switch tok {
	case "facet", "normal", "outer", "loop", "endloop":
		return true
	}
	return false
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}
