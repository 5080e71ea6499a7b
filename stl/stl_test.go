package stl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"stlshade/aabox"
	"stlshade/vmath/vec3"
)

var tetrahedron = [][3]vec3.T{
	{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}},
	{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
}

func encodeBinary(name string, facets [][3]vec3.T) []byte {
	var buf bytes.Buffer
	header := make([]byte, binaryHeaderSize)
	copy(header, name)
	buf.Write(header)
	binary.Write(&buf, binary.LittleEndian, uint32(len(facets)))
	for _, f := range facets {
		binary.Write(&buf, binary.LittleEndian, [3]float32{})
		for _, v := range f {
			binary.Write(&buf, binary.LittleEndian, [3]float32{float32(v[0]), float32(v[1]), float32(v[2])})
		}
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

const asciiTetrahedron = `solid tetra
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 -1 0
    outer loop
      vertex 0 0 0
      vertex 0 0 1
      vertex 1 0 0
    endloop
  endfacet
  facet normal -1 0 0
    outer loop
      vertex 0 0 0
      vertex 0 1 0
      vertex 0 0 1
    endloop
  endfacet
  facet normal 0.577 0.577 0.577
    outer loop
      vertex 1 0 0
      vertex 0 0 1
      vertex 0 1 0
    endloop
  endfacet
endsolid tetra
`

func checkTetrahedron(t *testing.T, m *Mesh) {
	t.Helper()

	if len(m.Vertices()) != 4 {
		t.Errorf("Got %d vertices, want 4 after de-duplication", len(m.Vertices()))
	}
	if len(m.Triangles()) != 4 {
		t.Fatalf("Got %d triangles, want 4", len(m.Triangles()))
	}

	var got [][3]vec3.T
	for _, tri := range m.Triangles() {
		got = append(got, [3]vec3.T{m.Verts[tri[0]], m.Verts[tri[1]], m.Verts[tri[2]]})
	}
	if diff := cmp.Diff(got, tetrahedron); diff != "" {
		t.Errorf("Bad triangles; diff (-got +want)\n%s", diff)
	}

	if diff := cmp.Diff(m.Bounds(), aabox.FromPoints(vec3.T{0, 0, 0}, vec3.T{1, 1, 1})); diff != "" {
		t.Errorf("Bad bounds; diff (-got +want)\n%s", diff)
	}
}

func TestDecodeBinary(t *testing.T) {
	m, err := Decode(encodeBinary("tetra", tetrahedron))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.Name != "tetra" {
		t.Errorf("Name = %q, want %q", m.Name, "tetra")
	}
	checkTetrahedron(t, m)
}

func TestDecodeBinaryStartingWithSolid(t *testing.T) {
	m, err := Decode(encodeBinary("solid exported by some tool", tetrahedron))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	checkTetrahedron(t, m)
}

func TestDecodeASCII(t *testing.T) {
	m, err := Read(strings.NewReader(asciiTetrahedron))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.Name != "tetra" {
		t.Errorf("Name = %q, want %q", m.Name, "tetra")
	}
	checkTetrahedron(t, m)
}

func TestDecodeEmpty(t *testing.T) {
	m, err := Decode(encodeBinary("", nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(m.Triangles()) != 0 {
		t.Errorf("Got %d triangles, want 0", len(m.Triangles()))
	}
	if !m.Bounds().IsEmpty() {
		t.Errorf("Empty mesh bounds = %v, want empty", m.Bounds())
	}
}

func TestDecodeErrors(t *testing.T) {
	testCases := map[string]string{
		"garbage":       "this is not an stl file",
		"truncated":     "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\n",
		"bad number":    "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 zero 0\n",
		"short facet":   "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\nendsolid x\n",
		"binary length": string(encodeBinary("", tetrahedron)[:120]),
	}
	for desc, in := range testCases {
		t.Run(desc, func(t *testing.T) {
			if _, err := Decode([]byte(in)); !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestBinaryPrecision(t *testing.T) {
	third := [][3]vec3.T{{{1.0 / 3, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
	m, err := Decode(encodeBinary("", third))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := m.Verts[0][0]; math.Abs(got-1.0/3) > 1e-7 {
		t.Errorf("Vertex x = %v, want ~1/3", got)
	}
}
