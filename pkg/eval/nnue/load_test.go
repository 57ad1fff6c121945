package nnue

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func quantFixture() []byte {
	var buf bytes.Buffer
	buf.Write(quantMagic)
	binary.Write(&buf, binary.LittleEndian, header{Version: 1, InputDim: 4, HiddenDim: 2, OutputDim: 1})
	binary.Write(&buf, binary.LittleEndian, float32(16))
	binary.Write(&buf, binary.LittleEndian, float32(32))
	binary.Write(&buf, binary.LittleEndian, []int8{1, -2, 3, -4, 5, -6, 7, -8}) // w1: 2x4
	binary.Write(&buf, binary.LittleEndian, []int16{10, -20})                   // b1
	binary.Write(&buf, binary.LittleEndian, []int8{9, -9})                      // w2: 1x2
	binary.Write(&buf, binary.LittleEndian, []int16{7})                         // b2
	return buf.Bytes()
}

func denseFixture() []byte {
	var buf bytes.Buffer
	buf.Write(denseMagic)
	binary.Write(&buf, binary.LittleEndian, header{Version: 2, InputDim: 3, HiddenDim: 2, OutputDim: 1})
	binary.Write(&buf, binary.LittleEndian, []float32{1, 2, 3, 4, 5, 6}) // w1: 2x3
	binary.Write(&buf, binary.LittleEndian, []float32{0.5, -0.5})        // b1
	binary.Write(&buf, binary.LittleEndian, []float32{1, -1})            // w2
	binary.Write(&buf, binary.LittleEndian, []float32{0.25})             // b2
	return buf.Bytes()
}

func TestLoadQuant(t *testing.T) {
	is := is.New(t)
	w, err := LoadQuant(bytes.NewReader(quantFixture()))
	is.NoErr(err)
	is.Equal(w.Version, uint32(1))
	is.Equal(w.InputDim, 4)
	is.Equal(w.HiddenDim, 2)
	is.Equal(w.OutputDim, 1)
	is.Equal(w.W1Scale, float32(16))
	is.Equal(w.W2Scale, float32(32))
	is.Equal(w.W1, []int8{1, -2, 3, -4, 5, -6, 7, -8})
	is.Equal(w.B1, []int16{10, -20})
	is.Equal(w.W2, []int8{9, -9})
	is.Equal(w.B2, []int16{7})
}

func TestLoadDense(t *testing.T) {
	is := is.New(t)
	w, err := LoadDense(bytes.NewReader(denseFixture()))
	is.NoErr(err)
	is.Equal(w.Version, uint32(2))
	is.Equal(w.InputDim, 3)
	is.Equal(w.HiddenDim, 2)
	is.Equal(w.W1, []float32{1, 2, 3, 4, 5, 6})
	is.Equal(w.B2, []float32{0.25})
}

func TestLoadTruncated(t *testing.T) {
	var full = quantFixture()
	// cut inside every section: header, scales, weights, final bias
	for _, size := range []int{4, 12, 22, 30, len(full) - 1} {
		_, err := LoadQuant(bytes.NewReader(full[:size]))
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("cut at %v: want ErrTruncated, got %v", size, err)
		}
	}
	var dense = denseFixture()
	if _, err := LoadDense(bytes.NewReader(dense[:len(dense)-2])); !errors.Is(err, ErrTruncated) {
		t.Fatalf("dense: want ErrTruncated, got %v", err)
	}
}

func TestLoadBadMagic(t *testing.T) {
	is := is.New(t)
	var data = quantFixture()
	data[0] ^= 0xFF
	_, err := LoadQuant(bytes.NewReader(data))
	is.True(errors.Is(err, ErrBadMagic))

	// a dense file is not a quant file
	_, err = LoadQuant(bytes.NewReader(denseFixture()))
	is.True(errors.Is(err, ErrBadMagic))
}

func TestLoadBadHeader(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	buf.Write(quantMagic)
	binary.Write(&buf, binary.LittleEndian, header{Version: 1, InputDim: 4, HiddenDim: 0, OutputDim: 1})
	_, err := LoadQuant(bytes.NewReader(buf.Bytes()))
	is.True(errors.Is(err, ErrBadHeader))

	buf.Reset()
	buf.Write(quantMagic)
	binary.Write(&buf, binary.LittleEndian, header{Version: 1, InputDim: 1 << 20, HiddenDim: 1 << 20, OutputDim: 1})
	_, err = LoadQuant(bytes.NewReader(buf.Bytes()))
	is.True(errors.Is(err, ErrBadHeader))
}

func TestLoadQuantFile(t *testing.T) {
	is := is.New(t)
	var path = filepath.Join(t.TempDir(), "net.nnue")
	is.NoErr(os.WriteFile(path, quantFixture(), 0o644))
	w, err := LoadQuantFile(path)
	is.NoErr(err)
	is.Equal(w.HiddenDim, 2)

	_, err = LoadQuantFile(filepath.Join(t.TempDir(), "missing.nnue"))
	is.True(err != nil)
}
