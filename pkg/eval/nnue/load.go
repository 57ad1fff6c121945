package nnue

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

var (
	ErrBadMagic  = errors.New("nnue: bad magic")
	ErrBadHeader = errors.New("nnue: malformed header")
	ErrTruncated = errors.New("nnue: truncated weight data")
)

var (
	denseMagic = []byte("PIENNUE1")
	quantMagic = []byte("PIENNQ01")
)

// maxWeightElems bounds each weight array; a header promising more
// than this is malformed, not merely large.
const maxWeightElems = 1 << 28

// QuantWeights is the quantized network: int8 layer weights, int16
// biases, two float scale factors. Immutable once loaded.
type QuantWeights struct {
	Version   uint32
	InputDim  int
	HiddenDim int
	OutputDim int
	W1Scale   float32
	W2Scale   float32
	W1        []int8  // hidden x input, row-major by hidden unit
	B1        []int16 // hidden
	W2        []int8  // output x hidden
	B2        []int16 // output
}

// DenseWeights is the float32 network with the same shape.
type DenseWeights struct {
	Version   uint32
	InputDim  int
	HiddenDim int
	OutputDim int
	W1        []float32
	B1        []float32
	W2        []float32
	B2        []float32
}

type header struct {
	Version   uint32
	InputDim  uint32
	HiddenDim uint32
	OutputDim uint32
}

// readSection reads one fixed-size field group; a short read anywhere
// is a hard error, never zero-padded.
func readSection(r io.Reader, data interface{}, name string) error {
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %v", ErrTruncated, name)
		}
		return fmt.Errorf("nnue: read %v: %w", name, err)
	}
	return nil
}

func readHeader(r io.Reader, magic []byte) (header, error) {
	var h header
	var got [8]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return h, fmt.Errorf("%w: magic", ErrTruncated)
	}
	if !bytes.Equal(got[:], magic) {
		return h, fmt.Errorf("%w: %q", ErrBadMagic, got[:])
	}
	if err := readSection(r, &h, "header"); err != nil {
		return h, err
	}
	if h.InputDim == 0 || h.HiddenDim == 0 || h.OutputDim == 0 ||
		uint64(h.InputDim)*uint64(h.HiddenDim) > maxWeightElems ||
		uint64(h.OutputDim)*uint64(h.HiddenDim) > maxWeightElems {
		return h, fmt.Errorf("%w: dims %vx%vx%v",
			ErrBadHeader, h.InputDim, h.HiddenDim, h.OutputDim)
	}
	return h, nil
}

// LoadQuant reads the quantized "PIENNQ01" format.
func LoadQuant(r io.Reader) (*QuantWeights, error) {
	var h, err = readHeader(r, quantMagic)
	if err != nil {
		return nil, err
	}
	var w = &QuantWeights{
		Version:   h.Version,
		InputDim:  int(h.InputDim),
		HiddenDim: int(h.HiddenDim),
		OutputDim: int(h.OutputDim),
		W1:        make([]int8, int(h.HiddenDim)*int(h.InputDim)),
		B1:        make([]int16, h.HiddenDim),
		W2:        make([]int8, int(h.OutputDim)*int(h.HiddenDim)),
		B2:        make([]int16, h.OutputDim),
	}
	if err = readSection(r, &w.W1Scale, "w1_scale"); err != nil {
		return nil, err
	}
	if err = readSection(r, &w.W2Scale, "w2_scale"); err != nil {
		return nil, err
	}
	for _, section := range []struct {
		data interface{}
		name string
	}{
		{w.W1, "w1"}, {w.B1, "b1"}, {w.W2, "w2"}, {w.B2, "b2"},
	} {
		if err = readSection(r, section.data, section.name); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// LoadDense reads the float32 "PIENNUE1" format.
func LoadDense(r io.Reader) (*DenseWeights, error) {
	var h, err = readHeader(r, denseMagic)
	if err != nil {
		return nil, err
	}
	var w = &DenseWeights{
		Version:   h.Version,
		InputDim:  int(h.InputDim),
		HiddenDim: int(h.HiddenDim),
		OutputDim: int(h.OutputDim),
		W1:        make([]float32, int(h.HiddenDim)*int(h.InputDim)),
		B1:        make([]float32, h.HiddenDim),
		W2:        make([]float32, int(h.OutputDim)*int(h.HiddenDim)),
		B2:        make([]float32, h.OutputDim),
	}
	for _, section := range []struct {
		data interface{}
		name string
	}{
		{w.W1, "w1"}, {w.B1, "b1"}, {w.W2, "w2"}, {w.B2, "b2"},
	} {
		if err = readSection(r, section.data, section.name); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func LoadQuantFile(path string) (*QuantWeights, error) {
	var file, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: open %v: %w", path, err)
	}
	defer file.Close()
	w, err := LoadQuant(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("nnue: load %v: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("input", w.InputDim).
		Int("hidden", w.HiddenDim).
		Msg("nnue-quant-loaded")
	return w, nil
}

func LoadDenseFile(path string) (*DenseWeights, error) {
	var file, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: open %v: %w", path, err)
	}
	defer file.Close()
	w, err := LoadDense(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("nnue: load %v: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("input", w.InputDim).
		Int("hidden", w.HiddenDim).
		Msg("nnue-dense-loaded")
	return w, nil
}
