package dataset

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arthurfeeney/nrlsh/blobstore"
)

var (
	// ErrCorrupt is returned when a file ends inside a vector or declares a
	// non-positive dimension.
	ErrCorrupt = errors.New("dataset: corrupt vector file")

	// ErrMixedDimensions is returned when vectors in one file differ in length.
	ErrMixedDimensions = errors.New("dataset: vectors have different dimensions")
)

// Write encodes vecs to w. All vectors must have the same positive length.
func Write(w io.Writer, vecs [][]float32) error {
	bw := bufio.NewWriter(w)
	var hdr [4]byte
	for i, v := range vecs {
		if len(v) == 0 || len(v) > math.MaxInt32 {
			return fmt.Errorf("dataset: vector %d has invalid length %d", i, len(v))
		}
		if len(v) != len(vecs[0]) {
			return fmt.Errorf("%w: vector %d has %d components, want %d", ErrMixedDimensions, i, len(v), len(vecs[0]))
		}
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(v)))
		if _, err := bw.Write(hdr[:]); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read decodes vectors from r until EOF. limit > 0 stops after that many
// vectors.
func Read(r io.Reader, limit int) ([][]float32, error) {
	br := bufio.NewReader(r)
	var (
		out [][]float32
		hdr [4]byte
		dim int
	)
	for limit <= 0 || len(out) < limit {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("%w: vector %d header: %v", ErrCorrupt, len(out), err)
		}
		d := int(int32(binary.LittleEndian.Uint32(hdr[:])))
		if d <= 0 {
			return nil, fmt.Errorf("%w: vector %d has dimension %d", ErrCorrupt, len(out), d)
		}
		if dim == 0 {
			dim = d
		} else if d != dim {
			return nil, fmt.Errorf("%w: vector %d has %d components, want %d", ErrMixedDimensions, len(out), d, dim)
		}

		v := make([]float32, d)
		if err := binary.Read(br, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("%w: vector %d body: %v", ErrCorrupt, len(out), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Load reads up to limit vectors (all when limit ≤ 0) from the named object,
// decompressing by extension.
func Load(ctx context.Context, store blobstore.Store, name string, limit int) ([][]float32, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dr, err := NewReader(rc, CompressionFor(name))
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	vecs, err := Read(dr, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return vecs, nil
}

// Save writes vecs to the named object, compressing by extension.
func Save(ctx context.Context, store blobstore.Store, name string, vecs [][]float32) (err error) {
	wc, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
	}()

	cw, err := NewWriter(wc, CompressionFor(name))
	if err != nil {
		return err
	}
	if err := Write(cw, vecs); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}
