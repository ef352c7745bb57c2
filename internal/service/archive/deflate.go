package archive

import (
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// pooledWriter returns its flate writer to the pool on Close.
type pooledWriter struct {
	*flate.Writer

	pool *deflatePool
}

func (w pooledWriter) Close() error {
	return w.pool.put(w.Writer)
}

// deflatePool reuses flate writers between zip entries.
type deflatePool struct {
	pool  sync.Pool
	level int
}

func newDeflatePool(level int) *deflatePool {
	return &deflatePool{level: level}
}

// compressor implements zip.Compressor.
func (p *deflatePool) compressor(dst io.Writer) (io.WriteCloser, error) {
	if w, ok := p.pool.Get().(*flate.Writer); ok {
		w.Reset(dst)

		return pooledWriter{Writer: w, pool: p}, nil
	}

	w, err := flate.NewWriter(dst, p.level)
	if err != nil {
		return nil, err
	}

	return pooledWriter{Writer: w, pool: p}, nil
}

func (p *deflatePool) put(w *flate.Writer) error {
	err := w.Close()
	p.pool.Put(w)

	return err
}
