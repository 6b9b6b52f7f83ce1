package columnar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/driftdash/internal/dataset"
)

// ParquetLoader reads .parquet files as dataset tables.
type ParquetLoader struct{}

// CanLoad accepts .parquet files.
func (ParquetLoader) CanLoad(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".parquet")
}

// Load reads the whole file into memory.
func (ParquetLoader) Load(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &dataset.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, &dataset.LoadError{Path: path, Err: fmt.Errorf("read parquet: %w", err)}
	}
	defer tbl.Release()

	t, err := FromArrow(tbl)
	if err != nil {
		return nil, &dataset.LoadError{Path: path, Err: err}
	}
	return t, nil
}

// WriteParquet writes t to w as a snappy-compressed Parquet file with the
// Arrow schema stored in the metadata.
func WriteParquet(w io.Writer, t *dataset.Table) error {
	mem := memory.NewGoAllocator()
	tbl, err := ToArrow(t, mem)
	if err != nil {
		return fmt.Errorf("convert to arrow: %w", err)
	}
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	fw, err := pqarrow.NewFileWriter(tbl.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := fw.WriteTable(tbl, max(tbl.NumRows(), 1)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// WriteParquetFile creates or truncates path and writes t to it.
func WriteParquetFile(path string, t *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	if err := WriteParquet(f, t); err != nil {
		_ = f.Close()
		return err
	}
	// The parquet writer may already have closed the file.
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close parquet file: %w", err)
	}
	return nil
}
