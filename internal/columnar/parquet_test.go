package columnar

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/KaramelBytes/driftdash/internal/dataset"
)

func mixedTable(t *testing.T) *dataset.Table {
	t.Helper()
	at := time.Date(2024, 2, 29, 13, 14, 15, 123000000, time.UTC)
	tbl, err := dataset.New(
		&dataset.Column{Name: "id", Type: dataset.TypeInteger, Values: []any{int64(1), int64(2), int64(3)}},
		&dataset.Column{Name: "amount", Type: dataset.TypeFloat, Values: []any{1.25, nil, -9999.01}},
		&dataset.Column{Name: "city", Type: dataset.TypeText, Values: []any{"Lyon", "missing", nil}},
		&dataset.Column{Name: "at", Type: dataset.TypeTimestamp, Values: []any{at, nil, dataset.MissingTimestamp}},
		&dataset.Column{Name: "ok", Type: dataset.TypeBoolean, Values: []any{true, false, nil}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func TestToArrowKeepsNulls(t *testing.T) {
	tbl, err := ToArrow(mixedTable(t), memory.NewGoAllocator())
	if err != nil {
		t.Fatalf("ToArrow: %v", err)
	}
	defer tbl.Release()
	if tbl.NumRows() != 3 || tbl.NumCols() != 5 {
		t.Fatalf("shape = %dx%d", tbl.NumRows(), tbl.NumCols())
	}
	if n := tbl.Column(1).Data().NullN(); n != 1 {
		t.Fatalf("amount nulls = %d, want 1", n)
	}
	back, err := FromArrow(tbl)
	if err != nil {
		t.Fatalf("FromArrow: %v", err)
	}
	if !dataset.Equal(back, mixedTable(t)) {
		t.Fatal("arrow conversion changed the table")
	}
}

func TestToArrowRejectsMistypedCell(t *testing.T) {
	bad, err := dataset.New(&dataset.Column{Name: "n", Type: dataset.TypeInteger, Values: []any{"one"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ToArrow(bad, memory.NewGoAllocator()); err == nil {
		t.Fatal("expected error for a string in an integer column")
	}
}

func TestParquetFileLoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.parquet")
	if err := WriteParquetFile(path, mixedTable(t)); err != nil {
		t.Fatalf("WriteParquetFile: %v", err)
	}
	loaders := append(dataset.DefaultLoaders(dataset.DefaultOptions()), ParquetLoader{})
	got, err := loaders.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !dataset.Equal(got, mixedTable(t)) {
		t.Fatalf("parquet file differs: columns %v rows %d", got.ColumnNames(), got.NumRows())
	}
}

func uint64Table(t *testing.T, vals ...uint64) arrow.Table {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Uint64, Nullable: true}}, nil)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	b.Field(0).(*array.Uint64Builder).AppendValues(vals, nil)
	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

func TestFromArrowUint64(t *testing.T) {
	small := uint64Table(t, 1, 2)
	defer small.Release()
	tbl, err := FromArrow(small)
	if err != nil {
		t.Fatalf("FromArrow: %v", err)
	}
	c, _ := tbl.Column("n")
	if c.Type != dataset.TypeInteger || c.Values[1] != int64(2) {
		t.Fatalf("n = %s %v", c.Type, c.Values)
	}

	big := uint64Table(t, 7, math.MaxUint64)
	defer big.Release()
	tbl, err = FromArrow(big)
	if err != nil {
		t.Fatalf("FromArrow: %v", err)
	}
	c, _ = tbl.Column("n")
	if c.Type != dataset.TypeFloat || c.Values[0] != 7.0 || c.Values[1] != float64(uint64(math.MaxUint64)) {
		t.Fatalf("n = %s %v", c.Type, c.Values)
	}
	if v := c.Values[1].(float64); v < 0 {
		t.Fatalf("overflowing value wrapped to %v", v)
	}
}
