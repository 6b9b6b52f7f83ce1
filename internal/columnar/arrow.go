// Package columnar converts dataset tables to and from Apache Arrow and reads
// and writes them as Parquet.
package columnar

import (
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/KaramelBytes/driftdash/internal/dataset"
)

func arrowType(t dataset.ColumnType) arrow.DataType {
	switch t {
	case dataset.TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case dataset.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case dataset.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case dataset.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func columnType(dt arrow.DataType) dataset.ColumnType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return dataset.TypeInteger
	case arrow.FLOAT32, arrow.FLOAT64:
		return dataset.TypeFloat
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return dataset.TypeTimestamp
	case arrow.BOOL:
		return dataset.TypeBoolean
	default:
		return dataset.TypeText
	}
}

// ToArrow converts t into a single-chunk Arrow table with nullable columns.
// The caller must Release the result.
func ToArrow(t *dataset.Table, mem memory.Allocator) (arrow.Table, error) {
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i, c := range cols {
		if err := appendColumn(b.Field(i), c); err != nil {
			return nil, err
		}
	}
	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func appendColumn(b array.Builder, c *dataset.Column) error {
	b.Reserve(len(c.Values))
	for i, v := range c.Values {
		if v == nil {
			b.AppendNull()
			continue
		}
		ok := false
		switch fb := b.(type) {
		case *array.Int64Builder:
			var n int64
			if n, ok = v.(int64); ok {
				fb.Append(n)
			}
		case *array.Float64Builder:
			var f float64
			if f, ok = v.(float64); ok {
				fb.Append(f)
			}
		case *array.BooleanBuilder:
			var x bool
			if x, ok = v.(bool); ok {
				fb.Append(x)
			}
		case *array.TimestampBuilder:
			var ts time.Time
			if ts, ok = v.(time.Time); ok {
				fb.Append(arrow.Timestamp(ts.UnixMicro()))
			}
		case *array.StringBuilder:
			var s string
			if s, ok = v.(string); ok {
				fb.Append(s)
			}
		}
		if !ok {
			return fmt.Errorf("column %q row %d: %T does not fit %s", c.Name, i, v, c.Type)
		}
	}
	return nil
}

// FromArrow copies an Arrow table into a dataset table. Integer and float
// widths are widened to int64 and float64; dates become timestamps; any other
// type is rendered as text. A uint64 column holding values above MaxInt64
// becomes a float column.
func FromArrow(tbl arrow.Table) (*dataset.Table, error) {
	schema := tbl.Schema()
	cols := make([]*dataset.Column, tbl.NumCols())
	for i := range cols {
		field := schema.Field(i)
		col := &dataset.Column{
			Name:   field.Name,
			Type:   columnType(field.Type),
			Values: make([]any, 0, tbl.NumRows()),
		}
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				col.Values = append(col.Values, cellAt(chunk, j))
			}
		}
		if col.Type == dataset.TypeInteger {
			widenOverflow(col)
		}
		cols[i] = col
	}
	return dataset.New(cols...)
}

// widenOverflow turns an integer column into a float column when some of its
// unsigned values did not fit in int64.
func widenOverflow(col *dataset.Column) {
	wide := false
	for _, v := range col.Values {
		if _, ok := v.(float64); ok {
			wide = true
			break
		}
	}
	if !wide {
		return
	}
	col.Type = dataset.TypeFloat
	for k, v := range col.Values {
		if n, ok := v.(int64); ok {
			col.Values[k] = float64(n)
		}
	}
}

func cellAt(arr arrow.Array, j int) any {
	if arr.IsNull(j) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(j))
	case *array.Int16:
		return int64(a.Value(j))
	case *array.Int32:
		return int64(a.Value(j))
	case *array.Int64:
		return a.Value(j)
	case *array.Uint8:
		return int64(a.Value(j))
	case *array.Uint16:
		return int64(a.Value(j))
	case *array.Uint32:
		return int64(a.Value(j))
	case *array.Uint64:
		if v := a.Value(j); v > math.MaxInt64 {
			return float64(v)
		}
		return int64(a.Value(j))
	case *array.Float32:
		return float64(a.Value(j))
	case *array.Float64:
		return a.Value(j)
	case *array.Boolean:
		return a.Value(j)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(j).ToTime(unit).UTC()
	case *array.Date32:
		return a.Value(j).ToTime().UTC()
	case *array.Date64:
		return a.Value(j).ToTime().UTC()
	case *array.String:
		return a.Value(j)
	case *array.LargeString:
		return a.Value(j)
	default:
		return arr.ValueStr(j)
	}
}
