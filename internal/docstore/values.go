package docstore

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Backends return the same logical value in different Go types: Postgres JSONB
// yields float64 and RFC3339 strings, Mongo yields int32/int64 and
// primitive.DateTime, the memory store keeps whatever was written. The helpers
// below collapse those into one shape.

// AsString renders scalar values as text. Whole floats print without a
// fractional part so numeric spreadsheet ids compare equal to their text form.
func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(t), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float32:
		return formatFloat(float64(t)), true
	case float64:
		return formatFloat(t), true
	case json.Number:
		return t.String(), true
	case time.Time:
		return t.UTC().Format(time.RFC3339), true
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339), true
	case primitive.ObjectID:
		return t.Hex(), true
	default:
		return "", false
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// AsInt accepts integers, whole floats and numeric strings
func AsInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// AsBool accepts booleans and the usual yes/no spellings
func AsBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0", "":
			return false, true
		}
	default:
		if i, ok := AsInt(v); ok {
			return i != 0, true
		}
	}
	return false, false
}

// AsTime accepts native times, Mongo datetimes and RFC3339 strings
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0), true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// ValuesEqual compares two scalars by their canonical text, so 2024,
// 2024.0 and "2024" are all equal.
func ValuesEqual(a, b any) bool {
	as, aok := AsString(a)
	bs, bok := AsString(b)
	return aok && bok && as == bs
}
