package models

import (
	"fmt"
	"time"

	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

// fieldReader pulls typed values out of a raw document and remembers the
// first integrity problem it hits.
type fieldReader struct {
	collection string
	doc        docstore.Document
	err        error
}

func newReader(collection string, doc docstore.Document) *fieldReader {
	return &fieldReader{collection: collection, doc: doc}
}

func (r *fieldReader) fail(key, problem string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s/%s field %q %s", apperrors.ErrDataIntegrity, r.collection, r.doc.ID, key, problem)
	}
}

func (r *fieldReader) requiredString(key string) string {
	s := r.optString(key)
	if s == "" && r.err == nil {
		r.fail(key, "is required")
	}
	return s
}

func (r *fieldReader) optString(key string) string {
	v, ok := r.doc.Data[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := docstore.AsString(v)
	if !ok {
		r.fail(key, fmt.Sprintf("has unusable type %T", v))
	}
	return s
}

// optInt tolerates blanks and free text such as "N/A" as zero; only
// structured values of the wrong kind count as corruption.
func (r *fieldReader) optInt(key string) int {
	v, ok := r.doc.Data[key]
	if !ok || v == nil {
		return 0
	}
	if i, ok := docstore.AsInt(v); ok {
		return i
	}
	if _, isText := v.(string); !isText {
		r.fail(key, fmt.Sprintf("has unusable type %T", v))
	}
	return 0
}

func (r *fieldReader) optBool(key string) bool {
	v, ok := r.doc.Data[key]
	if !ok || v == nil {
		return false
	}
	b, _ := docstore.AsBool(v)
	return b
}

func (r *fieldReader) optTime(key string) *time.Time {
	v, ok := r.doc.Data[key]
	if !ok || v == nil {
		return nil
	}
	t, ok := docstore.AsTime(v)
	if !ok {
		r.fail(key, "is not a timestamp")
		return nil
	}
	return &t
}

// extra returns the fields not in known
func (r *fieldReader) extra(known ...string) map[string]any {
	skip := make(map[string]struct{}, len(known))
	for _, k := range known {
		skip[k] = struct{}{}
	}
	out := make(map[string]any)
	for k, v := range r.doc.Data {
		if _, ok := skip[k]; !ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
