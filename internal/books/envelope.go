package books

import (
	"encoding/json"
	"fmt"
)

// Pagination describes the slice of a listing the backend returned.
// Zero values mean the source carried no paging information.
type Pagination struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// DecodeEnvelope extracts the raw book objects from any of the
// response envelopes the backends use: a bare array, a {code,result}
// wrapper, a {data} wrapper, an Open Library search ({docs,numFound})
// or subject ({works,work_count}) response, a Spring page
// ({content,totalElements,...}), or a single object.
func DecodeEnvelope(data []byte) ([]map[string]any, Pagination, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to decode payload: %w", err)
	}
	return unwrap(decoded)
}

func unwrap(decoded any) ([]map[string]any, Pagination, error) {
	switch v := decoded.(type) {
	case []any:
		return collectObjects(v), Pagination{}, nil
	case map[string]any:
		// Wrappers recurse so nested envelopes unwrap too.
		if _, ok := v["code"]; ok {
			if result, present := v["result"]; present {
				return unwrap(result)
			}
		}
		if data, ok := v["data"]; ok {
			return unwrap(data)
		}

		if docs, ok := v["docs"].([]any); ok {
			page := Pagination{TotalItems: int64Field(v, "numFound")}
			return collectObjects(docs), page, nil
		}
		if works, ok := v["works"].([]any); ok {
			page := Pagination{TotalItems: int64Field(v, "work_count")}
			return collectObjects(works), page, nil
		}
		if content, ok := v["content"].([]any); ok {
			page := Pagination{
				Page:       int(int64Field(v, "number")),
				Size:       int(int64Field(v, "size")),
				TotalItems: int64Field(v, "totalElements"),
				TotalPages: int(int64Field(v, "totalPages")),
			}
			return collectObjects(content), page, nil
		}

		return []map[string]any{v}, Pagination{}, nil
	case nil:
		return nil, Pagination{}, nil
	default:
		return nil, Pagination{}, fmt.Errorf("unexpected payload type %T", decoded)
	}
}

func collectObjects(items []any) []map[string]any {
	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

func int64Field(raw map[string]any, key string) int64 {
	if f, ok := raw[key].(float64); ok {
		return int64(f)
	}
	return 0
}
