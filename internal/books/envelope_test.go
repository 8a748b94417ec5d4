package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope_BareArray(t *testing.T) {
	items, page, err := DecodeEnvelope([]byte(`[{"title":"A"},{"title":"B"}]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[1]["title"])
	assert.Zero(t, page)
}

func TestDecodeEnvelope_CodeResultWrapper(t *testing.T) {
	items, _, err := DecodeEnvelope([]byte(`{"code":200,"result":[{"title":"A"}]}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0]["title"])
}

func TestDecodeEnvelope_CodeResultSpringPage(t *testing.T) {
	payload := `{"code":200,"result":{"content":[{"title":"A"}],"totalElements":57,"totalPages":3,"number":1,"size":20}}`
	items, page, err := DecodeEnvelope([]byte(payload))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, Pagination{Page: 1, Size: 20, TotalItems: 57, TotalPages: 3}, page)
}

func TestDecodeEnvelope_DataWrapper(t *testing.T) {
	items, _, err := DecodeEnvelope([]byte(`{"data":[{"title":"A"}]}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestDecodeEnvelope_SearchDocs(t *testing.T) {
	items, page, err := DecodeEnvelope([]byte(`{"numFound":812,"docs":[{"title":"A"},{"title":"B"}]}`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(812), page.TotalItems)
}

func TestDecodeEnvelope_SubjectWorks(t *testing.T) {
	items, page, err := DecodeEnvelope([]byte(`{"work_count":44,"works":[{"title":"A"}]}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(44), page.TotalItems)
}

func TestDecodeEnvelope_SingleObject(t *testing.T) {
	items, _, err := DecodeEnvelope([]byte(`{"title":"Solaris"}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Solaris", items[0]["title"])
}

func TestDecodeEnvelope_SkipsNonObjectItems(t *testing.T) {
	items, _, err := DecodeEnvelope([]byte(`[{"title":"A"}, "stray", 42]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestDecodeEnvelope_InvalidJSON(t *testing.T) {
	_, _, err := DecodeEnvelope([]byte(`{not json`))
	assert.Error(t, err)
}

func TestDecodeEnvelope_Null(t *testing.T) {
	items, page, err := DecodeEnvelope([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, page)
}
