package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidateCache_ForcesReprocessing(t *testing.T) {
	app := setupApp(t, &stubTransformer{})
	body := `{"rawText": "Buy milk"}`

	first := submitNote(t, app, body)

	resp := doRequest(t, app, http.MethodPost, "/api/v1/cache/invalidate", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := parseJSON(t, resp)
	assert.Equal(t, true, result["invalidated"])

	// Same request now yields a fresh revision.
	second := submitNote(t, app, body)
	assert.NotEqual(t, first, second)

	// The old revision is still retrievable by id.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/notes/"+first+"/result", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
