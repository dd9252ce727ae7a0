package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

func decodeRow(t *testing.T, data json.RawMessage) store.Row {
	t.Helper()
	var body RowResponse
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Row
}

func decodeRows(t *testing.T, data json.RawMessage) []store.Row {
	t.Helper()
	var body RowsResponse
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Rows
}

func (ts *testServer) insert(t *testing.T, table string, row map[string]any) store.Row {
	t.Helper()
	resp := ts.api.Post("/api/v1/records/"+table, map[string]any{"row": row})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	env, data := envelope(t, resp)
	require.True(t, env.Success)
	return decodeRow(t, data)
}

func TestInsertRecord(t *testing.T) {
	ts := setupTestServer(t, nil)

	row := ts.insert(t, "items", map[string]any{
		"name":     "Blue Tee",
		"location": "Drawer 1",
		"tags":     []string{"summer"},
	})

	assert.NotEmpty(t, row[store.ColID])
	assert.Equal(t, "Blue Tee", row[store.ColName])
	assert.Equal(t, "Other", row[store.ColType])
	assert.Equal(t, "casual", row[store.ColCategory])
	assert.Equal(t, []any{"summer"}, row[store.ColTags])
	assert.NotEmpty(t, row[store.ColCreatedAt])
}

func TestQueryRecords(t *testing.T) {
	ts := setupTestServer(t, nil)

	ts.insert(t, "items", map[string]any{"name": "Blue Tee", "location": "Drawer 1"})
	ts.insert(t, "items", map[string]any{"name": "Red Dress", "location": "Closet"})
	ts.insert(t, "items", map[string]any{"name": "Grey Socks", "location": "Drawer 1"})

	t.Run("no body selects everything", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/records/items/query")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		_, data := envelope(t, resp)
		assert.Len(t, decodeRows(t, data), 3)
	})

	t.Run("filter", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/records/items/query", map[string]any{
			"filter": map[string]any{"location": "Drawer 1"},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		_, data := envelope(t, resp)

		rows := decodeRows(t, data)
		require.Len(t, rows, 2)
		assert.Equal(t, "Blue Tee", rows[0][store.ColName])
		assert.Equal(t, "Grey Socks", rows[1][store.ColName])
	})

	t.Run("empty result is a list", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/records/sections/query", map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"v":1,"success":true,"data":{"rows":[]}}`, resp.Body.String())
	})
}

func TestUpdateRecord(t *testing.T) {
	ts := setupTestServer(t, nil)
	row := ts.insert(t, "items", map[string]any{"name": "Blue Tee", "location": "Drawer 1"})
	id := row[store.ColID].(string)

	resp := ts.api.Patch("/api/v1/records/items/"+id, map[string]any{
		"patch": map[string]any{"location": "Closet", "tags": []string{"favorite"}},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	_, data := envelope(t, resp)
	updated := decodeRow(t, data)
	assert.Equal(t, "Closet", updated[store.ColLocation])
	assert.Equal(t, []any{"favorite"}, updated[store.ColTags])
	assert.Equal(t, "Blue Tee", updated[store.ColName])
}

func TestDeleteRecord(t *testing.T) {
	ts := setupTestServer(t, nil)
	row := ts.insert(t, "sections", map[string]any{"name": "Closet"})

	resp := ts.api.Delete("/api/v1/records/sections/" + row[store.ColID].(string))
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())

	resp = ts.api.Post("/api/v1/records/sections/query")
	_, data := envelope(t, resp)
	assert.Empty(t, decodeRows(t, data))
}

func TestRecordErrors(t *testing.T) {
	ts := setupTestServer(t, nil)
	ts.insert(t, "sections", map[string]any{"name": "Closet"})

	tests := []struct {
		name   string
		do     func() (int, []byte)
		status int
		code   string
	}{
		{
			name: "unknown table",
			do: func() (int, []byte) {
				resp := ts.api.Post("/api/v1/records/shoes/query")
				return resp.Code, resp.Body.Bytes()
			},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name: "unknown filter column",
			do: func() (int, []byte) {
				resp := ts.api.Post("/api/v1/records/items/query", map[string]any{
					"filter": map[string]any{"colour": "blue"},
				})
				return resp.Code, resp.Body.Bytes()
			},
			status: http.StatusBadRequest,
			code:   "VALIDATION",
		},
		{
			name: "unknown insert column",
			do: func() (int, []byte) {
				resp := ts.api.Post("/api/v1/records/sections", map[string]any{
					"row": map[string]any{"name": "Shelf", "colour": "blue"},
				})
				return resp.Code, resp.Body.Bytes()
			},
			status: http.StatusBadRequest,
			code:   "VALIDATION",
		},
		{
			name: "duplicate folded name",
			do: func() (int, []byte) {
				resp := ts.api.Post("/api/v1/records/sections", map[string]any{
					"row": map[string]any{"name": "CLOSET"},
				})
				return resp.Code, resp.Body.Bytes()
			},
			status: http.StatusConflict,
			code:   "DUPLICATE",
		},
		{
			name: "update missing row",
			do: func() (int, []byte) {
				resp := ts.api.Patch("/api/v1/records/sections/nope", map[string]any{
					"patch": map[string]any{"name": "Shelf"},
				})
				return resp.Code, resp.Body.Bytes()
			},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name: "delete missing row",
			do: func() (int, []byte) {
				resp := ts.api.Delete("/api/v1/records/items/nope")
				return resp.Code, resp.Body.Bytes()
			},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name: "malformed body",
			do: func() (int, []byte) {
				resp := ts.api.Post("/api/v1/records/sections", map[string]any{"row": "Closet"})
				return resp.Code, resp.Body.Bytes()
			},
			status: http.StatusUnprocessableEntity,
			code:   "VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := tt.do()
			require.Equal(t, tt.status, status, string(body))

			var env map[string]any
			require.NoError(t, json.Unmarshal(body, &env))
			assert.Equal(t, float64(1), env["v"])
			assert.Equal(t, false, env["success"])
			assert.Equal(t, tt.code, env["code"])
			assert.NotEmpty(t, env["message"])
			assert.NotContains(t, env, "data")
		})
	}
}
