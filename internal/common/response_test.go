package common_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-quotes/internal/common"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	common.JSON(rec, http.StatusCreated, map[string]string{"hello": "world"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	common.JSONError(rec, http.StatusBadRequest, "BAD_REQUEST", "nope", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]common.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "BAD_REQUEST", body["error"].Code)
	require.Equal(t, "nope", body["error"].Message)
}

func TestWriteErrorAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	common.WriteError(rec, common.NotFound("quote not found"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")

	rec = httptest.NewRecorder()
	common.WriteError(rec, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "INTERNAL")
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("row conflict")
	err := common.Conflict("duplicate row", cause)
	require.ErrorIs(t, err, cause)
	require.True(t, common.IsAppError(err))
	require.False(t, common.IsAppError(errors.New("plain")))
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=25", nil)
	page, perPage := common.ParsePagination(req, 50, 200)
	require.Equal(t, 2, page)
	require.Equal(t, 25, perPage)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	page, perPage = common.ParsePagination(req, 50, 200)
	require.Equal(t, 1, page)
	require.Equal(t, 50, perPage)

	req = httptest.NewRequest(http.MethodGet, "/?page=-1&limit=9999", nil)
	page, perPage = common.ParsePagination(req, 50, 200)
	require.Equal(t, 1, page)
	require.Equal(t, 200, perPage)
}

func TestInMemoryEmail(t *testing.T) {
	mail := &common.InMemoryEmail{}
	require.NoError(t, mail.Send("a@b.test", "hi", "<p>hi</p>"))
	require.Len(t, mail.Outbox, 1)
	require.Equal(t, "<p>hi</p>", mail.Outbox[0].Body)
}
