package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/opsdesk/internal/store"
)

func TestFromStore(t *testing.T) {
	assert.NoError(t, FromStore(nil, "x"))

	err := FromStore(fmt.Errorf("%w: clients 1", store.ErrNotFound), "client_not_found")
	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, IsBusiness(err, "client_not_found"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = FromStore(store.ErrConflict, "dup")
	assert.True(t, IsKind(err, KindConflict))

	err = FromStore(errors.New("connection reset"), "list_failed")
	assert.True(t, IsKind(err, KindTransient))

	biz := Forbidden("nope")
	assert.Equal(t, biz, FromStore(biz, "other"))
}

func TestRespondStatusByKind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{ErrBusiness("bad_input"), http.StatusBadRequest},
		{Conflict("taken"), http.StatusConflict},
		{NotFound("missing"), http.StatusNotFound},
		{Transient("store_down", errors.New("x")), http.StatusServiceUnavailable},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{errors.New("raw"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		Respond(c, tc.err)
		assert.Equal(t, tc.status, rec.Code, "%v", tc.err)
	}
}

func TestRespondHidesInternalText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Respond(c, errors.New("pq: password authentication failed"))

	var body HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestWarnPartial(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	assert.True(t, WarnPartial(c, nil))
	assert.Empty(t, rec.Header().Get(HeaderAuditWarning))

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	assert.True(t, WarnPartial(c, Partial("audit_write_failed", errors.New("x"))))
	assert.Equal(t, "audit_write_failed", rec.Header().Get(HeaderAuditWarning))

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	assert.False(t, WarnPartial(c, NotFound("gone")))
	assert.Empty(t, rec.Header().Get(HeaderAuditWarning))
}
