package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeShape(t *testing.T) {
	b, err := json.Marshal(Page("", []int{1}, map[string]int{"total": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"OK","data":[1],"meta":{"total":1}}`, string(b))

	b, err = json.Marshal(Error(http.StatusConflict, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Conflict"}`, string(b))

	assert.Equal(t, "I'm a teapot", Error(http.StatusTeapot, "").Message)
}

func TestAbortUsesStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, http.StatusForbidden, "nope")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
	assert.JSONEq(t, `{"success":false,"message":"nope"}`, w.Body.String())
}
