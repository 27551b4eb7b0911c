package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forbearing/flowquery/sqlerr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

func TestFromError_Nil(t *testing.T) {
	r := FromError(nil)
	assert.Equal(t, CodeSuccess, r)
}

func TestFromError_SQLErrMapsToItsCode(t *testing.T) {
	err := sqlerr.Forbidden("no access to scope %q", "sales")
	r := FromError(err)
	assert.Equal(t, http.StatusForbidden, r.Status())
	assert.Equal(t, CodeForbidden.Code(), r.Code())
	assert.Contains(t, r.Msg(), "sales")
}

func TestFromError_PlainErrorBecomesGenericFailure(t *testing.T) {
	r := FromError(errors.New("boom"))
	assert.Equal(t, CodeFailure.Code(), r.Code())
	assert.Equal(t, "boom", r.Msg())
}

func TestCode_WithStatusAndMsgOverride(t *testing.T) {
	ci := CodeInvalidInput.WithStatus(499).WithMsg("custom")
	assert.Equal(t, 499, ci.Status())
	assert.Equal(t, "custom", ci.Msg())
	assert.Equal(t, CodeInvalidInput.Code(), ci.Code())
}

func TestCode_UnknownCodeFallsBackTo500(t *testing.T) {
	var unknown Code = 99999
	assert.Equal(t, http.StatusInternalServerError, unknown.Status())
}

func TestResponseJSON_WritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	ResponseJSON(c, CodeSuccess, gin.H{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"request_id":"req-1"`)
	assert.Contains(t, w.Body.String(), `"hello":"world"`)
}

func TestResponseError_UsesMappedStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ResponseError(c, sqlerr.DatasetResultTooLarge(5000, 1000))

	assert.Equal(t, http.StatusInsufficientStorage, w.Code)
}
