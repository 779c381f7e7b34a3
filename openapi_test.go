package ocragent

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestLoadOpenAPIDoc(t *testing.T) {

	doc, err := LoadOpenAPIDoc()
	assert.True(t, err == nil)

	// every served route is documented
	for _, path := range []string{"/health", "/api/v1/tasks", "/api/v1/resolutions", "/api/v1/ocr", "/api/v1/ocr/base64"} {
		assert.True(t, doc.Paths.Find(path) != nil)
	}
}

func TestOpenAPIHandler(t *testing.T) {

	recorder := httptest.NewRecorder()
	NewOpenAPIHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Equals(t, recorder.Code, http.StatusOK)
	assert.Equals(t, recorder.Header().Get("Content-Type"), "application/json")
	assert.StringContains(t, recorder.Body.String(), "openapi")
}

func TestDocsHandler(t *testing.T) {

	recorder := httptest.NewRecorder()
	NewDocsHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equals(t, recorder.Code, http.StatusOK)
	assert.StringContains(t, recorder.Body.String(), "swagger-ui")
}
