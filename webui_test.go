package ocragent

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchbaselabs/go.assert"
)

func TestWebUIForm(t *testing.T) {

	appConfig := newTestAppConfig(t)
	webUI, err := NewWebUIHandler(NewModelClient(&appConfig), &appConfig)
	assert.True(t, err == nil)

	recorder := httptest.NewRecorder()
	webUI.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equals(t, recorder.Code, http.StatusOK)
	page := recorder.Body.String()
	assert.StringContains(t, page, "<form")
	assert.StringContains(t, page, `name="image"`)
	// every task and every resolution preset shows up in the form
	for _, task := range AllTasks() {
		assert.StringContains(t, page, `value="`+task+`"`)
	}
	assert.StringContains(t, page, "Gundam")
}

func TestWebUISubmit(t *testing.T) {

	appConfig := newTestAppConfig(t)
	webUI, err := NewWebUIHandler(NewModelClient(&appConfig), &appConfig)
	assert.True(t, err == nil)

	body, contentType := makeMultipartUpload(t, map[string]string{
		"task":               "ocr",
		"resolution_mode":    "Tiny (512×512) - fast",
		"engine":             "mock",
		"save_visualization": "true",
	}, makeTestPNG(t, 50, 50))

	request := httptest.NewRequest(http.MethodPost, "/", body)
	request.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	webUI.ServeHTTP(recorder, request)

	assert.Equals(t, recorder.Code, http.StatusOK)
	page := recorder.Body.String()
	assert.StringContains(t, page, "Result")
	assert.StringContains(t, page, "mock engine decoder response")
	assert.StringContains(t, page, "data:image/jpeg;base64,")
	assert.StringContains(t, page, "/outputs/")
}

func TestWebUIUnknownPath(t *testing.T) {

	appConfig := newTestAppConfig(t)
	webUI, err := NewWebUIHandler(NewModelClient(&appConfig), &appConfig)
	assert.True(t, err == nil)

	recorder := httptest.NewRecorder()
	webUI.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equals(t, recorder.Code, http.StatusNotFound)
}
