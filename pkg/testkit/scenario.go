// Package testkit drives HTTP handlers from table scenarios and hands out
// throwaway databases for tests.
//
//	testkit.Run(t, handler, []testkit.Scenario{
//	    {Name: "size", Method: "GET", URL: "/catalog/size", ExpectedCode: 200,
//	        ExpectedBody: `{"success":true,"count":2}`},
//	})
package testkit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Scenario is one request and the response it must produce.
type Scenario struct {
	Name    string
	Method  string
	URL     string
	Body    string
	Headers map[string]string

	ExpectedCode int
	// ExpectedBody is compared as JSON, so key order and spacing do not
	// matter. Empty skips the body check.
	ExpectedBody string
}

// Run fires each scenario against handler in order, as subtests. Scenarios
// share handler state, so later ones see the effects of earlier ones.
func Run(t *testing.T, handler http.Handler, scenarios []Scenario) {
	t.Helper()

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			rec := Do(handler, s.Method, s.URL, s.Body, s.Headers)
			AssertStatusCode(t, s, rec.Code)
			AssertJSONBody(t, s, []byte(s.ExpectedBody), rec.Body.Bytes())
		})
	}
}

// Do performs a single request through handler.
func Do(handler http.Handler, method, url, body string, headers map[string]string) *httptest.ResponseRecorder {
	if method == "" {
		method = http.MethodGet
	}
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, url, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
