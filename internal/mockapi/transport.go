package mockapi

import (
	"net/http"
	"net/http/httptest"
)

// Transport is an http.RoundTripper that serves every request with Handler
// in-process, so the gateway client runs without a network.
type Transport struct {
	Handler http.Handler
}

// RoundTrip closes the request body, including when the request is rejected.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		defer req.Body.Close()
	}
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	rec := httptest.NewRecorder()
	t.Handler.ServeHTTP(rec, req)

	resp := rec.Result()
	resp.Request = req
	return resp, nil
}
