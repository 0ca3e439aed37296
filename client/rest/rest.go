package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"suratgen/infra/tracing"
	"suratgen/session"
)

// Invoker is a thin JSON client over one upstream base URL. Every request is
// traced and carries the session's cookie header.
type Invoker struct {
	BaseURL string
	Client  *http.Client
}

func NewInvoker(baseURL string) *Invoker {
	return &Invoker{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Transport: &tracing.TracingTransport{Transport: http.DefaultTransport}},
	}
}

// DoJSON performs the request and unmarshals a 2xx response body into out
// (when out is non-nil). Non-2xx responses and transport failures are
// returned as *ErrHttpInvoke.
func (i *Invoker) DoJSON(s *session.Session, method, path string, query url.Values, reqBody interface{}, out interface{}) error {
	raw, err := i.DoRaw(s, method, path, query, reqBody)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// DoRaw performs the request and returns the raw 2xx response body.
func (i *Invoker) DoRaw(s *session.Session, method, path string, query url.Values, reqBody interface{}) ([]byte, error) {
	u := i.BaseURL + path
	if len(query) > 0 {
		u = u + "?" + query.Encode()
	}

	var bodyReader *bytes.Reader
	encoded := ""
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, err
		}
		encoded = string(b)
		bodyReader = bytes.NewReader(b)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, u, bodyReader)
	if err != nil {
		return nil, NewErrHttpInvoke(req, encoded, nil, "", err)
	}
	if s != nil && s.Context != nil {
		req = req.WithContext(s.Context)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Accept", "application/json")
	if s != nil && s.Cookies != "" {
		req.Header.Set("Cookie", s.Cookies)
	}

	resp, err := i.Client.Do(req)
	if err != nil {
		return nil, NewErrHttpInvoke(req, encoded, nil, "", err)
	}
	defer resp.Body.Close()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, NewErrHttpInvoke(req, encoded, resp, "", err)
	}
	if !HttpStatusIsSuccess(resp.StatusCode) {
		return nil, NewErrHttpInvoke(req, encoded, resp, string(respBody), nil)
	}
	return respBody, nil
}

func HttpStatusIsSuccess(status int) bool {
	return status >= 200 && status < 300
}

type ErrHttpInvoke struct {
	Method string
	Url    string
	ReqBody string

	StatusCode int
	StatusText string
	RespBody   string

	Cause error
}

func NewErrHttpInvoke(req *http.Request, reqBody string, resp *http.Response, respBody string, cause error) *ErrHttpInvoke {
	err := ErrHttpInvoke{Cause: cause}
	if req != nil {
		err.Method = req.Method
		err.Url = req.URL.String()
		err.ReqBody = reqBody
	}
	if resp != nil {
		err.StatusCode = resp.StatusCode
		err.StatusText = resp.Status
		err.RespBody = respBody
	}
	return &err
}

func (e *ErrHttpInvoke) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("http invoke failed. request %s %s: %v", e.Method, e.Url, e.Cause)
	}
	return fmt.Sprintf("http invoke failed. request %s %s, response %d %s, body: '%s'",
		e.Method, e.Url, e.StatusCode, e.StatusText, e.RespBody)
}
func (e *ErrHttpInvoke) Unwrap() error {
	return e.Cause
}

// UpstreamMessage extracts the human-readable message from an upstream JSON
// error body, falling back to the whole body.
func (e *ErrHttpInvoke) UpstreamMessage() string {
	body := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}{}
	if err := json.Unmarshal([]byte(e.RespBody), &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return e.RespBody
}
