package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

type Jar struct {
	*cookiejar.Jar

	sync.Mutex
	Kookies []*http.Cookie `json:"cookies"`
}

func NewJar() (*Jar, error) {
	cookieJar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Jar{Jar: cookieJar}, nil
}

func (j *Jar) AddCookies(cs []*http.Cookie) {
	j.Lock()
	if j.Kookies == nil {
		j.Kookies = make([]*http.Cookie, 0, 2*len(cs))
	}
	j.Kookies = append(j.Kookies, cs...)
	j.Unlock()
}

// HTTPRequest is a request that can carry its own cookie jar.
type HTTPRequest struct {
	Method    string      `json:"method,omitempty"`
	URL       string      `json:"url"`
	Body      string      `json:"body,omitempty"`
	Headers   http.Header `json:"headers,omitempty"`
	CookieJar *Jar        `json:"jar,omitempty"`

	Debug bool `json:"debug,omitempty"`
}

type HTTPResponse struct {
	StatusCode int          `json:"statusCode"`
	Status     string       `json:"status"`
	Error      error        `json:"error,omitempty"`
	Headers    http.Header  `json:"headers,omitempty"`
	Body       string       `json:"body,omitempty"`
	Request    *HTTPRequest `json:"request,omitempty"`
}

func (r *HTTPRequest) logf(format string, args ...interface{}) {
	if r.Debug {
		log.Printf(format, args...)
	}
}

// Do is the low-level, synchronous method to make the request and
// call the handler with the result.
//
// Transport errors are reported to the handler in the response's
// Error.
func (r *HTTPRequest) Do(ctx context.Context, handler func(context.Context, *HTTPResponse) error) error {
	u, err := url.Parse(r.URL)
	if err != nil {
		return err
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader([]byte(r.Body)))
	if err != nil {
		return err
	}
	for k, vs := range r.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	// http.Request doesn't itself support CookieJars; http.Client
	// does.  We don't want a Client per request, so we use the jar
	// manually.
	if r.CookieJar != nil {
		for i, cookie := range r.CookieJar.Cookies(u) {
			r.logf("adding cookie %d: %#v", i, cookie)
			req.AddCookie(cookie)
		}
	}

	result := &HTTPResponse{
		Request: r,
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		r.logf("HTTPRequest.Do Do error %v", err)
		result.Error = err
		return handler(ctx, result)
	}
	defer resp.Body.Close()

	result.Headers = resp.Header
	result.Status = resp.Status
	result.StatusCode = resp.StatusCode

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		r.logf("HTTPRequest.Do ReadAll error %v", err)
		result.Error = err
		return handler(ctx, result)
	}
	result.Body = string(body)

	if r.CookieJar != nil {
		r.logf("HTTPRequest.Do updating cookies")
		r.CookieJar.SetCookies(u, resp.Cookies())
		r.CookieJar.AddCookies(resp.Cookies())
	}

	return handler(ctx, result)
}

// Webhook POSTs every Verdict (as JSON) to a URL.
//
// Cookies set by the receiver are sent back with later verdicts.
type Webhook struct {
	URL     string
	Timeout time.Duration
	Debug   bool

	jar *Jar
}

func NewWebhook(u string, timeout time.Duration) (*Webhook, error) {
	if _, err := url.Parse(u); err != nil {
		return nil, err
	}
	jar, err := NewJar()
	if err != nil {
		return nil, err
	}
	return &Webhook{
		URL:     u,
		Timeout: timeout,
		jar:     jar,
	}, nil
}

// Post sends the Verdict.  Returns the receiver's status code.
func (h *Webhook) Post(ctx context.Context, v *Verdict) (int, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}

	if 0 < h.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	req := &HTTPRequest{
		Method: http.MethodPost,
		URL:    h.URL,
		Body:   string(js),
		Headers: http.Header{
			"Content-Type": []string{"application/json"},
		},
		CookieJar: h.jar,
		Debug:     h.Debug,
	}

	code := 0
	err = req.Do(ctx, func(ctx context.Context, resp *HTTPResponse) error {
		code = resp.StatusCode
		return resp.Error
	})
	return code, err
}

// Hook is a Service hook.
func (h *Webhook) Hook(ctx context.Context, v *Verdict) {
	code, err := h.Post(ctx, v)
	if err != nil {
		log.Printf("Webhook %s error %v", h.URL, err)
		return
	}
	if code < 200 || 300 <= code {
		log.Printf("Webhook %s status %d", h.URL, code)
	}
}
