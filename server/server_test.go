package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poolq/pool-server/api"
	"github.com/poolq/pool-server/config"
	"github.com/poolq/pool-server/pool"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		HTTPServer: &config.HTTPServer{Address: ":0"},
		Defaults:   &config.Defaults{Workers: 2},
	}
	if err := cfg.ValidateSetDefaults(); err != nil {
		t.Fatalf("config: %v", err)
	}
	s, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(s.router)
	t.Cleanup(func() {
		ts.Close()
		s.Stop()
	})
	return s, ts
}

func do(t *testing.T, method, url string, in, out interface{}) int {
	t.Helper()
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	rsp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer rsp.Body.Close()
	if out != nil && rsp.StatusCode < 300 {
		if err := json.NewDecoder(rsp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rsp.StatusCode
}

func TestCreateSubmitShutdown(t *testing.T) {
	_, ts := newTestServer(t)

	st := new(api.PoolStatus)
	code := do(t, http.MethodPost, ts.URL+"/pools", &api.CreatePoolRequest{Name: "p", Workers: 2}, st)
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", code)
	}
	if st.Name != "p" || st.Workers != 2 {
		t.Fatalf("create: unexpected status %+v", st)
	}

	for _, args := range [][]string{{"echo", "A"}, {"echo", "B"}, {"false"}} {
		jr := new(api.SubmitJobResponse)
		code = do(t, http.MethodPost, ts.URL+"/pools/p/jobs", &api.SubmitJobRequest{Command: args}, jr)
		if code != http.StatusAccepted {
			t.Fatalf("submit %v: expected 202, got %d", args, code)
		}
		if jr.ID == "" {
			t.Fatalf("submit %v: missing job id", args)
		}
	}

	code = do(t, http.MethodPost, ts.URL+"/pools/p/wait", nil, nil)
	if code != http.StatusOK {
		t.Fatalf("wait: expected 200, got %d", code)
	}

	sum := new(pool.Summary)
	code = do(t, http.MethodDelete, ts.URL+"/pools/p", nil, sum)
	if code != http.StatusOK {
		t.Fatalf("shutdown: expected 200, got %d", code)
	}
	if len(sum.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(sum.Records))
	}
	if sum.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", sum.Errors)
	}

	// the name is gone after shutdown
	code = do(t, http.MethodDelete, ts.URL+"/pools/p", nil, nil)
	if code != http.StatusNotFound {
		t.Fatalf("second shutdown: expected 404, got %d", code)
	}
}

func TestSubmitAutoCreatesPool(t *testing.T) {
	_, ts := newTestServer(t)

	code := do(t, http.MethodGet, ts.URL+"/pools/auto", nil, nil)
	if code != http.StatusNotFound {
		t.Fatalf("get before submit: expected 404, got %d", code)
	}
	code = do(t, http.MethodPost, ts.URL+"/pools/auto/jobs", &api.SubmitJobRequest{Command: []string{"true"}}, nil)
	if code != http.StatusAccepted {
		t.Fatalf("submit: expected 202, got %d", code)
	}
	st := new(api.PoolStatus)
	code = do(t, http.MethodGet, ts.URL+"/pools/auto", nil, st)
	if code != http.StatusOK {
		t.Fatalf("get after submit: expected 200, got %d", code)
	}
	if st.Workers != 2 {
		t.Fatalf("expected the default worker count 2, got %d", st.Workers)
	}
}

func TestCreateReplacesExisting(t *testing.T) {
	s, ts := newTestServer(t)

	do(t, http.MethodPost, ts.URL+"/pools", &api.CreatePoolRequest{Name: "p", Workers: 1}, nil)
	s.mp.RLock()
	first := s.pools["p"]
	s.mp.RUnlock()

	code := do(t, http.MethodPost, ts.URL+"/pools", &api.CreatePoolRequest{Name: "p", Workers: 3}, nil)
	if code != http.StatusCreated {
		t.Fatalf("re-create: expected 201, got %d", code)
	}
	if !first.Stopped() {
		t.Fatal("prior pool was not torn down on re-create")
	}
	st := new(api.PoolStatus)
	do(t, http.MethodGet, ts.URL+"/pools/p", nil, st)
	if st.Workers != 3 {
		t.Fatalf("expected the replacement pool with 3 workers, got %d", st.Workers)
	}
}

func TestRequestValidation(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{
			name:   "create without name",
			method: http.MethodPost,
			path:   "/pools",
			body:   &api.CreatePoolRequest{Workers: 2},
			want:   http.StatusBadRequest,
		},
		{
			name:   "submit without command",
			method: http.MethodPost,
			path:   "/pools/p/jobs",
			body:   &api.SubmitJobRequest{},
			want:   http.StatusBadRequest,
		},
		{
			name:   "wait on unknown pool",
			method: http.MethodPost,
			path:   "/pools/nope/wait",
			want:   http.StatusNotFound,
		},
		{
			name:   "get unknown pool",
			method: http.MethodGet,
			path:   "/pools/nope",
			want:   http.StatusNotFound,
		},
		{
			name:   "shutdown unknown pool",
			method: http.MethodDelete,
			path:   "/pools/nope",
			want:   http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := do(t, tt.method, ts.URL+tt.path, tt.body, nil)
			if code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestStopCancelsServerContext(t *testing.T) {
	cfg := &config.Config{
		HTTPServer: &config.HTTPServer{Address: ":0"},
	}
	if err := cfg.ValidateSetDefaults(); err != nil {
		t.Fatalf("config: %v", err)
	}
	s, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	s.Stop()
	select {
	case <-s.ctx.Done():
	default:
		t.Fatal("server context not cancelled by Stop")
	}
}

func TestListPools(t *testing.T) {
	_, ts := newTestServer(t)
	for i := 0; i < 3; i++ {
		do(t, http.MethodPost, ts.URL+"/pools", &api.CreatePoolRequest{Name: fmt.Sprintf("p%d", i)}, nil)
	}
	rsp := new(api.ListPoolsResponse)
	code := do(t, http.MethodGet, ts.URL+"/pools", nil, rsp)
	if code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", code)
	}
	if len(rsp.Pools) != 3 {
		t.Fatalf("expected 3 pools, got %d", len(rsp.Pools))
	}
	for i, p := range rsp.Pools {
		if want := fmt.Sprintf("p%d", i); p.Name != want {
			t.Fatalf("pool %d: expected %s, got %s", i, want, p.Name)
		}
	}
}
