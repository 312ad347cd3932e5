package router

import (
	"testing"

	"github.com/Txuritan/enrgy/core/http"
)

func noopService() http.Service {
	return http.ServiceFunc(func(r *http.Request) (*http.Response, error) {
		return http.NewResponse(http.StatusOK), nil
	})
}

// TestRouterBasic tests basic static routing
func TestRouterBasic(t *testing.T) {
	r := New()

	r.Add("GET", "/", noopService())
	r.Add("GET", "/hello", noopService())
	r.Add("GET", "/hello/world", noopService())

	tests := []struct {
		path        string
		shouldMatch bool
	}{
		{"/", true},
		{"/hello", true},
		{"/hello/world", true},
		{"/notfound", false},
		{"/hello/wor", false},
	}

	tree := r.Lookup("GET")
	if tree == nil {
		t.Fatal("expected a GET tree")
	}

	for _, tt := range tests {
		_, _, matched := tree.Find(tt.path)
		if matched != tt.shouldMatch {
			t.Errorf("Path %s: expected match=%v, got match=%v", tt.path, tt.shouldMatch, matched)
		}
	}
}

// TestRouterMethodIsolation tests that methods do not share routes
func TestRouterMethodIsolation(t *testing.T) {
	r := New()
	r.Add("POST", "/submit", noopService())

	if r.Lookup("GET") != nil {
		t.Error("expected no GET tree")
	}

	if _, _, ok := r.Lookup("POST").Find("/submit"); !ok {
		t.Error("expected POST /submit to match")
	}
}

// TestRouterParams tests parameter capture
func TestRouterParams(t *testing.T) {
	r := New()
	r.Add("GET", "/users/:id", noopService())
	r.Add("GET", "/users/:id/posts/:post", noopService())

	tests := []struct {
		path       string
		wantParams []Param
	}{
		{"/users/42", []Param{{"id", "42"}}},
		{"/users/42/posts/7", []Param{{"id", "42"}, {"post", "7"}}},
	}

	tree := r.Lookup("GET")
	for _, tt := range tests {
		_, params, ok := tree.Find(tt.path)
		if !ok {
			t.Errorf("Path %s: expected a match", tt.path)
			continue
		}
		if len(params) != len(tt.wantParams) {
			t.Errorf("Path %s: expected %d params, got %d", tt.path, len(tt.wantParams), len(params))
			continue
		}
		for i, want := range tt.wantParams {
			if params[i] != want {
				t.Errorf("Path %s: param %d: expected %+v, got %+v", tt.path, i, want, params[i])
			}
		}
	}
}

// TestRouterPriority tests exact matches win over parameters
func TestRouterPriority(t *testing.T) {
	r := New()

	exact := http.ServiceFunc(func(*http.Request) (*http.Response, error) {
		return http.Text(http.StatusOK, "exact"), nil
	})
	wild := http.ServiceFunc(func(*http.Request) (*http.Response, error) {
		return http.Text(http.StatusOK, "param"), nil
	})

	r.Add("GET", "/user/admin", exact)
	r.Add("GET", "/user/:id", wild)

	tree := r.Lookup("GET")

	svc, params, ok := tree.Find("/user/admin")
	if !ok {
		t.Fatal("expected /user/admin to match")
	}
	if len(params) != 0 {
		t.Errorf("exact match should capture no params, got %v", params)
	}
	if res, _ := svc.Call(&http.Request{}); string(res.Body) != "exact" {
		t.Errorf("expected exact service, got %q", res.Body)
	}

	svc, params, ok = tree.Find("/user/123")
	if !ok {
		t.Fatal("expected /user/123 to match")
	}
	if len(params) != 1 || params[0] != (Param{"id", "123"}) {
		t.Errorf("expected id=123, got %v", params)
	}
	if res, _ := svc.Call(&http.Request{}); string(res.Body) != "param" {
		t.Errorf("expected param service, got %q", res.Body)
	}
}

// TestRouterCatchAll tests *name capture
func TestRouterCatchAll(t *testing.T) {
	r := New()
	r.Add("GET", "/static/*filepath", noopService())

	tree := r.Lookup("GET")

	_, params, ok := tree.Find("/static/css/site.css")
	if !ok {
		t.Fatal("expected catch-all to match")
	}
	if len(params) != 1 || params[0] != (Param{"filepath", "css/site.css"}) {
		t.Errorf("expected filepath=css/site.css, got %v", params)
	}
}

// TestRouterParamWithSuffix tests a parameter followed by a static segment
func TestRouterParamWithSuffix(t *testing.T) {
	r := New()
	r.Add("GET", "/users/:id/posts", noopService())

	tree := r.Lookup("GET")

	if _, params, ok := tree.Find("/users/42/posts"); !ok {
		t.Fatal("expected /users/42/posts to match")
	} else if len(params) != 1 || params[0] != (Param{"id", "42"}) {
		t.Errorf("expected id=42, got %v", params)
	}

	// Ends at the parameter: no service registered there
	if _, _, ok := tree.Find("/users/42"); ok {
		t.Error("expected /users/42 not to match")
	}
}

// TestRouterPanics tests registration-time pattern validation
func TestRouterPanics(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"no leading slash", "nope"},
		{"unnamed wildcard", "/users/:"},
		{"two wildcards in segment", "/users/:id:other"},
		{"catch-all not at end", "/static/*files/extra"},
	}

	for _, tt := range tests {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected panic for %q", tt.name, tt.path)
				}
			}()
			r := New()
			r.Add("GET", tt.path, noopService())
		}()
	}
}
