package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cognicore/orderline/pkg/orderline"
	"github.com/cognicore/orderline/pkg/orderline/assemble"
	"github.com/cognicore/orderline/pkg/orderline/index"
	"github.com/cognicore/orderline/pkg/orderline/store/memstore"
)

const menuJSON = `{
  "version": "v1",
  "categories": [
    {"name": "Entrees", "items": [
      {"name": "Chicken Parmesan", "price": 16.99,
       "description": "Breaded chicken breast with marinara and melted cheese",
       "modifierGroups": [
         {"name": "Add Extras", "multiSelect": true, "maxSelections": 3,
          "options": [{"name": "Extra Cheese", "price": 1.5}]},
         {"name": "Side Choice", "required": true, "minSelections": 1, "maxSelections": 1,
          "options": [{"name": "Fries", "price": 0, "isDefault": true}, {"name": "Salad", "price": 0.5}]}
       ]}
    ]},
    {"name": "Pizza", "items": [
      {"name": "Margherita Pizza", "price": "12.00"}
    ]}
  ]
}`

func newTestServer(t *testing.T) (*Server, *index.LRUCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cache, err := index.NewLRUCache(8)
	if err != nil {
		t.Fatalf("NewLRUCache: %v", err)
	}
	engine := orderline.New(orderline.Options{Store: memstore.New(), Cache: cache})
	return New(engine, nil), cache
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request ID")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "call-42")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "call-42" {
		t.Errorf("expected request ID echoed, got %q", got)
	}
}

func TestPutMenuThenParse(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodPut, "/v1/restaurants/+15550100/menu", menuJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("put menu: expected 200, got %d: %s", w.Code, w.Body)
	}

	w = do(s, http.MethodPost, "/v1/restaurants/+15550100/orders/parse",
		`{"utterance": "can i get the chicken parm with extra cheese"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("parse: expected 200, got %d: %s", w.Code, w.Body)
	}

	var res assemble.ParseResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.Match.Item.Name != "Chicken Parmesan" {
		t.Fatalf("expected Chicken Parmesan, got %s", w.Body)
	}
	if res.Match.CalculatedPrice != 18.49 {
		t.Errorf("expected 18.49, got %v", res.Match.CalculatedPrice)
	}
	if len(res.Match.RemainingRequiredModifiers) != 1 || res.Match.RemainingRequiredModifiers[0].GroupName != "Side Choice" {
		t.Errorf("expected Side Choice remaining, got %+v", res.Match.RemainingRequiredModifiers)
	}
}

func TestParseFailuresAreResults(t *testing.T) {
	s, _ := newTestServer(t)
	do(s, http.MethodPut, "/v1/restaurants/+15550100/menu", menuJSON)

	tests := []struct {
		name string
		path string
		body string
		kind assemble.ErrorKind
	}{
		{"filler only", "/v1/restaurants/+15550100/orders/parse", `{"utterance": "um yeah please"}`, assemble.KindEmptyUtterance},
		{"unknown restaurant", "/v1/restaurants/+15559999/orders/parse", `{"utterance": "pizza"}`, assemble.KindIndexUnavailable},
		{"gibberish", "/v1/restaurants/+15550100/orders/parse", `{"utterance": "blorf zingle"}`, assemble.KindNoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, http.MethodPost, tt.path, tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			var res assemble.ParseResult
			if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if res.Success || res.ErrorKind != tt.kind {
				t.Errorf("expected %s failure, got %s", tt.kind, w.Body)
			}
		})
	}
}

func TestParseInlineMenu(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"menu": ` + menuJSON + `, "utterance": "margherita pizza please"}`
	w := do(s, http.MethodPost, "/v1/orders/parse", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var res assemble.ParseResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.Match.Item.Name != "Margherita Pizza" || res.Match.CalculatedPrice != 12 {
		t.Errorf("unexpected result %s", w.Body)
	}
}

func TestBadRequests(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"parse malformed", http.MethodPost, "/v1/restaurants/k/orders/parse", `{"utterance":`, http.StatusBadRequest},
		{"menu malformed", http.MethodPut, "/v1/restaurants/k/menu", `[1,2]`, http.StatusBadRequest},
		{"menu key mismatch", http.MethodPut, "/v1/restaurants/k/menu", `{"key": "other", "categories": []}`, http.StatusBadRequest},
		{"menu without items", http.MethodPut, "/v1/restaurants/k/menu", `{"categories": []}`, http.StatusBadRequest},
		{"menu missing", http.MethodGet, "/v1/restaurants/nope/menu", "", http.StatusNotFound},
		{"webhook malformed", http.MethodPost, "/v1/webhooks/menu-updated", `nope`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body)
			}
		})
	}
}

func TestGetMenu(t *testing.T) {
	s, _ := newTestServer(t)
	do(s, http.MethodPut, "/v1/restaurants/+15550100/menu", menuJSON)

	w := do(s, http.MethodGet, "/v1/restaurants/+15550100/menu", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got struct {
		Key        string `json:"key"`
		Version    string `json:"version"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Key != "+15550100" || got.Version != "v1" || len(got.Categories) != 2 {
		t.Errorf("unexpected menu %s", w.Body)
	}
}

func TestMenuUpdatedWebhook(t *testing.T) {
	s, cache := newTestServer(t)
	do(s, http.MethodPut, "/v1/restaurants/+15550100/menu", menuJSON)
	do(s, http.MethodPost, "/v1/restaurants/+15550100/orders/parse", `{"utterance": "pizza"}`)
	if _, ok := cache.Get("+15550100"); !ok {
		t.Fatal("expected index cached after a parse")
	}

	w := do(s, http.MethodPost, "/v1/webhooks/menu-updated", `{"restaurantKey": "+15550100"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if _, ok := cache.Get("+15550100"); ok {
		t.Error("expected index invalidated")
	}

	do(s, http.MethodPost, "/v1/restaurants/+15550100/orders/parse", `{"utterance": "pizza"}`)
	w = do(s, http.MethodPost, "/v1/webhooks/menu-updated", `{}`)
	if w.Code != http.StatusAccepted || cache.Len() != 0 {
		t.Errorf("expected all indexes invalidated, got %d with %d cached", w.Code, cache.Len())
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := orderline.New(orderline.Options{Store: memstore.New()})

	tests := []struct {
		name string
		s    *Server
		want string
	}{
		{"disabled", New(engine, nil), ""},
		{"listed origin", New(engine, nil, WithCORS("https://admin.example.com")), "https://admin.example.com"},
		{"any origin", New(engine, nil, WithCORS("*")), "*"},
		{"invalid origin ignored", New(engine, nil, WithCORS("admin.example.com")), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", "https://admin.example.com")
			w := httptest.NewRecorder()
			tt.s.Handler().ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("expected allow origin %q, got %q", tt.want, got)
			}
		})
	}
}
