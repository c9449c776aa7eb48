//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL = getenv("E2E_BASE_URL", "http://localhost:8084")
	token   = os.Getenv("E2E_TOKEN")
)

func TestSystem_E2E_StockLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	id := fmt.Sprintf("e2e_%d", time.Now().UnixNano())

	doJSONAuth(t, http.MethodPost, baseURL+"/products", token, map[string]any{
		"type":           "Electronics",
		"product_id":     id,
		"name":           "E2E Phone",
		"price":          500,
		"quantity":       10,
		"brand":          "Acme",
		"warranty_years": 2,
	}, nil, 201)

	doJSONAuth(t, http.MethodPost, baseURL+"/products", token, map[string]any{
		"type":       "Electronics",
		"product_id": id,
		"name":       "Duplicate",
	}, nil, 409)

	var sold map[string]any
	doJSONAuth(t, http.MethodPost, baseURL+"/products/"+id+"/sell", token, map[string]any{"quantity": 3}, &sold, 200)
	if q, _ := sold["quantity"].(float64); q != 7 {
		t.Fatalf("quantity after sale=%v want 7", sold["quantity"])
	}

	doJSONAuth(t, http.MethodPost, baseURL+"/products/"+id+"/sell", token, map[string]any{"quantity": 20}, nil, 409)

	var found []map[string]any
	doJSON(t, http.MethodGet, baseURL+"/products?q=e2e+pho", nil, &found, 200)
	if len(found) == 0 {
		t.Fatalf("search returned nothing")
	}

	doJSONAuth(t, http.MethodPost, baseURL+"/inventory/save", token, nil, nil, 200)

	if os.Getenv("E2E_RESTART") == "1" {
		restartService(t, ctx, getenv("E2E_SERVICE", "inventory"))
		waitReady(t, ctx, baseURL+"/readyz")

		var got map[string]any
		doJSON(t, http.MethodGet, baseURL+"/products/"+id, nil, &got, 200)
		if q, _ := got["quantity"].(float64); q != 7 {
			t.Fatalf("quantity after restart=%v want 7", got["quantity"])
		}
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()
	doJSONAuth(t, method, url, "", body, out, want)
}

func doJSONAuth(t *testing.T, method, url, token string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
