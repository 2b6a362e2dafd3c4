package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"xiuh/internal/domain/catalog"
	"xiuh/internal/router"
)

func TestHTTP_EndToEnd_AdoptDailyMoveFeed(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	userID := "discord-1"

	// 1) Sin usuario no hay acceso
	{
		st, _ := doReq(t, ts.URL, "GET", "/me/pet", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
	}

	// 2) El daily exige mascota
	{
		st, _ := doReq(t, ts.URL, "POST", "/daily", userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 daily without pet, got %d", st)
		}
	}

	// 3) Adopta; la segunda adopción se rechaza
	petID := adopt(t, ts.URL, userID, "cat", "Mishi")
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets", userID, map[string]any{"species": "dog", "name": "Firulais"})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on second adoption, got %d", st)
		}
	}

	// 4) Daily: el primero entrega un item, el segundo queda en cooldown
	var reward struct {
		ItemID string `json:"item_id"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/daily", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on claim, got %d body=%s", st, string(body))
		}
		mustDecode(t, body, &reward)
		if _, ok := catalog.Item(reward.ItemID); !ok {
			t.Fatalf("reward %q is not in the catalog", reward.ItemID)
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/daily", userID, nil)
		if st != http.StatusTooManyRequests {
			t.Fatalf("expected 429 on second claim, got %d", st)
		}
		var cd struct {
			RetryAfterSeconds int64 `json:"retry_after_seconds"`
		}
		mustDecode(t, body, &cd)
		if cd.RetryAfterSeconds <= 0 || cd.RetryAfterSeconds > 20*3600 {
			t.Fatalf("unexpected retry_after_seconds %d", cd.RetryAfterSeconds)
		}
	}

	// 5) El premio está en la bolsa
	{
		st, body := doReq(t, ts.URL, "GET", "/inventory/bag", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on bag, got %d", st)
		}
		var bag struct {
			Items []struct {
				ItemID   string `json:"item_id"`
				Quantity int    `json:"quantity"`
			} `json:"items"`
			Capacity int `json:"capacity"`
		}
		mustDecode(t, body, &bag)
		if len(bag.Items) != 1 || bag.Items[0].ItemID != reward.ItemID || bag.Items[0].Quantity != 1 {
			t.Fatalf("unexpected bag %s", string(body))
		}
		if bag.Capacity != 50 {
			t.Fatalf("expected capacity 50, got %d", bag.Capacity)
		}
	}

	// 6) Move a storage; la bolsa queda vacía
	move(t, ts.URL, userID, reward.ItemID, "bag", "storage")
	{
		st, body := doReq(t, ts.URL, "GET", "/inventory/storage", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on storage, got %d", st)
		}
		var page struct {
			Items      []map[string]any `json:"items"`
			TotalPages int              `json:"total_pages"`
		}
		mustDecode(t, body, &page)
		if len(page.Items) != 1 || page.TotalPages != 1 {
			t.Fatalf("unexpected storage page %s", string(body))
		}
	}

	def, _ := catalog.Item(reward.ItemID)

	// 7) Alimentar solo usa la bolsa
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/feed", userID, map[string]any{"item_id": reward.ItemID})
		want := http.StatusConflict
		if !def.Edible() {
			want = http.StatusBadRequest
		}
		if st != want {
			t.Fatalf("expected %d feeding from an empty bag, got %d", want, st)
		}
	}

	move(t, ts.URL, userID, reward.ItemID, "storage", "bag")
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/feed", userID, map[string]any{"item_id": reward.ItemID})
		if !def.Edible() {
			if st != http.StatusBadRequest {
				t.Fatalf("expected 400 feeding %s, got %d", reward.ItemID, st)
			}
			return
		}
		if st != http.StatusOK {
			t.Fatalf("expected 200 on feed, got %d body=%s", st, string(body))
		}
		var fed struct {
			Hunger float64 `json:"hunger"`
		}
		mustDecode(t, body, &fed)
		if fed.Hunger != 100 {
			t.Fatalf("fresh pet should stay capped at 100, got %v", fed.Hunger)
		}
	}

	// 8) Se consumió el item
	{
		_, body := doReq(t, ts.URL, "GET", "/inventory/bag", userID, nil)
		var bag struct {
			Count int `json:"count"`
		}
		mustDecode(t, body, &bag)
		if bag.Count != 0 {
			t.Fatalf("expected empty bag after feeding, got %s", string(body))
		}
	}
}

func TestHTTP_Timezones(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	{
		st, _ := doReq(t, ts.URL, "PUT", "/me/timezone", "u1", map[string]any{"timezone": "Mars/Olympus"})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 on unknown zone, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "PUT", "/me/timezone", "u1", map[string]any{"timezone": "Asia/Tokyo", "location": "Tokio"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 saving zone, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/me/timezone", "u2", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for user without zone, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/timezones?user_id=u1,u2", "u2", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on batch, got %d", st)
		}
		var out []struct {
			UserID   string `json:"user_id"`
			Location string `json:"location"`
		}
		mustDecode(t, body, &out)
		if len(out) != 1 || out[0].UserID != "u1" || out[0].Location != "Tokio" {
			t.Fatalf("unexpected batch %s", string(body))
		}
	}
}

func TestHTTP_GatewayToken(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{GatewayToken: "s3cret"}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "GET", "/inventory/bag", "u1", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without gateway token, got %d", st)
	}

	req, _ := http.NewRequest("GET", ts.URL+"/inventory/bag", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-Gateway-Token", "s3cret")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with gateway token, got %d", res.StatusCode)
	}
	if res.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
}

func adopt(t *testing.T, baseURL, userID, species, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, map[string]any{"species": species, "name": name})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 adopting, got %d body=%s", st, string(body))
	}
	var out struct {
		ID string `json:"id"`
	}
	mustDecode(t, body, &out)
	if out.ID == "" {
		t.Fatalf("expected pet id")
	}
	return out.ID
}

func move(t *testing.T, baseURL, userID, itemID, from, to string) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/inventory/move", userID, map[string]any{
		"item_id": itemID,
		"from":    from,
		"to":      to,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 moving %s %s->%s, got %d body=%s", itemID, from, to, st, string(body))
	}
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", string(body), err)
	}
}

func doReq(t *testing.T, baseURL, method, path, userID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
