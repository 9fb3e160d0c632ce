package request

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/auth/authtest"
	"github.com/wichananm65/carehub-backend/internal/location"
	"go.uber.org/zap"
)

func newTestApp(seed []Request) (*fiber.App, *InMemoryRepository) {
	repo := NewInMemoryRepository(seed)
	locations := location.NewInMemoryRepository([]location.Location{{ID: 1, Name: "Bangkok"}, {ID: 2, Name: "Chiang Mai"}})
	h := NewHandler(NewService(repo, locations, nil), zap.NewNop())

	app := fiber.New()
	h.RegisterPublicRoutes(app)
	app.Use(authtest.Inject())
	h.RegisterProtectedRoutes(app)
	return app, repo
}

func call(t *testing.T, app *fiber.App, method, path, body, userID, role string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(authtest.HeaderUserID, userID)
		req.Header.Set(authtest.HeaderRole, role)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}

const validBody = `{"locationId":1,"title":"Evening care for dad","description":"Dad needs help after dinner | Language: Thai","careType":"elderly","hours":4,"budget":800}`

func TestCreateRequest_PersistsFields(t *testing.T) {
	app, repo := newTestApp(nil)

	status, body := call(t, app, "POST", "/api/requests", validBody, "5", "user")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	var created Listing
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != StatusOpen || created.UserID != 5 {
		t.Fatalf("unexpected created request %+v", created.Request)
	}
	if created.Details.Fields["language"] != "Thai" {
		t.Fatalf("expected parsed details, got %+v", created.Details)
	}

	stored, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("request not persisted: %v", err)
	}
	if stored.Title != "Evening care for dad" || stored.Hours != 4 || stored.Budget != 800 || stored.CareType != "elderly" {
		t.Fatalf("persisted fields differ: %+v", stored)
	}

	status, body = call(t, app, "GET", "/api/requests/1", "", "", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), "Evening care for dad") {
		t.Fatalf("expected detail to be retrievable, got %d: %s", status, body)
	}
}

func TestCreateRequest_Rejections(t *testing.T) {
	app, _ := newTestApp(nil)

	status, _ := call(t, app, "POST", "/api/requests", validBody, "", "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", status)
	}
	status, _ = call(t, app, "POST", "/api/requests", validBody, "6", "assistant")
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for assistants, got %d", status)
	}
	status, body := call(t, app, "POST", "/api/requests", `{"locationId":1,"title":"x","description":"y","careType":"gardening","hours":0}`, "5", "user")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 on invalid fields, got %d", status)
	}
	if !strings.Contains(string(body), "careType") || !strings.Contains(string(body), "hours") {
		t.Fatalf("expected field errors for careType and hours, got %s", body)
	}
	status, _ = call(t, app, "POST", "/api/requests", strings.Replace(validBody, `"locationId":1`, `"locationId":9`, 1), "5", "user")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown location, got %d", status)
	}
}

func TestListRequests_Filters(t *testing.T) {
	app, _ := newTestApp([]Request{
		{ID: 1, UserID: 5, LocationID: 1, Title: "Babysitter needed", CareType: "child", Hours: 3, Status: StatusOpen},
		{ID: 2, UserID: 5, LocationID: 2, Title: "Elderly companion", CareType: "elderly", Hours: 5, Status: StatusOpen},
		{ID: 3, UserID: 6, LocationID: 1, Title: "Night nurse", CareType: "medical", Hours: 8, Status: StatusAssigned},
	})

	list := func(query string) []Listing {
		t.Helper()
		status, body := call(t, app, "GET", "/api/requests"+query, "", "", "")
		if status != fiber.StatusOK {
			t.Fatalf("list %q: expected 200, got %d: %s", query, status, body)
		}
		var out []Listing
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	if got := list(""); len(got) != 2 {
		t.Fatalf("default listing should show open requests only, got %d", len(got))
	}
	if got := list("?status=all"); len(got) != 3 {
		t.Fatalf("status=all should show every request, got %d", len(got))
	}
	if got := list("?locationId=1"); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("location filter failed: %+v", got)
	}
	if got := list("?careType=elderly"); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("care type filter failed: %+v", got)
	}
	if got := list("?q=BABY"); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("title search failed: %+v", got)
	}
	if got := list("?q=%25"); len(got) != 0 {
		t.Fatalf("a percent sign should match literally, got %+v", got)
	}
	if got := list("?status=all&limit=1&offset=1"); len(got) != 1 {
		t.Fatalf("paging failed: %+v", got)
	}

	status, _ := call(t, app, "GET", "/api/requests?status=pending", "", "", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", status)
	}
	status, _ = call(t, app, "GET", "/api/requests/99", "", "", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown request, got %d", status)
	}
}

func TestRequestLifecycle(t *testing.T) {
	assistant := 9
	app, repo := newTestApp([]Request{
		{ID: 1, UserID: 5, LocationID: 1, Title: "Open job", CareType: "child", Hours: 3, Status: StatusOpen},
		{ID: 2, UserID: 5, LocationID: 1, Title: "Assigned job", CareType: "child", Hours: 3, Status: StatusAssigned, AssistantID: &assistant},
	})

	update := `{"locationId":2,"title":"Open job (updated)","description":"Twins","careType":"child","hours":6,"budget":500}`
	status, _ := call(t, app, "PATCH", "/api/requests/1", update, "6", "user")
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for a non-owner, got %d", status)
	}
	status, body := call(t, app, "PATCH", "/api/requests/1", update, "5", "user")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", status, body)
	}
	status, body = call(t, app, "PATCH", "/api/requests/1", `{"hours":4}`, "5", "user")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on a partial update, got %d: %s", status, body)
	}
	patched, _ := repo.GetByID(context.Background(), 1)
	if patched.Hours != 4 || patched.Title != "Open job (updated)" || patched.LocationID != 2 || patched.Budget != 500 {
		t.Fatalf("partial update should only touch hours: %+v", patched)
	}
	status, _ = call(t, app, "PATCH", "/api/requests/1", `{"title":"   "}`, "5", "user")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a blank title, got %d", status)
	}
	status, _ = call(t, app, "PATCH", "/api/requests/1", `{"locationId":99}`, "5", "user")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown location, got %d", status)
	}
	status, _ = call(t, app, "PATCH", "/api/requests/1", `{"hours":0}`, "5", "user")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an explicit zero hours, got %d", status)
	}
	status, _ = call(t, app, "PATCH", "/api/requests/2", update, "5", "user")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 when editing an assigned request, got %d", status)
	}

	status, _ = call(t, app, "POST", "/api/requests/1/complete", "", "5", "user")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 when completing an open request, got %d", status)
	}
	status, _ = call(t, app, "POST", "/api/requests/2/complete", "", "5", "user")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on completion, got %d", status)
	}
	done, _ := repo.GetByID(context.Background(), 2)
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}

	status, _ = call(t, app, "DELETE", "/api/requests/1", "", "5", "user")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on cancel, got %d", status)
	}
	status, _ = call(t, app, "DELETE", "/api/requests/2", "", "5", "user")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 when cancelling a completed request, got %d", status)
	}

	status, body = call(t, app, "GET", "/api/users/me/requests", "", "5", "user")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for own requests, got %d", status)
	}
	var mine []Listing
	if err := json.Unmarshal(body, &mine); err != nil || len(mine) != 2 {
		t.Fatalf("expected two own requests, got %s (err=%v)", body, err)
	}
}
