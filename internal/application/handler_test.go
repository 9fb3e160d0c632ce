package application

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/auth/authtest"
	"github.com/wichananm65/carehub-backend/internal/request"
	"github.com/wichananm65/carehub-backend/internal/user"
	"go.uber.org/zap"
)

type fixture struct {
	app      *fiber.App
	requests *request.InMemoryRepository
	apps     *InMemoryRepository
}

// Request 1 (open) and 2 (completed) belong to user 5; users 7 and 8 are
// assistants.
func newFixture(t *testing.T) fixture {
	t.Helper()
	requests := request.NewInMemoryRepository([]request.Request{
		{ID: 1, UserID: 5, LocationID: 1, Title: "Night care", CareType: "elderly", Hours: 8, Status: request.StatusOpen},
		{ID: 2, UserID: 5, LocationID: 1, Title: "Old job", CareType: "child", Hours: 2, Status: request.StatusCompleted},
	})
	users := user.NewInMemoryRepository([]user.User{
		{ID: 5, Email: "owner@example.com", FirstName: "Olivia", Role: auth.RoleUser},
		{ID: 7, Email: "a7@example.com", FirstName: "Anan", LastName: "K", Role: auth.RoleAssistant},
		{ID: 8, Email: "a8@example.com", FirstName: "Bee", Role: auth.RoleAssistant},
	})
	apps := NewInMemoryRepository(nil, requests)
	svc := NewService(apps, request.NewService(requests, nil, nil), user.NewService(users), nil, zap.NewNop())

	app := fiber.New()
	app.Use(authtest.Inject())
	NewHandler(svc, zap.NewNop()).RegisterProtectedRoutes(app)
	return fixture{app: app, requests: requests, apps: apps}
}

func call(t *testing.T, app *fiber.App, method, path, body, userID, role string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
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

func TestApply(t *testing.T) {
	f := newFixture(t)

	status, _ := call(t, f.app, "POST", "/api/requests/1/applications", `{"message":"hi"}`, "5", "user")
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for a non-assistant, got %d", status)
	}
	status, _ = call(t, f.app, "POST", "/api/requests/99/applications", `{"message":"hi"}`, "7", "assistant")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for an unknown request, got %d", status)
	}
	status, _ = call(t, f.app, "POST", "/api/requests/2/applications", `{"message":"hi"}`, "7", "assistant")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 for a closed request, got %d", status)
	}
	status, body := call(t, f.app, "POST", "/api/requests/1/applications", `{"message":"I can help","proposedRate":250}`, "7", "assistant")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	var created Application
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != StatusPending || created.AssistantID != 7 || created.ProposedRate != 250 {
		t.Fatalf("unexpected application %+v", created)
	}

	status, _ = call(t, f.app, "POST", "/api/requests/1/applications", `{"message":"again"}`, "7", "assistant")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 on a duplicate application, got %d", status)
	}
	status, _ = call(t, f.app, "POST", "/api/requests/1/applications", "", "8", "assistant")
	if status != fiber.StatusCreated {
		t.Fatalf("expected an empty body to be accepted, got %d", status)
	}
}

func TestAccept_RejectsOthersAndAssigns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _ := f.apps.Create(ctx, Application{RequestID: 1, AssistantID: 7})
	second, _ := f.apps.Create(ctx, Application{RequestID: 1, AssistantID: 8})

	status, body := call(t, f.app, "GET", "/api/requests/1/applications", "", "8", "assistant")
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for a non-owner listing offers, got %d", status)
	}
	status, body = call(t, f.app, "GET", "/api/requests/1/applications", "", "5", "user")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for the owner, got %d", status)
	}
	if !strings.Contains(string(body), "Anan K") {
		t.Fatalf("expected assistant names in offers, got %s", body)
	}

	status, _ = call(t, f.app, "POST", "/api/applications/1/accept", "", "8", "assistant")
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 when an assistant accepts, got %d", status)
	}
	status, body = call(t, f.app, "POST", "/api/applications/1/accept", "", "5", "user")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on accept, got %d: %s", status, body)
	}

	a1, _ := f.apps.GetByID(ctx, first.ID)
	a2, _ := f.apps.GetByID(ctx, second.ID)
	if a1.Status != StatusAccepted || a2.Status != StatusRejected {
		t.Fatalf("expected accepted/rejected, got %s/%s", a1.Status, a2.Status)
	}
	req, _ := f.requests.GetByID(ctx, 1)
	if req.Status != request.StatusAssigned || req.AssistantID == nil || *req.AssistantID != 7 {
		t.Fatalf("request not assigned to assistant 7: %+v", req)
	}

	status, _ = call(t, f.app, "POST", "/api/applications/2/accept", "", "5", "user")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 accepting a rejected application, got %d", status)
	}

	status, body = call(t, f.app, "GET", "/api/assistants/me/applications", "", "7", "assistant")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"requestStatus":"assigned"`) {
		t.Fatalf("expected own applications with request status, got %d: %s", status, body)
	}
}

func TestRejectAndWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.apps.Create(ctx, Application{RequestID: 1, AssistantID: 7})
	f.apps.Create(ctx, Application{RequestID: 1, AssistantID: 8})

	status, _ := call(t, f.app, "POST", "/api/applications/1/reject", "", "5", "user")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on reject, got %d", status)
	}
	status, _ = call(t, f.app, "POST", "/api/applications/1/withdraw", "", "7", "assistant")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 withdrawing a rejected application, got %d", status)
	}
	status, _ = call(t, f.app, "POST", "/api/applications/2/withdraw", "", "7", "assistant")
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 withdrawing someone else's application, got %d", status)
	}
	status, _ = call(t, f.app, "POST", "/api/applications/2/withdraw", "", "8", "assistant")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on withdraw, got %d", status)
	}
	status, _ = call(t, f.app, "POST", "/api/applications/42/reject", "", "5", "user")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for an unknown application, got %d", status)
	}
}

func TestCreate_RequestClosedAfterCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The owner accepts someone else between the open check and the insert.
	if err := f.requests.Assign(ctx, 1, 8); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.apps.Create(ctx, Application{RequestID: 1, AssistantID: 7}); err != ErrRequestNotOpen {
		t.Fatalf("expected ErrRequestNotOpen, got %v", err)
	}
	if apps, _ := f.apps.ListByRequest(ctx, 1); len(apps) != 0 {
		t.Fatalf("expected no applications on a closed request, got %d", len(apps))
	}
}
