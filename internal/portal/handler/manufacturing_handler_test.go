package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/middleware"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/testutil"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/storage"
	"gorm.io/gorm"
)

func setupManufacturingRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewWorkflowService(repos.Part, repos.User, storage.New(nil, "test"), nil)
	h := NewManufacturingHandler(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/manufacturing")
	api.GET("/parts", h.List)
	api.POST("/parts", h.Create)
	api.GET("/summary", h.Summary)
	api.PATCH("/parts/:id", h.Update)
	api.POST("/parts/:id/status", h.ChangeStatus)
	api.POST("/parts/:id/claim", h.Claim)
	api.DELETE("/parts/:id", h.Delete)

	leads := api.Group("")
	leads.Use(middleware.RequireRoles(entity.RoleLead, entity.RoleAdmin))
	leads.GET("/lookups/users", h.Lookups)
	return r, db
}

func partPayload() map[string]interface{} {
	return map[string]interface{}{
		"part_name":          "Climber Hook",
		"subsystem":          "climber",
		"material":           "4140 steel",
		"quantity":           1,
		"manufacturing_type": entity.PartTypeManual,
		"cad_link":           "https://cad.example/hook",
	}
}

func TestCreatePartEndpoint(t *testing.T) {
	r, db := setupManufacturingRouter(t)
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	token := testutil.GenerateTestToken(student.ID, student.FullName, student.Email, student.Role)

	w := testutil.DoRequest(r, http.MethodPost, "/api/manufacturing/parts", partPayload(), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != entity.PartStatusDesignSubmitted {
		t.Fatalf("expected design_submitted, got %v", data["status"])
	}
	if data["can_assign"] != false {
		t.Fatal("students must not get the assign capability")
	}
}

func TestCreatePartRequiresAuth(t *testing.T) {
	r, _ := setupManufacturingRouter(t)
	w := testutil.DoRequest(r, http.MethodPost, "/api/manufacturing/parts", partPayload(), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreatePartValidationMapsTo422(t *testing.T) {
	r, db := setupManufacturingRouter(t)
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	token := testutil.GenerateTestToken(student.ID, student.FullName, student.Email, student.Role)

	payload := partPayload()
	payload["part_name"] = "   "
	w := testutil.DoRequest(r, http.MethodPost, "/api/manufacturing/parts", payload, token)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 42200 {
		t.Fatalf("expected business code 42200, got %v", resp["code"])
	}
}

func TestStatusMovePermissionMapsTo403(t *testing.T) {
	r, db := setupManufacturingRouter(t)
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	token := testutil.GenerateTestToken(student.ID, student.FullName, student.Email, student.Role)

	w := testutil.DoRequest(r, http.MethodPost, "/api/manufacturing/parts", partPayload(), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	partID := uint(data["id"].(float64))

	w = testutil.DoRequest(r, http.MethodPost,
		fmt.Sprintf("/api/manufacturing/parts/%d/status", partID),
		map[string]interface{}{"status": entity.PartStatusCompleted}, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-adjacent student move, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeletePartLeadOnly(t *testing.T) {
	r, db := setupManufacturingRouter(t)
	creator := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	other := testutil.SeedTestUser(t, db, "Ola Other", "ola@test.com", entity.RoleStudent)
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)

	creatorToken := testutil.GenerateTestToken(creator.ID, creator.FullName, creator.Email, creator.Role)
	w := testutil.DoRequest(r, http.MethodPost, "/api/manufacturing/parts", partPayload(), creatorToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	partID := uint(data["id"].(float64))

	otherToken := testutil.GenerateTestToken(other.ID, other.FullName, other.Email, other.Role)
	w = testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/manufacturing/parts/%d", partID), nil, otherToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unrelated student, got %d", w.Code)
	}

	leadToken := testutil.GenerateTestToken(lead.ID, lead.FullName, lead.Email, lead.Role)
	w = testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/manufacturing/parts/%d", partID), nil, leadToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for lead delete, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/manufacturing/parts/%d", partID), nil, leadToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a deleted part, got %d", w.Code)
	}
}

func TestClaimAcceptsEmptyBody(t *testing.T) {
	r, db := setupManufacturingRouter(t)
	creator := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	other := testutil.SeedTestUser(t, db, "Ola Other", "ola@test.com", entity.RoleStudent)

	creatorToken := testutil.GenerateTestToken(creator.ID, creator.FullName, creator.Email, creator.Role)
	w := testutil.DoRequest(r, http.MethodPost, "/api/manufacturing/parts", partPayload(), creatorToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	partID := uint(data["id"].(float64))

	// An ETA payload is optional; a bare claim must not 400.
	otherToken := testutil.GenerateTestToken(other.ID, other.FullName, other.Email, other.Role)
	w = testutil.DoRequest(r, http.MethodPost, fmt.Sprintf("/api/manufacturing/parts/%d/claim", partID), nil, otherToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a body-less claim, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	assigned := data["assigned_students"].([]interface{})
	if len(assigned) != 2 {
		t.Fatalf("expected creator plus claimer assigned, got %d", len(assigned))
	}
}

func TestLookupsLeadOnly(t *testing.T) {
	r, db := setupManufacturingRouter(t)
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)

	studentToken := testutil.GenerateTestToken(student.ID, student.FullName, student.Email, student.Role)
	w := testutil.DoRequest(r, http.MethodGet, "/api/manufacturing/lookups/users", nil, studentToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a student directory lookup, got %d", w.Code)
	}

	leadToken := testutil.GenerateTestToken(lead.ID, lead.FullName, lead.Email, lead.Role)
	w = testutil.DoRequest(r, http.MethodGet, "/api/manufacturing/lookups/users", nil, leadToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a lead directory lookup, got %d: %s", w.Code, w.Body.String())
	}
	users := testutil.ParseResponse(w)["data"].([]interface{})
	if len(users) != 2 {
		t.Fatalf("expected both accounts listed, got %d", len(users))
	}
}

func TestSummaryEndpoint(t *testing.T) {
	r, db := setupManufacturingRouter(t)
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	token := testutil.GenerateTestToken(student.ID, student.FullName, student.Email, student.Role)

	w := testutil.DoRequest(r, http.MethodPost, "/api/manufacturing/parts", partPayload(), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/manufacturing/summary", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total"].(float64) != 1 {
		t.Fatalf("expected one part in summary, got %v", data["total"])
	}
}
