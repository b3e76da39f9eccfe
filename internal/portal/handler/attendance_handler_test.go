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
	"gorm.io/gorm"
)

func setupAttendanceRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewAttendanceService(repos.Attendance, repos.User, repos.Schedule, repos.Settings)
	h := NewAttendanceHandler(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api")
	api.POST("/attendance/scan", h.Scan)
	api.GET("/attendance/today", h.Today)

	admins := api.Group("")
	admins.Use(middleware.RequireRoles(entity.RoleAdmin))
	admins.DELETE("/attendance/entries/:id", h.DeleteEntry)
	return r, db
}

func seedScannableUser(t *testing.T, db *gorm.DB) *entity.User {
	t.Helper()
	user := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	barcode := "BADGE-001"
	user.BarcodeID = &barcode
	if err := db.Save(user).Error; err != nil {
		t.Fatalf("failed to badge user: %v", err)
	}
	config := &entity.AppConfig{ID: 1, RestrictAttendanceToSchedule: false}
	if err := db.Save(config).Error; err != nil {
		t.Fatalf("failed to relax schedule restriction: %v", err)
	}
	return user
}

func TestScanRequiresSession(t *testing.T) {
	r, db := setupAttendanceRouter(t)
	seedScannableUser(t, db)

	payload := map[string]interface{}{"barcode_id": "BADGE-001"}
	w := testutil.DoRequest(r, http.MethodPost, "/api/attendance/scan", payload, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an anonymous scan, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/attendance/today", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an anonymous summary, got %d", w.Code)
	}
}

func TestScanWithKioskSession(t *testing.T) {
	r, db := setupAttendanceRouter(t)
	seedScannableUser(t, db)
	kiosk := testutil.SeedTestUser(t, db, "Front Kiosk", "kiosk@test.com", entity.RoleStudent)
	token := testutil.GenerateTestToken(kiosk.ID, kiosk.FullName, kiosk.Email, kiosk.Role)

	payload := map[string]interface{}{"barcode_id": "BADGE-001"}
	w := testutil.DoRequest(r, http.MethodPost, "/api/attendance/scan", payload, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["student_name"] != "Sam Student" {
		t.Fatalf("scan must resolve the scanned member, got %v", data["student_name"])
	}
}

func TestDeleteEntryAdminOnly(t *testing.T) {
	r, db := setupAttendanceRouter(t)
	user := seedScannableUser(t, db)
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)
	admin := testutil.SeedTestUser(t, db, "Ada Admin", "ada@test.com", entity.RoleAdmin)

	entry := &entity.AttendanceEntry{UserID: &user.ID, Status: entity.AttendanceOK}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to seed attendance entry: %v", err)
	}

	leadToken := testutil.GenerateTestToken(lead.ID, lead.FullName, lead.Email, lead.Role)
	w := testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/attendance/entries/%d", entry.ID), nil, leadToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a lead entry delete, got %d", w.Code)
	}

	adminToken := testutil.GenerateTestToken(admin.ID, admin.FullName, admin.Email, admin.Role)
	w = testutil.DoRequest(r, http.MethodDelete, fmt.Sprintf("/api/attendance/entries/%d", entry.ID), nil, adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for an admin entry delete, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&entity.AttendanceEntry{}).Where("id = ?", entry.ID).Count(&count)
	if count != 0 {
		t.Fatal("entry must be removed")
	}
}
