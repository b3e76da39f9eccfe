package service

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/theDevJade/Robodores-Shop-Website/internal/config"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/sheets"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/storage"
)

// Services is the portal service set.
type Services struct {
	Auth       *AuthService
	Workflow   *WorkflowService
	Attendance *AttendanceService
	Job        *JobService
	Inventory  *InventoryService
	Order      *OrderService
	Ticket     *TicketService
	Schedule   *ScheduleService
	Settings   *SettingsService
	Export     *ExportService
}

// NewServices wires every service against the shared repositories,
// cache, object store and sheet sync client.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	store := storage.Connect(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.Bucket,
		cfg.MinIO.UseSSL,
	)
	sheetsClient := sheets.NewClient(cfg.Sheets.RequestTimeout)

	exports := NewExportService(repos.Attendance, repos.Part, repos.Job, repos.Order, repos.Inventory, repos.Ticket)

	return &Services{
		Auth:       NewAuthService(repos.User, repos.Attendance, repos.Job, repos.Order, repos.Inventory, repos.Ticket, rdb, cfg),
		Workflow:   NewWorkflowService(repos.Part, repos.User, store, rdb),
		Attendance: NewAttendanceService(repos.Attendance, repos.User, repos.Schedule, repos.Settings),
		Job:        NewJobService(repos.Job, repos.User, store),
		Inventory:  NewInventoryService(repos.Inventory),
		Order:      NewOrderService(repos.Order, repos.User, sheetsClient, cfg.Sheets.OrdersURL, logger),
		Ticket:     NewTicketService(repos.Ticket, repos.User),
		Schedule:   NewScheduleService(repos.Schedule),
		Settings:   NewSettingsService(repos.Settings, exports, sheetsClient, logger),
		Export:     exports,
	}
}
