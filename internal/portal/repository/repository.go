package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the portal repository set.
type Repositories struct {
	User       *UserRepository
	Part       *PartRepository
	Attendance *AttendanceRepository
	Job        *JobRepository
	Inventory  *InventoryRepository
	Order      *OrderRepository
	Ticket     *TicketRepository
	Schedule   *ScheduleRepository
	Settings   *SettingsRepository
}

// NewRepositories wires every repository against the shared connection.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Part:       NewPartRepository(db),
		Attendance: NewAttendanceRepository(db),
		Job:        NewJobRepository(db),
		Inventory:  NewInventoryRepository(db),
		Order:      NewOrderRepository(db),
		Ticket:     NewTicketRepository(db),
		Schedule:   NewScheduleRepository(db),
		Settings:   NewSettingsRepository(db),
	}
}
