package entity

// ScheduleBlock is a recurring weekly window during which attendance scans
// are accepted. Times are wall-clock "HH:MM" strings in shop local time.
type ScheduleBlock struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Weekday   int    `json:"weekday" gorm:"not null;index"` // 0=Monday .. 6=Sunday
	StartTime string `json:"start_time" gorm:"size:5;not null"`
	EndTime   string `json:"end_time" gorm:"size:5;not null"`
	Active    bool   `json:"active" gorm:"default:true"`
}

func (ScheduleBlock) TableName() string {
	return "schedule_blocks"
}
