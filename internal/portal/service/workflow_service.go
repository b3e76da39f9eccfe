package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/storage"
)

// StatusLabels maps workflow statuses to their board column titles.
var StatusLabels = map[string]string{
	entity.PartStatusDesignSubmitted: "Design Submitted",
	entity.PartStatusReady:           "Ready for Manufacturing",
	entity.PartStatusInProgress:      "In Progress",
	entity.PartStatusQualityCheck:    "Quality Check",
	entity.PartStatusCompleted:       "Completed",
}

// statusOrder ranks statuses for board sorting.
var statusOrder = map[string]int{
	entity.PartStatusDesignSubmitted: 0,
	entity.PartStatusReady:           1,
	entity.PartStatusInProgress:      2,
	entity.PartStatusQualityCheck:    3,
	entity.PartStatusCompleted:       4,
}

// priorityWeight ranks priorities; lower sorts first.
var priorityWeight = map[string]int{
	entity.PartPriorityUrgent: 0,
	entity.PartPriorityNormal: 1,
	entity.PartPriorityLow:    2,
}

// typeRequiredFields names the per-type fields a part needs before it can
// leave the design stage automatically.
var typeRequiredFields = map[string][]string{
	entity.PartTypeCNC:      {"cam_link", "cam_student", "cnc_operator", "material_stock"},
	entity.PartTypePrinting: {"printer_assignment", "slicer_profile", "filament_type"},
	entity.PartTypeManual:   {"tool_type", "dimensions", "responsible_student"},
}

// studentTransitions restricts non-leads to adjacent stage moves.
var studentTransitions = map[string][]string{
	entity.PartStatusDesignSubmitted: {entity.PartStatusReady},
	entity.PartStatusReady:           {entity.PartStatusDesignSubmitted, entity.PartStatusInProgress},
	entity.PartStatusInProgress:      {entity.PartStatusReady, entity.PartStatusQualityCheck},
	entity.PartStatusQualityCheck:    {entity.PartStatusInProgress, entity.PartStatusCompleted},
	entity.PartStatusCompleted:       {entity.PartStatusQualityCheck},
}

const summaryCacheKey = "manufacturing:summary"
const summaryCacheTTL = 30 * time.Second

// WorkflowService runs the manufacturing board: part lifecycle, lane
// ordering, assignment and ETA tracking.
type WorkflowService struct {
	parts *repository.PartRepository
	users *repository.UserRepository
	store *storage.FileStore
	rdb   *redis.Client
}

func NewWorkflowService(parts *repository.PartRepository, users *repository.UserRepository, store *storage.FileStore, rdb *redis.Client) *WorkflowService {
	return &WorkflowService{parts: parts, users: users, store: store, rdb: rdb}
}

// PartCreateInput is the payload for creating a part.
type PartCreateInput struct {
	PartName          string  `json:"part_name"`
	Subsystem         string  `json:"subsystem"`
	Material          string  `json:"material"`
	Quantity          int     `json:"quantity"`
	ManufacturingType string  `json:"manufacturing_type"`
	CADLink           string  `json:"cad_link"`
	Priority          string  `json:"priority"`
	Notes             *string `json:"notes"`

	CAMLink            *string `json:"cam_link"`
	CAMStudent         *string `json:"cam_student"`
	CNCOperator        *string `json:"cnc_operator"`
	MaterialStock      *string `json:"material_stock"`
	PrinterAssignment  *string `json:"printer_assignment"`
	SlicerProfile      *string `json:"slicer_profile"`
	FilamentType       *string `json:"filament_type"`
	ToolType           *string `json:"tool_type"`
	Dimensions         *string `json:"dimensions"`
	ResponsibleStudent *string `json:"responsible_student"`

	AssignedStudentIDs []uint `json:"assigned_student_ids"`
	AssignedLeadIDs    []uint `json:"assigned_lead_ids"`
}

// PartUpdateInput carries a partial update; nil fields are untouched.
type PartUpdateInput struct {
	PartName  *string `json:"part_name"`
	Subsystem *string `json:"subsystem"`
	Material  *string `json:"material"`
	Quantity  *int    `json:"quantity"`
	CADLink   *string `json:"cad_link"`
	Notes     *string `json:"notes"`

	CAMLink            *string `json:"cam_link"`
	CAMStudent         *string `json:"cam_student"`
	CNCOperator        *string `json:"cnc_operator"`
	MaterialStock      *string `json:"material_stock"`
	PrinterAssignment  *string `json:"printer_assignment"`
	SlicerProfile      *string `json:"slicer_profile"`
	FilamentType       *string `json:"filament_type"`
	ToolType           *string `json:"tool_type"`
	Dimensions         *string `json:"dimensions"`
	ResponsibleStudent *string `json:"responsible_student"`

	Priority          *string `json:"priority"`
	ManufacturingType *string `json:"manufacturing_type"`
	StatusLocked      *bool   `json:"status_locked"`
	LockReason        *string `json:"lock_reason"`

	AssignedStudentIDs *[]uint `json:"assigned_student_ids"`
	AssignedLeadIDs    *[]uint `json:"assigned_lead_ids"`
}

// ETAInput sets a completion estimate by minutes offset or absolute target.
type ETAInput struct {
	ETAMinutes *int       `json:"eta_minutes"`
	ETATarget  *time.Time `json:"eta_target"`
	ETANote    *string    `json:"eta_note"`
}

// Assignment is a user reference shown on the board.
type Assignment struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// PartView is a part serialized for the caller, including the caller's
// capabilities on it.
type PartView struct {
	ID                uint    `json:"id"`
	PartName          string  `json:"part_name"`
	Subsystem         string  `json:"subsystem"`
	Material          string  `json:"material"`
	Quantity          int     `json:"quantity"`
	ManufacturingType string  `json:"manufacturing_type"`
	CADLink           string  `json:"cad_link"`
	CAMLink           *string `json:"cam_link"`
	CAMStudent        *string `json:"cam_student"`
	CNCOperator       *string `json:"cnc_operator"`
	MaterialStock     *string `json:"material_stock"`
	PrinterAssignment *string `json:"printer_assignment"`
	SlicerProfile     *string `json:"slicer_profile"`
	FilamentType      *string `json:"filament_type"`
	ToolType          *string `json:"tool_type"`
	Dimensions        *string `json:"dimensions"`
	ResponsibleStudent *string `json:"responsible_student"`
	Notes             *string `json:"notes"`

	Priority     string  `json:"priority"`
	Status       string  `json:"status"`
	StatusLabel  string  `json:"status_label"`
	StatusLocked bool    `json:"status_locked"`
	LockReason   *string `json:"lock_reason"`
	LanePosition int     `json:"lane_position"`

	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	LastStatusChange time.Time `json:"last_status_change"`

	CreatedBy        Assignment   `json:"created_by"`
	ApprovedBy       *Assignment  `json:"approved_by"`
	AssignedStudents []Assignment `json:"assigned_students"`
	AssignedLeads    []Assignment `json:"assigned_leads"`

	CanEdit   bool `json:"can_edit"`
	CanMove   bool `json:"can_move"`
	CanAssign bool `json:"can_assign"`

	StudentETAMinutes *int        `json:"student_eta_minutes"`
	ETANote           *string     `json:"eta_note"`
	ETAUpdatedAt      *time.Time  `json:"eta_updated_at"`
	ETABy             *Assignment `json:"eta_by"`
	ETATarget         *time.Time  `json:"eta_target"`

	ActualStart    *time.Time `json:"actual_start"`
	ActualComplete *time.Time `json:"actual_complete"`

	CADFileName *string `json:"cad_file_name"`
	CADFileURL  *string `json:"cad_file_url"`
	CAMFileName *string `json:"cam_file_name"`
	CAMFileURL  *string `json:"cam_file_url"`
}

// Summary aggregates the board for the dashboard header.
type Summary struct {
	Total    int            `json:"total"`
	Urgent   int            `json:"urgent"`
	ByStatus map[string]int `json:"by_status"`
}

// LookupUser is an assignable user exposed to leads.
type LookupUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (s *WorkflowService) caller(ctx context.Context, actorID uint) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewPermissionError("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

func requireText(value, label string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", NewValidationError("%s is required", label)
	}
	return trimmed, nil
}

func dedupeIDs(raw []uint) []uint {
	if len(raw) == 0 {
		return []uint{}
	}
	seen := make(map[uint]bool, len(raw))
	deduped := make([]uint, 0, len(raw))
	for _, id := range raw {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}
	return deduped
}

// validateAssignmentTargets checks that every ID exists and holds one of
// the allowed roles.
func (s *WorkflowService) validateAssignmentTargets(ctx context.Context, ids []uint, allowedRoles []string) error {
	if len(ids) == 0 {
		return nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uint]entity.User, len(users))
	for _, u := range users {
		found[u.ID] = u
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, strconv.FormatUint(uint64(id), 10))
		}
	}
	if len(missing) > 0 {
		return NewNotFoundError("Unknown assignee IDs: %s", strings.Join(missing, ", "))
	}
	for _, user := range users {
		allowed := false
		for _, role := range allowedRoles {
			if user.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return NewValidationError("%s must have one of roles: %s", user.FullName, strings.Join(allowedRoles, ", "))
		}
	}
	return nil
}

// canTouch reports whether a user may act on a part: leads always, others
// only as creator or assignee.
func canTouch(part *entity.ManufacturingPart, user *entity.User) bool {
	if entity.IsLead(user.Role) {
		return true
	}
	if part.CreatedByID == user.ID {
		return true
	}
	return part.AssignedStudentIDs.Contains(user.ID) || part.AssignedLeadIDs.Contains(user.ID)
}

func (s *WorkflowService) nextLanePosition(ctx context.Context, status string) (int, error) {
	max, err := s.parts.MaxLanePosition(ctx, status)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// moveToStatus relocates a part into another status bucket. Same-status
// moves are a no-op so lane position and change timestamps survive.
func (s *WorkflowService) moveToStatus(ctx context.Context, part *entity.ManufacturingPart, status string) error {
	if part.Status == status {
		return nil
	}
	position, err := s.nextLanePosition(ctx, status)
	if err != nil {
		return err
	}
	part.Status = status
	part.LastStatusChange = time.Now().UTC()
	part.LanePosition = position
	return nil
}

func typeFieldValue(part *entity.ManufacturingPart, field string) *string {
	switch field {
	case "cam_link":
		return part.CAMLink
	case "cam_student":
		return part.CAMStudent
	case "cnc_operator":
		return part.CNCOperator
	case "material_stock":
		return part.MaterialStock
	case "printer_assignment":
		return part.PrinterAssignment
	case "slicer_profile":
		return part.SlicerProfile
	case "filament_type":
		return part.FilamentType
	case "tool_type":
		return part.ToolType
	case "dimensions":
		return part.Dimensions
	case "responsible_student":
		return part.ResponsibleStudent
	}
	return nil
}

func fieldFilled(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}

func validateRequiredFields(part *entity.ManufacturingPart) error {
	required := typeRequiredFields[part.ManufacturingType]
	var missing []string
	for _, field := range required {
		if !fieldFilled(typeFieldValue(part, field)) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return NewValidationError("%s parts require %s", strings.ToUpper(part.ManufacturingType), strings.Join(missing, ", "))
	}
	return nil
}

// autoPromoteIfReady moves a fully specified design straight to the ready
// lane.
func (s *WorkflowService) autoPromoteIfReady(ctx context.Context, part *entity.ManufacturingPart) error {
	if part.Status != entity.PartStatusDesignSubmitted {
		return nil
	}
	if part.CADLink == "" || part.Material == "" || part.Quantity < 1 {
		return nil
	}
	for _, field := range typeRequiredFields[part.ManufacturingType] {
		if !fieldFilled(typeFieldValue(part, field)) {
			return nil
		}
	}
	return s.moveToStatus(ctx, part, entity.PartStatusReady)
}

// applyETA records a completion estimate. An absolute target wins over a
// minutes offset; targets are normalized to UTC and must be in the future.
func applyETA(part *entity.ManufacturingPart, input *ETAInput, actorID uint) error {
	if input == nil {
		return nil
	}
	now := time.Now().UTC()
	etaMinutes := input.ETAMinutes
	if input.ETATarget != nil {
		target := input.ETATarget.UTC()
		if !target.After(now) {
			return NewValidationError("ETA target must be in the future")
		}
		part.ETATarget = &target
		minutes := int(target.Sub(now) / time.Minute)
		if minutes < 1 {
			minutes = 1
		}
		etaMinutes = &minutes
	} else if etaMinutes != nil {
		target := now.Add(time.Duration(*etaMinutes) * time.Minute)
		part.ETATarget = &target
	} else {
		return nil
	}
	part.StudentETAMinutes = etaMinutes
	part.ETANote = input.ETANote
	part.ETAUpdatedAt = &now
	part.ETAByID = &actorID
	return nil
}

func (s *WorkflowService) invalidateSummary(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, summaryCacheKey)
	}
}

// List returns the board for the caller, sorted by stage, priority, lane
// position and age.
func (s *WorkflowService) List(ctx context.Context, actorID uint, filters map[string]string) ([]PartView, error) {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if status := filters["status"]; status != "" && !entity.ValidPartStatus(status) {
		return nil, NewValidationError("Invalid status")
	}
	if mType := filters["manufacturing_type"]; mType != "" && !entity.ValidPartType(mType) {
		return nil, NewValidationError("Invalid manufacturing type")
	}
	if priority := filters["priority"]; priority != "" && !entity.ValidPartPriority(priority) {
		return nil, NewValidationError("Invalid priority")
	}
	parts, err := s.parts.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(parts, func(i, j int) bool {
		a, b := &parts[i], &parts[j]
		if statusOrder[a.Status] != statusOrder[b.Status] {
			return statusOrder[a.Status] < statusOrder[b.Status]
		}
		wa, wb := priorityWeightOf(a.Priority), priorityWeightOf(b.Priority)
		if wa != wb {
			return wa < wb
		}
		if a.LanePosition != b.LanePosition {
			return a.LanePosition < b.LanePosition
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return s.buildViews(ctx, parts, current)
}

func priorityWeightOf(priority string) int {
	if weight, ok := priorityWeight[priority]; ok {
		return weight
	}
	return 1
}

// Create files a new part in the design lane. Leads may pre-assign crews;
// everyone else starts self-assigned.
func (s *WorkflowService) Create(ctx context.Context, actorID uint, input *PartCreateInput) (*PartView, error) {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if input.Quantity < 1 {
		return nil, NewValidationError("Quantity must be at least 1")
	}
	if !entity.ValidPartType(input.ManufacturingType) {
		return nil, NewValidationError("Invalid manufacturing type")
	}
	priority := input.Priority
	if priority == "" {
		priority = entity.PartPriorityNormal
	}
	if !entity.ValidPartPriority(priority) {
		return nil, NewValidationError("Invalid priority")
	}
	partName, err := requireText(input.PartName, "Part name")
	if err != nil {
		return nil, err
	}
	subsystem, err := requireText(input.Subsystem, "Subsystem")
	if err != nil {
		return nil, err
	}
	material, err := requireText(input.Material, "Material")
	if err != nil {
		return nil, err
	}
	cadLink, err := requireText(input.CADLink, "CAD link")
	if err != nil {
		return nil, err
	}

	var assignedStudents, assignedLeads []uint
	if entity.IsLead(current.Role) {
		assignedStudents = dedupeIDs(input.AssignedStudentIDs)
		assignedLeads = dedupeIDs(input.AssignedLeadIDs)
		if err := s.validateAssignmentTargets(ctx, assignedStudents, []string{entity.RoleStudent}); err != nil {
			return nil, err
		}
		if err := s.validateAssignmentTargets(ctx, assignedLeads, []string{entity.RoleLead, entity.RoleAdmin}); err != nil {
			return nil, err
		}
		if !entity.IDList(assignedLeads).Contains(current.ID) {
			assignedLeads = append(assignedLeads, current.ID)
		}
	} else {
		assignedStudents = []uint{current.ID}
		assignedLeads = []uint{}
		if current.Role != entity.RoleStudent {
			assignedLeads = []uint{current.ID}
		}
	}

	lanePosition, err := s.nextLanePosition(ctx, entity.PartStatusDesignSubmitted)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	part := &entity.ManufacturingPart{
		PartName:           partName,
		Subsystem:          subsystem,
		Material:           material,
		Quantity:           input.Quantity,
		ManufacturingType:  input.ManufacturingType,
		CADLink:            cadLink,
		Priority:           priority,
		Status:             entity.PartStatusDesignSubmitted,
		Notes:              input.Notes,
		MaterialStock:      input.MaterialStock,
		CAMLink:            input.CAMLink,
		CAMStudent:         input.CAMStudent,
		CNCOperator:        input.CNCOperator,
		PrinterAssignment:  input.PrinterAssignment,
		SlicerProfile:      input.SlicerProfile,
		FilamentType:       input.FilamentType,
		ToolType:           input.ToolType,
		Dimensions:         input.Dimensions,
		ResponsibleStudent: input.ResponsibleStudent,
		CreatedByID:        current.ID,
		CreatedByName:      current.FullName,
		AssignedStudentIDs: assignedStudents,
		AssignedLeadIDs:    assignedLeads,
		LanePosition:       lanePosition,
		CreatedAt:          now,
		UpdatedAt:          now,
		LastStatusChange:   now,
	}
	if err := validateRequiredFields(part); err != nil {
		return nil, err
	}
	if err := s.autoPromoteIfReady(ctx, part); err != nil {
		return nil, err
	}
	if err := s.parts.Create(ctx, part); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	return s.buildView(ctx, part, current)
}

// Update applies a partial edit. Priority, type, locking and assignment
// changes are lead-only.
func (s *WorkflowService) Update(ctx context.Context, actorID uint, partID uint, input *PartUpdateInput) (*PartView, error) {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return nil, err
	}
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if !canTouch(part, current) {
		return nil, NewPermissionError("Insufficient permissions")
	}
	if input.Quantity != nil && *input.Quantity < 1 {
		return nil, NewValidationError("Quantity must be at least 1")
	}

	if input.PartName != nil {
		value, err := requireText(*input.PartName, "Part name")
		if err != nil {
			return nil, err
		}
		part.PartName = value
	}
	if input.Subsystem != nil {
		value, err := requireText(*input.Subsystem, "Subsystem")
		if err != nil {
			return nil, err
		}
		part.Subsystem = value
	}
	if input.Material != nil {
		value, err := requireText(*input.Material, "Material")
		if err != nil {
			return nil, err
		}
		part.Material = value
	}
	if input.Quantity != nil {
		part.Quantity = *input.Quantity
	}
	if input.CADLink != nil {
		value, err := requireText(*input.CADLink, "CAD link")
		if err != nil {
			return nil, err
		}
		part.CADLink = value
	}
	if input.Notes != nil {
		part.Notes = input.Notes
	}
	if input.MaterialStock != nil {
		part.MaterialStock = input.MaterialStock
	}
	if input.CAMLink != nil {
		part.CAMLink = input.CAMLink
	}
	if input.CAMStudent != nil {
		part.CAMStudent = input.CAMStudent
	}
	if input.CNCOperator != nil {
		part.CNCOperator = input.CNCOperator
	}
	if input.PrinterAssignment != nil {
		part.PrinterAssignment = input.PrinterAssignment
	}
	if input.SlicerProfile != nil {
		part.SlicerProfile = input.SlicerProfile
	}
	if input.FilamentType != nil {
		part.FilamentType = input.FilamentType
	}
	if input.ToolType != nil {
		part.ToolType = input.ToolType
	}
	if input.Dimensions != nil {
		part.Dimensions = input.Dimensions
	}
	if input.ResponsibleStudent != nil {
		part.ResponsibleStudent = input.ResponsibleStudent
	}
	if input.Priority != nil && *input.Priority != "" && entity.IsLead(current.Role) {
		if !entity.ValidPartPriority(*input.Priority) {
			return nil, NewValidationError("Invalid priority")
		}
		part.Priority = *input.Priority
	}
	if input.ManufacturingType != nil && *input.ManufacturingType != "" && entity.IsLead(current.Role) {
		if !entity.ValidPartType(*input.ManufacturingType) {
			return nil, NewValidationError("Invalid manufacturing type")
		}
		part.ManufacturingType = *input.ManufacturingType
	}
	if input.StatusLocked != nil {
		if !entity.IsLead(current.Role) {
			return nil, NewPermissionError("Only leads can lock workflow state")
		}
		part.StatusLocked = *input.StatusLocked
		if !*input.StatusLocked {
			part.LockReason = nil
		}
	}
	if input.LockReason != nil {
		if !entity.IsLead(current.Role) {
			return nil, NewPermissionError("Only leads can set lock reason")
		}
		part.LockReason = input.LockReason
		part.StatusLocked = true
	}
	if input.AssignedStudentIDs != nil {
		if !entity.IsLead(current.Role) {
			return nil, NewPermissionError("Only leads can assign students")
		}
		studentIDs := dedupeIDs(*input.AssignedStudentIDs)
		if err := s.validateAssignmentTargets(ctx, studentIDs, []string{entity.RoleStudent}); err != nil {
			return nil, err
		}
		part.AssignedStudentIDs = studentIDs
	}
	if input.AssignedLeadIDs != nil {
		if !entity.IsLead(current.Role) {
			return nil, NewPermissionError("Only leads can assign leads")
		}
		leadIDs := dedupeIDs(*input.AssignedLeadIDs)
		if err := s.validateAssignmentTargets(ctx, leadIDs, []string{entity.RoleLead, entity.RoleAdmin}); err != nil {
			return nil, err
		}
		part.AssignedLeadIDs = leadIDs
	}

	if err := validateRequiredFields(part); err != nil {
		return nil, err
	}
	if err := s.autoPromoteIfReady(ctx, part); err != nil {
		return nil, err
	}
	part.UpdatedAt = time.Now().UTC()
	if err := s.parts.Update(ctx, part); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	return s.buildView(ctx, part, current)
}

// ChangeStatus moves a part across the board. Locks stop non-leads, and
// non-leads may only move between adjacent stages.
func (s *WorkflowService) ChangeStatus(ctx context.Context, actorID uint, partID uint, target string) (*PartView, error) {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return nil, err
	}
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if !entity.ValidPartStatus(target) {
		return nil, NewValidationError("Invalid status")
	}
	if part.Status == target {
		return s.buildView(ctx, part, current)
	}
	if part.StatusLocked && !entity.IsLead(current.Role) {
		return nil, NewPermissionError("This part is locked by a lead")
	}
	if !canTouch(part, current) {
		return nil, NewPermissionError("Insufficient permissions to move this part")
	}
	if !entity.IsLead(current.Role) {
		allowed := false
		for _, next := range studentTransitions[part.Status] {
			if next == target {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, NewPermissionError("Students can only move to adjacent stages")
		}
	}
	if err := s.moveToStatus(ctx, part, target); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if target == entity.PartStatusReady && entity.IsLead(current.Role) {
		part.ApprovedByID = &current.ID
		part.ApprovedAt = &now
	}
	if target == entity.PartStatusInProgress && part.ActualStart == nil {
		part.ActualStart = &now
	}
	if target == entity.PartStatusCompleted {
		part.ActualComplete = &now
	}
	part.UpdatedAt = now
	if err := s.parts.Update(ctx, part); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	return s.buildView(ctx, part, current)
}

// Claim appends the caller to the student assignment set. Claiming twice
// is a no-op; an optional ETA rides along.
func (s *WorkflowService) Claim(ctx context.Context, actorID uint, partID uint, input *ETAInput) (*PartView, error) {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return nil, err
	}
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if !part.AssignedStudentIDs.Contains(current.ID) {
		part.AssignedStudentIDs = append(part.AssignedStudentIDs, current.ID)
	}
	if err := applyETA(part, input, current.ID); err != nil {
		return nil, err
	}
	part.UpdatedAt = time.Now().UTC()
	if err := s.parts.Update(ctx, part); err != nil {
		return nil, err
	}
	return s.buildView(ctx, part, current)
}

// Unclaim removes the caller from the assignment set and drops their ETA
// if they were the one who set it.
func (s *WorkflowService) Unclaim(ctx context.Context, actorID uint, partID uint) (*PartView, error) {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return nil, err
	}
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part.AssignedStudentIDs.Contains(current.ID) {
		remaining := make(entity.IDList, 0, len(part.AssignedStudentIDs))
		for _, id := range part.AssignedStudentIDs {
			if id != current.ID {
				remaining = append(remaining, id)
			}
		}
		part.AssignedStudentIDs = remaining
		if part.ETAByID != nil && *part.ETAByID == current.ID {
			part.StudentETAMinutes = nil
			part.ETANote = nil
			part.ETAUpdatedAt = nil
			part.ETAByID = nil
		}
		part.UpdatedAt = time.Now().UTC()
		if err := s.parts.Update(ctx, part); err != nil {
			return nil, err
		}
	}
	return s.buildView(ctx, part, current)
}

// UpdateETA revises the completion estimate; only assignees and leads may.
func (s *WorkflowService) UpdateETA(ctx context.Context, actorID uint, partID uint, input *ETAInput) (*PartView, error) {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return nil, err
	}
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if !entity.IsLead(current.Role) && !part.AssignedStudentIDs.Contains(current.ID) {
		return nil, NewPermissionError("Only assignees or leads can set ETA")
	}
	if err := applyETA(part, input, current.ID); err != nil {
		return nil, err
	}
	part.UpdatedAt = time.Now().UTC()
	if err := s.parts.Update(ctx, part); err != nil {
		return nil, err
	}
	return s.buildView(ctx, part, current)
}

// AttachFiles stores uploaded CAD and CAM files against the part.
func (s *WorkflowService) AttachFiles(ctx context.Context, actorID uint, partID uint, cadName string, cad io.Reader, cadSize int64, camName string, cam io.Reader, camSize int64) (*PartView, error) {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return nil, err
	}
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if !canTouch(part, current) {
		return nil, NewPermissionError("Insufficient permissions to upload files")
	}
	if cad == nil && cam == nil {
		return nil, NewValidationError("Upload at least one file")
	}
	if cad != nil {
		objectName := fmt.Sprintf("manufacturing/%d/cad_%s", part.ID, filepath.Base(cadName))
		if err := s.store.Put(ctx, objectName, contentTypeFor(cadName), cad, cadSize); err != nil {
			return nil, err
		}
		part.CADFileName = &cadName
		part.CADFilePath = &objectName
	}
	if cam != nil {
		objectName := fmt.Sprintf("manufacturing/%d/cam_%s", part.ID, filepath.Base(camName))
		if err := s.store.Put(ctx, objectName, contentTypeFor(camName), cam, camSize); err != nil {
			return nil, err
		}
		part.CAMFileName = &camName
		part.CAMFilePath = &objectName
	}
	part.UpdatedAt = time.Now().UTC()
	if err := s.parts.Update(ctx, part); err != nil {
		return nil, err
	}
	return s.buildView(ctx, part, current)
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// OpenFile streams a previously uploaded part file.
func (s *WorkflowService) OpenFile(ctx context.Context, actorID uint, partID uint, kind string) (io.ReadCloser, string, error) {
	if _, err := s.caller(ctx, actorID); err != nil {
		return nil, "", err
	}
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return nil, "", err
	}
	var path, name *string
	switch kind {
	case "cad":
		path, name = part.CADFilePath, part.CADFileName
	case "cam":
		path, name = part.CAMFilePath, part.CAMFileName
	default:
		return nil, "", NewValidationError("Unknown file kind")
	}
	if path == nil || name == nil {
		return nil, "", NewNotFoundError("File not uploaded")
	}
	reader, err := s.store.Get(ctx, *path)
	if err != nil {
		return nil, "", err
	}
	return reader, *name, nil
}

// Delete removes a part and its uploads; creator or lead only.
func (s *WorkflowService) Delete(ctx context.Context, actorID uint, partID uint) error {
	current, err := s.caller(ctx, actorID)
	if err != nil {
		return err
	}
	part, err := s.findPart(ctx, partID)
	if err != nil {
		return err
	}
	if !entity.IsLead(current.Role) && part.CreatedByID != current.ID {
		return NewPermissionError("Insufficient permissions to delete this part")
	}
	if err := s.parts.Delete(ctx, partID); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	_ = s.store.RemovePrefix(ctx, fmt.Sprintf("manufacturing/%d/", partID))
	return nil
}

// GetSummary returns board totals, served from cache when fresh.
func (s *WorkflowService) GetSummary(ctx context.Context) (*Summary, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, summaryCacheKey).Result(); err == nil {
			var summary Summary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	rows, err := s.parts.StatusPriorityRows(ctx)
	if err != nil {
		return nil, err
	}
	summary := &Summary{ByStatus: make(map[string]int, len(entity.PartStatuses))}
	for _, status := range entity.PartStatuses {
		summary.ByStatus[status] = 0
	}
	for _, row := range rows {
		summary.ByStatus[row.Status]++
		if row.Priority == entity.PartPriorityUrgent {
			summary.Urgent++
		}
		summary.Total++
	}

	if s.rdb != nil {
		if data, err := json.Marshal(summary); err == nil {
			s.rdb.Set(ctx, summaryCacheKey, data, summaryCacheTTL)
		}
	}
	return summary, nil
}

// Lookups returns every account for the assignment picker.
func (s *WorkflowService) Lookups(ctx context.Context) ([]LookupUser, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]LookupUser, 0, len(users))
	for _, user := range users {
		result = append(result, LookupUser{ID: user.ID, Name: user.FullName, Role: user.Role})
	}
	return result, nil
}

func (s *WorkflowService) findPart(ctx context.Context, partID uint) (*entity.ManufacturingPart, error) {
	part, err := s.parts.FindByID(ctx, partID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("Part not found")
		}
		return nil, err
	}
	return part, nil
}

func (s *WorkflowService) buildView(ctx context.Context, part *entity.ManufacturingPart, current *entity.User) (*PartView, error) {
	views, err := s.buildViews(ctx, []entity.ManufacturingPart{*part}, current)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *WorkflowService) buildViews(ctx context.Context, parts []entity.ManufacturingPart, current *entity.User) ([]PartView, error) {
	idSet := make(map[uint]bool)
	for i := range parts {
		part := &parts[i]
		idSet[part.CreatedByID] = true
		if part.ApprovedByID != nil {
			idSet[*part.ApprovedByID] = true
		}
		if part.ETAByID != nil {
			idSet[*part.ETAByID] = true
		}
		for _, id := range part.AssignedStudentIDs {
			idSet[id] = true
		}
		for _, id := range part.AssignedLeadIDs {
			idSet[id] = true
		}
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uint]entity.User, len(users))
	for _, user := range users {
		userMap[user.ID] = user
	}

	canAssign := entity.IsLead(current.Role)
	views := make([]PartView, 0, len(parts))
	for i := range parts {
		part := &parts[i]
		canEdit := canAssign || canTouch(part, current)
		canMove := canEdit && (canAssign || !part.StatusLocked)

		createdBy := Assignment{ID: part.CreatedByID, Name: part.CreatedByName, Role: "unknown"}
		if user, ok := userMap[part.CreatedByID]; ok {
			createdBy = Assignment{ID: user.ID, Name: user.FullName, Role: user.Role}
		}
		views = append(views, PartView{
			ID:                 part.ID,
			PartName:           part.PartName,
			Subsystem:          part.Subsystem,
			Material:           part.Material,
			Quantity:           part.Quantity,
			ManufacturingType:  part.ManufacturingType,
			CADLink:            part.CADLink,
			CAMLink:            part.CAMLink,
			CAMStudent:         part.CAMStudent,
			CNCOperator:        part.CNCOperator,
			MaterialStock:      part.MaterialStock,
			PrinterAssignment:  part.PrinterAssignment,
			SlicerProfile:      part.SlicerProfile,
			FilamentType:       part.FilamentType,
			ToolType:           part.ToolType,
			Dimensions:         part.Dimensions,
			ResponsibleStudent: part.ResponsibleStudent,
			Notes:              part.Notes,
			Priority:           part.Priority,
			Status:             part.Status,
			StatusLabel:        StatusLabels[part.Status],
			StatusLocked:       part.StatusLocked,
			LockReason:         part.LockReason,
			LanePosition:       part.LanePosition,
			CreatedAt:          part.CreatedAt,
			UpdatedAt:          part.UpdatedAt,
			LastStatusChange:   part.LastStatusChange,
			CreatedBy:          createdBy,
			ApprovedBy:         assignmentFor(part.ApprovedByID, userMap),
			AssignedStudents:   assignmentsFor(part.AssignedStudentIDs, userMap),
			AssignedLeads:      assignmentsFor(part.AssignedLeadIDs, userMap),
			CanEdit:            canEdit,
			CanMove:            canMove,
			CanAssign:          canAssign,
			StudentETAMinutes:  part.StudentETAMinutes,
			ETANote:            part.ETANote,
			ETAUpdatedAt:       part.ETAUpdatedAt,
			ETABy:              assignmentFor(part.ETAByID, userMap),
			ETATarget:          part.ETATarget,
			ActualStart:        part.ActualStart,
			ActualComplete:     part.ActualComplete,
			CADFileName:        part.CADFileName,
			CADFileURL:         fileURL(part.ID, "cad", part.CADFilePath),
			CAMFileName:        part.CAMFileName,
			CAMFileURL:         fileURL(part.ID, "cam", part.CAMFilePath),
		})
	}
	return views, nil
}

func assignmentFor(id *uint, userMap map[uint]entity.User) *Assignment {
	if id == nil {
		return nil
	}
	user, ok := userMap[*id]
	if !ok {
		return nil
	}
	return &Assignment{ID: user.ID, Name: user.FullName, Role: user.Role}
}

func assignmentsFor(ids entity.IDList, userMap map[uint]entity.User) []Assignment {
	assignments := make([]Assignment, 0, len(ids))
	for _, id := range ids {
		if user, ok := userMap[id]; ok {
			assignments = append(assignments, Assignment{ID: user.ID, Name: user.FullName, Role: user.Role})
		}
	}
	return assignments
}

func fileURL(partID uint, kind string, path *string) *string {
	if path == nil {
		return nil
	}
	url := fmt.Sprintf("/api/manufacturing/parts/%d/files/%s", partID, kind)
	return &url
}
