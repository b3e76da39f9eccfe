package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/storage"
)

// JobService runs the CNC and printing shop queues.
type JobService struct {
	jobs  *repository.JobRepository
	users *repository.UserRepository
	store *storage.FileStore
}

func NewJobService(jobs *repository.JobRepository, users *repository.UserRepository, store *storage.FileStore) *JobService {
	return &JobService{jobs: jobs, users: users, store: store}
}

// JobSubmitInput is a new queue entry with its uploaded file.
type JobSubmitInput struct {
	Shop      string
	PartName  string
	OwnerName string
	Notes     *string
	FileName  string
	File      io.Reader
	FileSize  int64
}

// JobView is a queue entry with the claimer resolved to a name.
type JobView struct {
	ID            uint       `json:"id"`
	Shop          string     `json:"shop"`
	PartName      string     `json:"part_name"`
	OwnerName     string     `json:"owner_name"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes"`
	FileName      string     `json:"file_name"`
	FileURL       string     `json:"file_url"`
	CreatedAt     time.Time  `json:"created_at"`
	QueuePosition int        `json:"queue_position"`
	ClaimedByID   *uint      `json:"claimed_by_id"`
	ClaimedByName *string    `json:"claimed_by_name"`
	ClaimedAt     *time.Time `json:"claimed_at"`
}

// Submit stores the file and appends the job to the back of its shop queue.
func (s *JobService) Submit(ctx context.Context, actorID uint, input *JobSubmitInput) (*JobView, error) {
	if !entity.ValidShop(input.Shop) {
		return nil, NewValidationError("Invalid shop type")
	}
	partName := strings.TrimSpace(input.PartName)
	if partName == "" {
		return nil, NewValidationError("Part name is required")
	}
	ownerName := strings.TrimSpace(input.OwnerName)
	if ownerName == "" {
		return nil, NewValidationError("Owner name is required")
	}
	if input.File == nil || input.FileName == "" {
		return nil, NewValidationError("A job file is required")
	}

	sanitized := strings.ReplaceAll(partName, " ", "_")
	objectName := fmt.Sprintf("jobs/%s/%s_%s", input.Shop, sanitized, filepath.Base(input.FileName))
	if err := s.store.Put(ctx, objectName, contentTypeFor(input.FileName), input.File, input.FileSize); err != nil {
		return nil, err
	}

	maxPos, err := s.jobs.MaxQueuePosition(ctx, input.Shop)
	if err != nil {
		return nil, err
	}

	job := &entity.ShopJob{
		Shop:          input.Shop,
		PartName:      partName,
		OwnerName:     ownerName,
		SubmitterID:   &actorID,
		Notes:         input.Notes,
		FileName:      input.FileName,
		FilePath:      objectName,
		Status:        entity.JobStatusSubmitted,
		CreatedAt:     time.Now().UTC(),
		QueuePosition: maxPos + 1,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return s.toView(ctx, job), nil
}

// List returns jobs in queue order, optionally for one shop.
func (s *JobService) List(ctx context.Context, shop string) ([]JobView, error) {
	if shop != "" && !entity.ValidShop(shop) {
		return nil, NewValidationError("Invalid shop type")
	}
	jobs, err := s.jobs.FindAll(ctx, shop)
	if err != nil {
		return nil, err
	}
	views := make([]JobView, 0, len(jobs))
	for i := range jobs {
		views = append(views, *s.toView(ctx, &jobs[i]))
	}
	return views, nil
}

// UpdateStatus moves a job through review; lead only. An optional note is
// appended to the job's notes.
func (s *JobService) UpdateStatus(ctx context.Context, actorID uint, jobID uint, status string, note *string) (*JobView, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !entity.IsLead(actor.Role) {
		return nil, NewPermissionError("Insufficient permissions")
	}
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !entity.ValidJobStatus(status) {
		return nil, NewValidationError("Invalid status")
	}
	job.Status = status
	if note != nil && *note != "" {
		appended := *note
		if job.Notes != nil {
			appended = *job.Notes + "\n" + appended
		}
		job.Notes = &appended
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return s.toView(ctx, job), nil
}

// Delete removes a job; leads always, submitters their own.
func (s *JobService) Delete(ctx context.Context, actorID uint, jobID uint) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !entity.IsLead(actor.Role) && (job.SubmitterID == nil || *job.SubmitterID != actor.ID) {
		return NewPermissionError("Not allowed to remove this job")
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return err
	}
	_ = s.store.Remove(ctx, job.FilePath)
	return nil
}

// Reorder rewrites queue positions to match ordered IDs; lead only via
// routing. All jobs must share the shop and none may be claimed.
func (s *JobService) Reorder(ctx context.Context, shop string, orderedIDs []uint) ([]JobView, error) {
	if !entity.ValidShop(shop) {
		return nil, NewValidationError("Invalid shop type")
	}
	if len(orderedIDs) == 0 {
		return nil, NewValidationError("ordered_ids cannot be empty")
	}
	jobs, err := s.jobs.FindByIDs(ctx, orderedIDs)
	if err != nil {
		return nil, err
	}
	if len(jobs) != len(orderedIDs) {
		return nil, NewNotFoundError("One or more jobs not found")
	}
	jobMap := make(map[uint]*entity.ShopJob, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		if job.Shop != shop {
			return nil, NewValidationError("All jobs must belong to the same shop")
		}
		if job.ClaimedByID != nil {
			return nil, NewValidationError("Cannot reorder claimed jobs")
		}
		jobMap[job.ID] = job
	}
	position := 1
	for _, id := range orderedIDs {
		job := jobMap[id]
		job.QueuePosition = position
		if err := s.jobs.Update(ctx, job); err != nil {
			return nil, err
		}
		position++
	}
	return s.List(ctx, shop)
}

// Claim marks the caller as working the job. Claimed jobs refuse a second
// claimer.
func (s *JobService) Claim(ctx context.Context, actorID uint, jobID uint) (*JobView, error) {
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClaimedByID != nil {
		return nil, NewConflictError("Job already claimed")
	}
	now := time.Now().UTC()
	job.ClaimedByID = &actorID
	job.ClaimedAt = &now
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return s.toView(ctx, job), nil
}

// Unclaim releases the job; leads may release anyone's claim.
func (s *JobService) Unclaim(ctx context.Context, actorID uint, jobID uint) (*JobView, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClaimedByID == nil {
		return nil, NewConflictError("Job is not claimed")
	}
	if !entity.IsLead(actor.Role) && *job.ClaimedByID != actor.ID {
		return nil, NewPermissionError("Not allowed to unclaim this job")
	}
	job.ClaimedByID = nil
	job.ClaimedAt = nil
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return s.toView(ctx, job), nil
}

// OpenFile streams the job's uploaded file.
func (s *JobService) OpenFile(ctx context.Context, jobID uint) (io.ReadCloser, string, error) {
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, "", err
	}
	reader, err := s.store.Get(ctx, job.FilePath)
	if err != nil {
		return nil, "", err
	}
	return reader, job.FileName, nil
}

func (s *JobService) actor(ctx context.Context, actorID uint) (*entity.User, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewPermissionError("account no longer exists")
		}
		return nil, err
	}
	return actor, nil
}

func (s *JobService) findJob(ctx context.Context, jobID uint) (*entity.ShopJob, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("Job not found")
		}
		return nil, err
	}
	return job, nil
}

func (s *JobService) toView(ctx context.Context, job *entity.ShopJob) *JobView {
	view := &JobView{
		ID:            job.ID,
		Shop:          job.Shop,
		PartName:      job.PartName,
		OwnerName:     job.OwnerName,
		Status:        job.Status,
		Notes:         job.Notes,
		FileName:      job.FileName,
		FileURL:       fmt.Sprintf("/api/jobs/%d/file", job.ID),
		CreatedAt:     job.CreatedAt,
		QueuePosition: job.QueuePosition,
		ClaimedByID:   job.ClaimedByID,
		ClaimedAt:     job.ClaimedAt,
	}
	if job.ClaimedByID != nil {
		if user, err := s.users.FindByID(ctx, *job.ClaimedByID); err == nil {
			view.ClaimedByName = &user.FullName
		}
	}
	return view
}
