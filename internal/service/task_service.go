package service

import (
	"context"
	"log"
	"mime/multipart"
	"net/url"
	"strings"
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
	"taskhub/internal/storage"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title        string
	Description  string
	Status       model.Status
	Priority     model.Priority
	DueDate      *time.Time
	AssignedToID *uint
}

// TaskUpdate carries optional field changes; nil means leave unchanged.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *model.Status
	Priority     *model.Priority
	DueDate      *time.Time
	AssignedToID *uint
}

// TaskService wraps task business logic: access control, query-scoped
// listing and the attachment lifecycle.
type TaskService struct {
	tasks    *repository.TaskRepository
	users    *repository.UserRepository
	store    *storage.Store
	notifier notify.Notifier
	authz    auth.Authorizer
}

func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository, store *storage.Store, notifier notify.Notifier) *TaskService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &TaskService{tasks: tasks, users: users, store: store, notifier: notifier}
}

// Create stores a task owned by the caller, with up to three attached
// documents. The file-count limit is checked before anything is written.
func (s *TaskService) Create(ctx context.Context, caller *model.User, in TaskInput, files []*multipart.FileHeader) (*model.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validationf("title is required")
	}
	if in.Status == "" {
		in.Status = model.StatusPending
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Status.Valid() {
		return nil, apperr.Validationf("invalid status %q", in.Status)
	}
	if !in.Priority.Valid() {
		return nil, apperr.Validationf("invalid priority %q", in.Priority)
	}
	if err := s.checkAssignee(ctx, in.AssignedToID); err != nil {
		return nil, err
	}

	docs, err := s.saveUploads(files)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Status:       in.Status,
		Priority:     in.Priority,
		DueDate:      in.DueDate,
		UserID:       caller.ID,
		AssignedToID: in.AssignedToID,
		Documents:    docs,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		s.removeFiles(docs)
		return nil, err
	}

	created, err := s.tasks.FindByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	s.notifyAssigned(ctx, created)
	return created, nil
}

// List translates the query parameters and executes them under the
// caller's visibility scope.
func (s *TaskService) List(ctx context.Context, caller *model.User, params url.Values) ([]model.Task, error) {
	q, err := repository.ParseTaskQuery(params)
	if err != nil {
		return nil, err
	}
	return s.tasks.List(ctx, caller, q)
}

// Get fetches a single task. Missing tasks 404 before authorization is
// evaluated.
func (s *TaskService) Get(ctx context.Context, caller *model.User, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.Can(caller, auth.ActionView, task) {
		return nil, apperr.Forbiddenf("cannot view task %d", id)
	}
	return task, nil
}

// Update modifies a task. When new files are attached, every previously
// stored file is deleted before the new attachment list replaces the old
// one; deletion failures are logged and do not abort the update.
func (s *TaskService) Update(ctx context.Context, caller *model.User, id uint, in TaskUpdate, files []*multipart.FileHeader) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.Can(caller, auth.ActionEdit, task) {
		return nil, apperr.Forbiddenf("cannot update task %d", id)
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperr.Validationf("title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validationf("invalid status %q", *in.Status)
		}
		updates["status"] = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, apperr.Validationf("invalid priority %q", *in.Priority)
		}
		updates["priority"] = *in.Priority
	}
	if in.DueDate != nil {
		updates["due_date"] = *in.DueDate
	}
	assigneeChanged := false
	if in.AssignedToID != nil {
		if err := s.checkAssignee(ctx, in.AssignedToID); err != nil {
			return nil, err
		}
		assigneeChanged = task.AssignedToID == nil || *task.AssignedToID != *in.AssignedToID
		updates["assigned_to_id"] = *in.AssignedToID
	}

	if len(files) > 0 {
		docs, err := s.saveUploads(files)
		if err != nil {
			return nil, err
		}
		s.removeFiles(task.Documents)
		if err := s.tasks.ReplaceDocuments(ctx, task.ID, docs); err != nil {
			s.removeFiles(docs)
			return nil, err
		}
	}

	if err := s.tasks.Update(ctx, task, updates); err != nil {
		return nil, err
	}

	updated, err := s.tasks.FindByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if assigneeChanged {
		s.notifyAssigned(ctx, updated)
	}
	return updated, nil
}

// Delete removes a task and its stored files. File cleanup is
// best-effort; a failed unlink never blocks the record deletion.
func (s *TaskService) Delete(ctx context.Context, caller *model.User, id uint) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.authz.Can(caller, auth.ActionEdit, task) {
		return apperr.Forbiddenf("cannot delete task %d", id)
	}

	s.removeFiles(task.Documents)
	return s.tasks.Delete(ctx, id)
}

// Document locates an attachment by its id or stored filename and
// returns the record with its on-disk path, after the read check.
func (s *TaskService) Document(ctx context.Context, caller *model.User, taskID uint, ref string) (*model.Document, string, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, "", err
	}
	if !s.authz.Can(caller, auth.ActionView, task) {
		return nil, "", apperr.Forbiddenf("cannot view task %d", taskID)
	}

	for i := range task.Documents {
		doc := &task.Documents[i]
		if doc.ID == ref || doc.Filename == ref {
			path, err := s.store.Open(doc.Filename)
			if err != nil {
				return nil, "", err
			}
			return doc, path, nil
		}
	}
	return nil, "", apperr.NotFoundf("document %s", ref)
}

// saveUploads persists the uploaded files, cleaning up everything
// already written when one of them fails.
func (s *TaskService) saveUploads(files []*multipart.FileHeader) ([]model.Document, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > storage.MaxDocuments {
		return nil, apperr.Uploadf("at most %d documents per task", storage.MaxDocuments)
	}

	docs := make([]model.Document, 0, len(files))
	for _, fh := range files {
		doc, err := s.store.Save(fh)
		if err != nil {
			s.removeFiles(docs)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *TaskService) removeFiles(docs []model.Document) {
	for _, doc := range docs {
		if err := s.store.Remove(doc.Filename); err != nil {
			log.Printf("task cleanup: %v", err)
		}
	}
}

func (s *TaskService) checkAssignee(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.users.FindByID(ctx, *id); err != nil {
		return apperr.Validationf("assignee %d does not exist", *id)
	}
	return nil
}

func (s *TaskService) notifyAssigned(ctx context.Context, task *model.Task) {
	if task.AssignedToID == nil {
		return
	}
	// The preloaded assignee carries only the public projection; the
	// notifier needs the full record for the chat id.
	assignee, err := s.users.FindByID(ctx, *task.AssignedToID)
	if err != nil {
		log.Printf("notify assignment: %v", err)
		return
	}
	if err := s.notifier.TaskAssigned(ctx, task, assignee); err != nil {
		log.Printf("notify assignment: %v", err)
	}
}
