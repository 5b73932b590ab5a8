package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/dbx"
	"github.com/dmitrijs2005/labbook/internal/server/models"
	attachmentsrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/attachments"
	experimentsrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/experiments"
	notesrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/notes"
	projectsrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/projects"
	refreshtokensrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/refreshtokens"
	resettokensrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/resettokens"
	usersrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/users"
)

// --- shared in-memory fakes for the service tests ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func userFixture(username, email string) *models.User {
	return &models.User{Username: username, Email: email, PasswordHash: []byte("x")}
}

type memUsersRepo struct {
	seq   int
	users map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{users: make(map[string]*models.User)}
}

func (r *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, common.ErrDuplicateUser
		}
	}
	r.seq++
	c := *u
	c.ID = fmt.Sprintf("u%d", r.seq)
	c.CreatedAt = time.Now()
	r.users[c.ID] = &c
	return &c, nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsersRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	existing, ok := r.users[u.ID]
	if !ok {
		return common.ErrNotFound
	}
	existing.DisplayName = u.DisplayName
	existing.Bio = u.Bio
	existing.Storage = u.Storage
	existing.SMTP = u.SMTP
	return nil
}

func (r *memUsersRepo) UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error {
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.AvatarURL = avatarURL
	return nil
}

func (r *memUsersRepo) UpdatePasswordHash(ctx context.Context, id string, hash []byte) error {
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type memRefreshRepo struct {
	tokens map[string]*models.RefreshToken
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *memRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *memRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return t, nil
}

func (r *memRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *memRefreshRepo) DeleteForUser(ctx context.Context, userID string) error {
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

type memResetRepo struct {
	tokens map[string]*models.ResetToken
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{tokens: make(map[string]*models.ResetToken)}
}

func (r *memResetRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.tokens[token] = &models.ResetToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *memResetRepo) Find(ctx context.Context, token string) (*models.ResetToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return t, nil
}

func (r *memResetRepo) Delete(ctx context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

type memProjectsRepo struct {
	seq      int
	projects map[string]*models.Project
}

func newMemProjectsRepo() *memProjectsRepo {
	return &memProjectsRepo{projects: make(map[string]*models.Project)}
}

func (r *memProjectsRepo) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	r.seq++
	c := *p
	c.ID = fmt.Sprintf("p%d", r.seq)
	c.CreatedAt = time.Now()
	r.projects[c.ID] = &c
	return &c, nil
}

func (r *memProjectsRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *memProjectsRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range r.projects {
		if p.OwnerID == ownerID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memProjectsRepo) Update(ctx context.Context, p *models.Project) error {
	existing, ok := r.projects[p.ID]
	if !ok {
		return common.ErrNotFound
	}
	existing.Title = p.Title
	existing.Description = p.Description
	return nil
}

func (r *memProjectsRepo) Delete(ctx context.Context, id string) error {
	delete(r.projects, id)
	return nil
}

type memExperimentsRepo struct {
	seq         int
	experiments map[string]*models.Experiment
}

func newMemExperimentsRepo() *memExperimentsRepo {
	return &memExperimentsRepo{experiments: make(map[string]*models.Experiment)}
}

func (r *memExperimentsRepo) Create(ctx context.Context, e *models.Experiment) (*models.Experiment, error) {
	r.seq++
	c := *e
	c.ID = fmt.Sprintf("e%d", r.seq)
	c.CreatedAt = time.Now()
	r.experiments[c.ID] = &c
	return &c, nil
}

func (r *memExperimentsRepo) GetByID(ctx context.Context, id string) (*models.Experiment, error) {
	e, ok := r.experiments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r *memExperimentsRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Experiment, error) {
	var out []*models.Experiment
	for _, e := range r.experiments {
		if e.ProjectID == projectID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memExperimentsRepo) Update(ctx context.Context, e *models.Experiment) error {
	existing, ok := r.experiments[e.ID]
	if !ok {
		return common.ErrNotFound
	}
	existing.Title = e.Title
	existing.Status = e.Status
	return nil
}

func (r *memExperimentsRepo) Delete(ctx context.Context, id string) error {
	delete(r.experiments, id)
	return nil
}

type memNotesRepo struct {
	seq   int
	notes map[string]*models.Note
}

func newMemNotesRepo() *memNotesRepo {
	return &memNotesRepo{notes: make(map[string]*models.Note)}
}

func (r *memNotesRepo) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	r.seq++
	c := *n
	c.ID = fmt.Sprintf("n%d", r.seq)
	c.CreatedAt = time.Now()
	r.notes[c.ID] = &c
	return &c, nil
}

func (r *memNotesRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (r *memNotesRepo) ListByExperiment(ctx context.Context, experimentID string) ([]*models.Note, error) {
	var out []*models.Note
	for _, n := range r.notes {
		if n.ExperimentID == experimentID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memNotesRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Note, error) {
	var out []*models.Note
	for _, n := range r.notes {
		if n.ProjectID == projectID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memNotesRepo) Update(ctx context.Context, n *models.Note) error {
	existing, ok := r.notes[n.ID]
	if !ok {
		return common.ErrNotFound
	}
	existing.Title = n.Title
	existing.Body = n.Body
	return nil
}

func (r *memNotesRepo) Delete(ctx context.Context, id string) error {
	delete(r.notes, id)
	return nil
}

type memAttachmentsRepo struct {
	seq         int
	attachments map[string]*models.Attachment
}

func newMemAttachmentsRepo() *memAttachmentsRepo {
	return &memAttachmentsRepo{attachments: make(map[string]*models.Attachment)}
}

func (r *memAttachmentsRepo) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	r.seq++
	c := *a
	c.ID = fmt.Sprintf("a%d", r.seq)
	c.CreatedAt = time.Now()
	r.attachments[c.ID] = &c
	return &c, nil
}

func (r *memAttachmentsRepo) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	a, ok := r.attachments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *memAttachmentsRepo) ListByNote(ctx context.Context, noteID string) ([]*models.Attachment, error) {
	var out []*models.Attachment
	for _, a := range r.attachments {
		if a.NoteID == noteID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memAttachmentsRepo) Delete(ctx context.Context, id string) error {
	delete(r.attachments, id)
	return nil
}

// fakeRepoManager hands out the same in-memory repositories regardless of
// the DBTX, which is exactly what the services need for unit tests.
type fakeRepoManager struct {
	users       *memUsersRepo
	refresh     *memRefreshRepo
	reset       *memResetRepo
	projects    *memProjectsRepo
	experiments *memExperimentsRepo
	notes       *memNotesRepo
	attachments *memAttachmentsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:       newMemUsersRepo(),
		refresh:     newMemRefreshRepo(),
		reset:       newMemResetRepo(),
		projects:    newMemProjectsRepo(),
		experiments: newMemExperimentsRepo(),
		notes:       newMemNotesRepo(),
		attachments: newMemAttachmentsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.refresh
}
func (m *fakeRepoManager) ResetTokens(db dbx.DBTX) resettokensrepo.Repository { return m.reset }
func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository       { return m.projects }
func (m *fakeRepoManager) Experiments(db dbx.DBTX) experimentsrepo.Repository {
	return m.experiments
}
func (m *fakeRepoManager) Notes(db dbx.DBTX) notesrepo.Repository             { return m.notes }
func (m *fakeRepoManager) Attachments(db dbx.DBTX) attachmentsrepo.Repository { return m.attachments }

// fakeStore is an in-memory storage.Store.
type fakeStore struct {
	objects map[string][]byte
	uploads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	s.uploads++
	url := fmt.Sprintf("/files/%d-%s", s.uploads, filename)
	s.objects[url] = data
	return url, nil
}

func (s *fakeStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, ok := s.objects[url]
	if !ok {
		return nil, common.ErrStorageNotFound
	}
	return data, nil
}

func (s *fakeStore) Delete(ctx context.Context, url string) bool {
	if _, ok := s.objects[url]; !ok {
		return false
	}
	delete(s.objects, url)
	return true
}
