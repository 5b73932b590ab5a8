package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/dbx"
	"github.com/dmitrijs2005/labbook/internal/logging"
	"github.com/dmitrijs2005/labbook/internal/server/config"
	"github.com/dmitrijs2005/labbook/internal/server/mail"
	"github.com/dmitrijs2005/labbook/internal/server/models"
	attachmentsrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/attachments"
	experimentsrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/experiments"
	notesrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/notes"
	projectsrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/projects"
	refreshtokensrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/refreshtokens"
	resettokensrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/labbook/internal/server/repositories/users"
	"github.com/dmitrijs2005/labbook/internal/server/services"
	"github.com/dmitrijs2005/labbook/internal/server/storage"
)

// In-memory repositories backing the handler tests. They behave like the
// postgres implementations as far as the services can tell: generated ids,
// ErrNotFound for missing rows, ErrDuplicateUser on unique collisions.

type memUsers struct {
	seq  int
	rows map[string]*models.User
}

func (r *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, e := range r.rows {
		if e.Username == u.Username || e.Email == u.Email {
			return nil, common.ErrDuplicateUser
		}
	}
	r.seq++
	c := *u
	c.ID = fmt.Sprintf("u%d", r.seq)
	c.CreatedAt = time.Now()
	r.rows[c.ID] = &c
	return &c, nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.rows {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUsers) UpdateProfile(ctx context.Context, u *models.User) error {
	e, ok := r.rows[u.ID]
	if !ok {
		return common.ErrNotFound
	}
	e.DisplayName = u.DisplayName
	e.Bio = u.Bio
	e.Storage = u.Storage
	e.SMTP = u.SMTP
	return nil
}

func (r *memUsers) UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error {
	e, ok := r.rows[id]
	if !ok {
		return common.ErrNotFound
	}
	e.AvatarURL = avatarURL
	return nil
}

func (r *memUsers) UpdatePasswordHash(ctx context.Context, id string, hash []byte) error {
	e, ok := r.rows[id]
	if !ok {
		return common.ErrNotFound
	}
	e.PasswordHash = hash
	return nil
}

type memRefresh struct{ rows map[string]*models.RefreshToken }

func (r *memRefresh) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	r.rows[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *memRefresh) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := r.rows[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return t, nil
}

func (r *memRefresh) Delete(ctx context.Context, token string) error {
	delete(r.rows, token)
	return nil
}

func (r *memRefresh) DeleteForUser(ctx context.Context, userID string) error {
	for k, t := range r.rows {
		if t.UserID == userID {
			delete(r.rows, k)
		}
	}
	return nil
}

type memReset struct{ rows map[string]*models.ResetToken }

func (r *memReset) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	r.rows[token] = &models.ResetToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *memReset) Find(ctx context.Context, token string) (*models.ResetToken, error) {
	t, ok := r.rows[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return t, nil
}

func (r *memReset) Delete(ctx context.Context, token string) error {
	delete(r.rows, token)
	return nil
}

type memProjects struct {
	seq  int
	rows map[string]*models.Project
}

func (r *memProjects) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	r.seq++
	c := *p
	c.ID = fmt.Sprintf("p%d", r.seq)
	r.rows[c.ID] = &c
	return &c, nil
}

func (r *memProjects) GetByID(ctx context.Context, id string) (*models.Project, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *memProjects) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range r.rows {
		if p.OwnerID == ownerID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memProjects) Update(ctx context.Context, p *models.Project) error {
	e, ok := r.rows[p.ID]
	if !ok {
		return common.ErrNotFound
	}
	e.Title, e.Description = p.Title, p.Description
	return nil
}

func (r *memProjects) Delete(ctx context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

type memExperiments struct {
	seq  int
	rows map[string]*models.Experiment
}

func (r *memExperiments) Create(ctx context.Context, e *models.Experiment) (*models.Experiment, error) {
	r.seq++
	c := *e
	c.ID = fmt.Sprintf("e%d", r.seq)
	r.rows[c.ID] = &c
	return &c, nil
}

func (r *memExperiments) GetByID(ctx context.Context, id string) (*models.Experiment, error) {
	e, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r *memExperiments) ListByProject(ctx context.Context, projectID string) ([]*models.Experiment, error) {
	var out []*models.Experiment
	for _, e := range r.rows {
		if e.ProjectID == projectID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memExperiments) Update(ctx context.Context, e *models.Experiment) error {
	x, ok := r.rows[e.ID]
	if !ok {
		return common.ErrNotFound
	}
	x.Title, x.Status = e.Title, e.Status
	return nil
}

func (r *memExperiments) Delete(ctx context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

type memNotes struct {
	seq  int
	rows map[string]*models.Note
}

func (r *memNotes) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	r.seq++
	c := *n
	c.ID = fmt.Sprintf("n%d", r.seq)
	r.rows[c.ID] = &c
	return &c, nil
}

func (r *memNotes) GetByID(ctx context.Context, id string) (*models.Note, error) {
	n, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (r *memNotes) ListByExperiment(ctx context.Context, experimentID string) ([]*models.Note, error) {
	var out []*models.Note
	for _, n := range r.rows {
		if n.ExperimentID == experimentID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memNotes) ListByProject(ctx context.Context, projectID string) ([]*models.Note, error) {
	var out []*models.Note
	for _, n := range r.rows {
		if n.ProjectID == projectID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memNotes) Update(ctx context.Context, n *models.Note) error {
	x, ok := r.rows[n.ID]
	if !ok {
		return common.ErrNotFound
	}
	x.Title, x.Body = n.Title, n.Body
	return nil
}

func (r *memNotes) Delete(ctx context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

type memAttachments struct {
	seq  int
	rows map[string]*models.Attachment
}

func (r *memAttachments) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	r.seq++
	c := *a
	c.ID = fmt.Sprintf("a%d", r.seq)
	r.rows[c.ID] = &c
	return &c, nil
}

func (r *memAttachments) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	a, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *memAttachments) ListByNote(ctx context.Context, noteID string) ([]*models.Attachment, error) {
	var out []*models.Attachment
	for _, a := range r.rows {
		if a.NoteID == noteID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memAttachments) Delete(ctx context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

type memRepoManager struct {
	users       *memUsers
	refresh     *memRefresh
	reset       *memReset
	projects    *memProjects
	experiments *memExperiments
	notes       *memNotes
	attachments *memAttachments
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		users:       &memUsers{rows: make(map[string]*models.User)},
		refresh:     &memRefresh{rows: make(map[string]*models.RefreshToken)},
		reset:       &memReset{rows: make(map[string]*models.ResetToken)},
		projects:    &memProjects{rows: make(map[string]*models.Project)},
		experiments: &memExperiments{rows: make(map[string]*models.Experiment)},
		notes:       &memNotes{rows: make(map[string]*models.Note)},
		attachments: &memAttachments{rows: make(map[string]*models.Attachment)},
	}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.users }
func (m *memRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository {
	return m.refresh
}
func (m *memRepoManager) ResetTokens(dbx.DBTX) resettokensrepo.Repository { return m.reset }
func (m *memRepoManager) Projects(dbx.DBTX) projectsrepo.Repository       { return m.projects }
func (m *memRepoManager) Experiments(dbx.DBTX) experimentsrepo.Repository {
	return m.experiments
}
func (m *memRepoManager) Notes(dbx.DBTX) notesrepo.Repository             { return m.notes }
func (m *memRepoManager) Attachments(dbx.DBTX) attachmentsrepo.Repository { return m.attachments }

var _ repomanager.RepositoryManager = (*memRepoManager)(nil)

type memStore struct {
	seq     int
	objects map[string][]byte
}

func (s *memStore) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	s.seq++
	url := fmt.Sprintf("/files/%d-%s", s.seq, filename)
	s.objects[url] = data
	return url, nil
}

func (s *memStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	d, ok := s.objects[url]
	if !ok {
		return nil, common.ErrStorageNotFound
	}
	return d, nil
}

func (s *memStore) Delete(ctx context.Context, url string) bool {
	if _, ok := s.objects[url]; !ok {
		return false
	}
	delete(s.objects, url)
	return true
}

var _ storage.Store = (*memStore)(nil)

type testEnv struct {
	srv       *httptest.Server
	rm        *memRepoManager
	transport *captureTransport
	mock      sqlmock.Sqlmock
}

type captureTransport struct{ sent []*mail.Message }

func (t *captureTransport) Send(ctx context.Context, msg *mail.Message) error {
	t.sent = append(t.sent, msg)
	return nil
}

// newTestEnv wires the full service stack over in-memory repositories and
// serves the router via httptest.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// Transactions in the services are exercised freely in these tests.
	mock.MatchExpectationsInOrder(false)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rm := newMemRepoManager()
	cfg := &config.Config{
		BaseURL:                      "http://localhost:5000",
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 24 * time.Hour,
		ResetTokenValidityDuration:   time.Hour,
	}

	transport := &captureTransport{}
	dispatcher := mail.NewDispatcherWithTransport(transport, logger)

	users := services.NewUserService(db, rm, cfg)
	reset := services.NewResetService(db, rm, dispatcher, cfg, logger)
	notebook := services.NewNotebookService(db, rm)
	selector := services.NewStoreSelector(&memStore{objects: make(map[string][]byte)}, logger)
	attachments := services.NewAttachmentService(db, rm, notebook, selector)
	reports := services.NewReportService(notebook, dispatcher, cfg, logger)

	server := NewServer("127.0.0.1:0", logger, users, reset, notebook, attachments, reports)
	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, rm: rm, transport: transport, mock: mock}
}

// allowTx queues n Begin/Commit pairs on the sqlmock connection.
func (e *testEnv) allowTx(n int) {
	for i := 0; i < n; i++ {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

// register creates an account through the API and returns the token pair.
func (e *testEnv) register(t *testing.T, username string) (token, refresh, userID string) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	return out.Token, out.RefreshToken, out.User.ID
}

// multipartBody builds a multipart payload with a single file field.
func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
