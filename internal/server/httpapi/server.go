package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/labbook/internal/logging"
	"github.com/dmitrijs2005/labbook/internal/server/services"
)

// Server binds the REST API to the service layer.
type Server struct {
	addr        string
	logger      logging.Logger
	users       *services.UserService
	reset       *services.ResetService
	notebook    *services.NotebookService
	attachments *services.AttachmentService
	reports     *services.ReportService
}

func NewServer(addr string, logger logging.Logger,
	users *services.UserService,
	reset *services.ResetService,
	notebook *services.NotebookService,
	attachments *services.AttachmentService,
	reports *services.ReportService,
) *Server {
	return &Server{
		addr:        addr,
		logger:      logger,
		users:       users,
		reset:       reset,
		notebook:    notebook,
		attachments: attachments,
		reports:     reports,
	}
}

// Router assembles the full route table. Auth endpoints are public; the
// password-reset pair stays public deliberately so a signed-out user can
// recover an account. Everything else sits behind BearerAuth.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	authRouter := router.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	authRouter.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	authRouter.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	authRouter.HandleFunc("/reset-request", s.handleResetRequest).Methods(http.MethodPost)
	authRouter.HandleFunc("/reset-complete", s.handleResetComplete).Methods(http.MethodPost)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.BearerAuth)

	apiRouter.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me", s.handleUpdateProfile).Methods(http.MethodPut)
	apiRouter.HandleFunc("/users/{id}/avatar", s.handleUploadAvatar).Methods(http.MethodPost)

	apiRouter.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	apiRouter.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	apiRouter.HandleFunc("/projects/{id}", s.handleGetProject).Methods(http.MethodGet)
	apiRouter.HandleFunc("/projects/{id}", s.handleUpdateProject).Methods(http.MethodPut)
	apiRouter.HandleFunc("/projects/{id}", s.handleDeleteProject).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/projects/{id}/experiments", s.handleCreateExperiment).Methods(http.MethodPost)
	apiRouter.HandleFunc("/projects/{id}/experiments", s.handleListExperiments).Methods(http.MethodGet)
	apiRouter.HandleFunc("/projects/{id}/notes", s.handleCreateProjectNote).Methods(http.MethodPost)
	apiRouter.HandleFunc("/projects/{id}/notes", s.handleListProjectNotes).Methods(http.MethodGet)
	apiRouter.HandleFunc("/experiments/{id}", s.handleGetExperiment).Methods(http.MethodGet)
	apiRouter.HandleFunc("/experiments/{id}", s.handleUpdateExperiment).Methods(http.MethodPut)
	apiRouter.HandleFunc("/experiments/{id}", s.handleDeleteExperiment).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/experiments/{id}/report", s.handleSendReport).Methods(http.MethodPost)

	apiRouter.HandleFunc("/experiments/{id}/notes", s.handleCreateNote).Methods(http.MethodPost)
	apiRouter.HandleFunc("/experiments/{id}/notes", s.handleListNotes).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notes/{id}", s.handleGetNote).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notes/{id}", s.handleUpdateNote).Methods(http.MethodPut)
	apiRouter.HandleFunc("/notes/{id}", s.handleDeleteNote).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/notes/{id}/attachments", s.handleUploadAttachment).Methods(http.MethodPost)
	apiRouter.HandleFunc("/notes/{id}/attachments", s.handleListAttachments).Methods(http.MethodGet)
	apiRouter.HandleFunc("/attachments/{id}", s.handleGetAttachment).Methods(http.MethodGet)
	apiRouter.HandleFunc("/attachments/{id}", s.handleDeleteAttachment).Methods(http.MethodDelete)

	return router
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
