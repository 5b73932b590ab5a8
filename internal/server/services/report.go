package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/labbook/internal/logging"
	"github.com/dmitrijs2005/labbook/internal/server/config"
	"github.com/dmitrijs2005/labbook/internal/server/mail"
	"github.com/dmitrijs2005/labbook/internal/server/models"
)

// ReportService renders an experiment's notes into a plain-text report and
// mails it. Delivery uses the user's own SMTP settings when present,
// otherwise the server's default dispatcher.
type ReportService struct {
	notebook   *NotebookService
	dispatcher *mail.Dispatcher
	cfg        *config.Config
	logger     logging.Logger
}

func NewReportService(notebook *NotebookService, dispatcher *mail.Dispatcher, cfg *config.Config, logger logging.Logger) *ReportService {
	return &ReportService{notebook: notebook, dispatcher: dispatcher, cfg: cfg, logger: logger}
}

// Send renders the report for experimentID and mails it to the given
// address. The boolean mirrors the dispatcher result: delivery failure
// is a soft outcome, not an error.
func (s *ReportService) Send(ctx context.Context, user *models.User, experimentID string, to string) (bool, error) {
	experiment, report, err := s.Render(ctx, user.ID, experimentID)
	if err != nil {
		return false, err
	}

	d := s.dispatcherFor(user)
	return d.SendReport(ctx, to, experiment.Title, report), nil
}

// Render produces the plain-text report for an experiment owned by userID.
func (s *ReportService) Render(ctx context.Context, userID, experimentID string) (*models.Experiment, []byte, error) {
	experiment, err := s.notebook.GetExperiment(ctx, userID, experimentID)
	if err != nil {
		return nil, nil, err
	}
	notes, err := s.notebook.ListNotes(ctx, userID, experimentID)
	if err != nil {
		return nil, nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Experiment: %s\n", experiment.Title)
	fmt.Fprintf(&b, "Status: %s\n", experiment.Status)
	fmt.Fprintf(&b, "Notes: %d\n\n", len(notes))
	for _, n := range notes {
		fmt.Fprintf(&b, "## %s (%s)\n%s\n\n", n.Title, n.CreatedAt.Format("2006-01-02 15:04"), n.Body)
	}

	return experiment, []byte(b.String()), nil
}

func (s *ReportService) dispatcherFor(user *models.User) *mail.Dispatcher {
	if user.SMTP.Host == "" {
		return s.dispatcher
	}
	return mail.NewDispatcher(user.SMTP, !s.cfg.IsProduction(), s.logger)
}
