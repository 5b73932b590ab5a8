package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/dbx"
	"github.com/dmitrijs2005/labbook/internal/logging"
	"github.com/dmitrijs2005/labbook/internal/server/config"
	"github.com/dmitrijs2005/labbook/internal/server/mail"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/repomanager"
)

// ResetService implements the password-reset flow: an emailed single-use
// token, valid for a fixed window, exchanged for a new password.
type ResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	dispatcher  *mail.Dispatcher
	logger      logging.Logger
	baseURL     string
	validity    time.Duration
}

func NewResetService(db *sql.DB, m repomanager.RepositoryManager, d *mail.Dispatcher, cfg *config.Config, logger logging.Logger) *ResetService {
	return &ResetService{
		db:          db,
		repomanager: m,
		dispatcher:  d,
		logger:      logger,
		baseURL:     cfg.BaseURL,
		validity:    cfg.ResetTokenValidityDuration,
	}
}

// Request creates a reset token for the account behind email and dispatches
// the reset message. It succeeds silently for unknown addresses so the
// endpoint does not leak account existence; mail failures are logged, not
// returned.
func (s *ResetService) Request(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info(ctx, "reset requested for unknown email", "email", email)
			return nil
		}
		return common.ErrInternal
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrInternal
	}

	if err := s.repomanager.ResetTokens(s.db).Create(ctx, user.ID, token, s.validity); err != nil {
		return common.ErrInternal
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	if !s.dispatcher.SendPasswordReset(ctx, user.Email, link) {
		s.logger.Warn(ctx, "reset mail not delivered", "user_id", user.ID)
	}
	return nil
}

// Complete exchanges a reset token for a new password. The token is single
// use; completion also revokes every refresh token of the user, ending all
// existing sessions.
func (s *ResetService) Complete(ctx context.Context, token string, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrValidation)
	}

	resetToken, err := s.repomanager.ResetTokens(s.db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrResetTokenInvalid
		}
		return common.ErrInternal
	}
	if resetToken.Expires.Before(time.Now()) {
		return common.ErrResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, resetToken.UserID, hash); err != nil {
			return err
		}
		if err := s.repomanager.ResetTokens(tx).Delete(ctx, token); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteForUser(ctx, resetToken.UserID)
	})
}
