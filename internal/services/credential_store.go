package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/quizgen-backend/internal/data/db"
	"github.com/yungbote/quizgen-backend/internal/data/repos"
	accounttypes "github.com/yungbote/quizgen-backend/internal/domain/account"
	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/platform/apierr"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

// CredentialStore owns accounts and quiz history. Each call is one statement;
// nothing spans a transaction and nothing is retried.
type CredentialStore interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
	// CreateAccount reports false, without error, when username is taken.
	CreateAccount(ctx context.Context, username, password string) (bool, error)
	RecordResult(ctx context.Context, result *types.QuizResult) error
	// FetchHistory returns rows in insertion order.
	FetchHistory(ctx context.Context, username string) ([]*types.QuizResult, error)
}

type credentialStore struct {
	log            *logger.Logger
	accountRepo    repos.AccountRepo
	quizResultRepo repos.QuizResultRepo
	bcryptCost     int
	// compared against when the username is unknown so both paths cost a hash
	dummyHash []byte
}

func NewCredentialStore(log *logger.Logger, accountRepo repos.AccountRepo, quizResultRepo repos.QuizResultRepo, bcryptCost int) CredentialStore {
	serviceLog := log.With("service", "CredentialStore")
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("quizgen-no-such-account"), bcryptCost)
	if err != nil {
		serviceLog.Warn("Failed to prepare dummy hash", "error", err)
	}
	return &credentialStore{
		log:            serviceLog,
		accountRepo:    accountRepo,
		quizResultRepo: quizResultRepo,
		bcryptCost:     bcryptCost,
		dummyHash:      dummy,
	}
}

func storageFailed(err error) error {
	return apierr.New(http.StatusInternalServerError, "storage_failed", err)
}

func (cs *credentialStore) Authenticate(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}
	found, err := cs.accountRepo.GetByUsernames(ctx, nil, []string{username})
	if err != nil {
		cs.log.Error("Failed to look up account", "error", err)
		return false, storageFailed(fmt.Errorf("look up account: %w", err))
	}
	if len(found) == 0 {
		if cs.dummyHash != nil {
			_ = bcrypt.CompareHashAndPassword(cs.dummyHash, []byte(password))
		}
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found[0].PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			cs.log.Warn("Stored password hash unusable", "username", username, "error", err)
		}
		return false, nil
	}
	return true, nil
}

func (cs *credentialStore) CreateAccount(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, apierr.BadRequest("invalid_request", errors.New("username and password are required"))
	}
	taken, err := cs.accountRepo.UsernameExists(ctx, nil, username)
	if err != nil {
		cs.log.Error("Failed to check username", "error", err)
		return false, storageFailed(fmt.Errorf("check username: %w", err))
	}
	if taken {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cs.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return false, apierr.BadRequest("password_too_long", err)
		}
		return false, fmt.Errorf("hash password: %w", err)
	}

	_, err = cs.accountRepo.Create(ctx, nil, []*accounttypes.Account{{
		Username:     username,
		PasswordHash: string(hash),
	}})
	if err != nil {
		// lost a race with a concurrent signup
		if db.IsUniqueViolation(err) {
			return false, nil
		}
		cs.log.Error("Failed to create account", "error", err)
		return false, storageFailed(fmt.Errorf("create account: %w", err))
	}
	cs.log.Info("Account created", "username", username)
	return true, nil
}

func (cs *credentialStore) RecordResult(ctx context.Context, result *types.QuizResult) error {
	if result == nil {
		return apierr.BadRequest("invalid_request", errors.New("result required"))
	}
	if _, err := cs.quizResultRepo.Create(ctx, nil, []*types.QuizResult{result}); err != nil {
		if db.IsForeignKeyViolation(err) {
			cs.log.Warn("Quiz result for unknown account", "username", result.Username)
		}
		return storageFailed(fmt.Errorf("record result: %w", err))
	}
	return nil
}

func (cs *credentialStore) FetchHistory(ctx context.Context, username string) ([]*types.QuizResult, error) {
	rows, err := cs.quizResultRepo.ListByUsername(ctx, nil, strings.TrimSpace(username))
	if err != nil {
		cs.log.Error("Failed to fetch history", "error", err)
		return nil, storageFailed(fmt.Errorf("fetch history: %w", err))
	}
	return rows, nil
}
