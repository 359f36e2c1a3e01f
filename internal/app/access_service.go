package app

import (
	"context"
	"log"
	"strings"

	"github.com/pankajkkc01/RAG-application/internal/model"
	"github.com/pankajkkc01/RAG-application/internal/repository"
)

// AccessService is the allow-list login gate plus its admin operations. It is
// a membership check, not an authentication protocol: no secret, no token.
type AccessService struct {
	allowedRepo *repository.AllowedUserRepository
	loginRepo   *repository.UserLoginRepository
	audit       AuditPublisher // optional; nil falls back to direct insert
}

func NewAccessService(
	allowedRepo *repository.AllowedUserRepository,
	loginRepo *repository.UserLoginRepository,
	audit AuditPublisher,
) *AccessService {
	return &AccessService{
		allowedRepo: allowedRepo,
		loginRepo:   loginRepo,
		audit:       audit,
	}
}

type LoginInput struct {
	Name  string
	Email string
	Phone string
}

// Login checks the allow-list and, on success, records the login. A mismatch
// is a denial (ErrNotAllowed), not a server error.
func (s *AccessService) Login(ctx context.Context, input LoginInput) error {
	if strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.Email) == "" ||
		strings.TrimSpace(input.Phone) == "" {
		return ErrInvalidInput
	}

	allowed, err := s.allowedRepo.IsAllowed(input.Name, input.Email, input.Phone)
	if err != nil {
		return err
	}
	if !allowed {
		log.Printf("login denied for %s", strings.TrimSpace(input.Email))
		return ErrNotAllowed
	}

	login := model.UserLogin{
		Name:  strings.TrimSpace(input.Name),
		Email: strings.TrimSpace(input.Email),
		Phone: strings.TrimSpace(input.Phone),
	}
	if s.audit != nil {
		return s.audit.PublishUserLogin(ctx, login)
	}
	return s.loginRepo.Create(&login)
}

// ListLogins returns the login audit records, most recent first.
func (s *AccessService) ListLogins() ([]model.UserLogin, error) {
	return s.loginRepo.List()
}

// AddAllowedUsers bulk-inserts allow-list entries.
func (s *AccessService) AddAllowedUsers(users []model.AllowedUser) error {
	if len(users) == 0 {
		return ErrInvalidInput
	}
	for _, u := range users {
		if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Phone) == "" {
			return ErrInvalidInput
		}
	}
	return s.allowedRepo.CreateBatch(users)
}

// RemoveAllowedUser removes allow-list entries by email.
func (s *AccessService) RemoveAllowedUser(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}
	return s.allowedRepo.DeleteByEmail(email)
}

// ListAllowedUsers returns the current allow-list.
func (s *AccessService) ListAllowedUsers() ([]model.AllowedUser, error) {
	return s.allowedRepo.List()
}
