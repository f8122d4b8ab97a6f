// Package contact は問い合わせ管理のビジネスロジックを提供する。
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/storeapi/internal/model"
	"github.com/hitoshi/storeapi/internal/repository"
)

// PageSize は問い合わせ一覧の1ページあたりの件数。
const PageSize = 5

// NotificationGateway は問い合わせの受信を管理者に通知するインターフェース。
// toが空の場合は実装側の既定宛先（管理者）に送る。
type NotificationGateway interface {
	Send(ctx context.Context, to, header, message string) error
}

// ListResult は問い合わせ一覧のページング付きレスポンスを表す。
type ListResult struct {
	Contacts   []*model.Contact `json:"contacts"`
	TotalPages int              `json:"totalPages"`
	PageSize   int              `json:"pageSize"`
	Page       int              `json:"page"`
}

// ContactInput は問い合わせの登録・更新入力を表す。
type ContactInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	SubjectID int64
	Message   string
}

// Service は問い合わせ管理のビジネスロジックを提供する。
// メッセージ本文はHTMLタグを除去してから保存する。
type Service struct {
	contacts  repository.ContactRepository
	subjects  repository.SubjectRepository
	gateway   NotificationGateway
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

// NewService は新しいServiceを生成する。
func NewService(contacts repository.ContactRepository, subjects repository.SubjectRepository, gateway NotificationGateway, logger *slog.Logger) *Service {
	return &Service{
		contacts:  contacts,
		subjects:  subjects,
		gateway:   gateway,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// Subjects は件名の一覧を返す。
func (s *Service) Subjects(ctx context.Context) ([]*model.Subject, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		s.logger.Error("failed to list subjects", slog.String("error", err.Error()))
		return nil, err
	}
	return subjects, nil
}

// List は問い合わせの1ページをID昇順で返す。
func (s *Service) List(ctx context.Context, page int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}

	contacts, total, err := s.contacts.List(ctx, page, PageSize)
	if err != nil {
		s.logger.Error("failed to list contacts", slog.String("error", err.Error()))
		return nil, err
	}

	totalPages := (total + PageSize - 1) / PageSize
	if contacts == nil {
		contacts = []*model.Contact{}
	}

	return &ListResult{
		Contacts:   contacts,
		TotalPages: totalPages,
		PageSize:   PageSize,
		Page:       page,
	}, nil
}

// Get は指定IDの問い合わせを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Contact, error) {
	contact, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to find contact", slog.Int64("contact_id", id), slog.String("error", err.Error()))
		return nil, err
	}
	if contact == nil {
		return nil, model.NewContactNotFoundError(id)
	}
	return contact, nil
}

// Create は問い合わせを登録し、管理者に通知する。
// 通知の失敗は登録の成否に影響しない。
func (s *Service) Create(ctx context.Context, input ContactInput) (*model.Contact, error) {
	subject, err := s.subjects.FindByID(ctx, input.SubjectID)
	if err != nil {
		s.logger.Error("failed to find subject", slog.Int64("subject_id", input.SubjectID), slog.String("error", err.Error()))
		return nil, err
	}
	if subject == nil {
		return nil, model.NewInvalidSubjectError()
	}

	contact := &model.Contact{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Subject:   *subject,
		Message:   s.sanitizeMessage(input.Message),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		s.logger.Error("failed to create contact", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("contact created",
		slog.Int64("contact_id", contact.ID),
		slog.String("subject", subject.Name),
	)

	s.notify(ctx, contact)
	return contact, nil
}

// Update は問い合わせを更新する。空のフィールドは既存の値を維持する。
func (s *Service) Update(ctx context.Context, id int64, input ContactInput) (*model.Contact, error) {
	contact, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to find contact", slog.Int64("contact_id", id), slog.String("error", err.Error()))
		return nil, err
	}
	if contact == nil {
		return nil, model.NewContactNotFoundError(id)
	}

	if input.SubjectID != 0 && input.SubjectID != contact.Subject.ID {
		subject, err := s.subjects.FindByID(ctx, input.SubjectID)
		if err != nil {
			s.logger.Error("failed to find subject", slog.Int64("subject_id", input.SubjectID), slog.String("error", err.Error()))
			return nil, err
		}
		if subject == nil {
			return nil, model.NewInvalidSubjectError()
		}
		contact.Subject = *subject
	}

	if input.FirstName != "" {
		contact.FirstName = input.FirstName
	}
	if input.LastName != "" {
		contact.LastName = input.LastName
	}
	if input.Email != "" {
		contact.Email = input.Email
	}
	if input.Phone != "" {
		contact.Phone = input.Phone
	}
	if input.Message != "" {
		contact.Message = s.sanitizeMessage(input.Message)
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		s.logger.Error("failed to update contact", slog.Int64("contact_id", id), slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("contact updated", slog.Int64("contact_id", contact.ID))
	return contact, nil
}

// Delete は指定IDの問い合わせを削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.contacts.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete contact", slog.Int64("contact_id", id), slog.String("error", err.Error()))
		return err
	}
	if !deleted {
		return model.NewContactNotFoundError(id)
	}

	s.logger.Info("contact deleted", slog.Int64("contact_id", id))
	return nil
}

// sanitizeMessage はメッセージ本文からHTMLタグを除去する。
func (s *Service) sanitizeMessage(message string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(message))
}

// notify は新しい問い合わせを管理者に通知する。失敗はログに残すのみ。
func (s *Service) notify(ctx context.Context, contact *model.Contact) {
	if s.gateway == nil {
		return
	}

	header := fmt.Sprintf("%s %s", contact.FirstName, contact.LastName)
	if err := s.gateway.Send(ctx, "", header, contact.Message); err != nil {
		s.logger.Warn("failed to send contact notification",
			slog.Int64("contact_id", contact.ID),
			slog.String("error", err.Error()),
		)
	}
}
