package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hitoshi/storeapi/internal/model"
)

// --- モック定義 ---

type mockContactRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Contact, error)
	listFn     func(ctx context.Context, page, pageSize int) ([]*model.Contact, int, error)
	createFn   func(ctx context.Context, contact *model.Contact) error
	updateFn   func(ctx context.Context, contact *model.Contact) error
	deleteFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *mockContactRepo) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockContactRepo) List(ctx context.Context, page, pageSize int) ([]*model.Contact, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	if m.createFn != nil {
		return m.createFn(ctx, contact)
	}
	contact.ID = 1
	return nil
}

func (m *mockContactRepo) Update(ctx context.Context, contact *model.Contact) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, contact)
	}
	return nil
}

func (m *mockContactRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

type mockSubjectRepo struct {
	subjects map[int64]*model.Subject
}

func (m *mockSubjectRepo) List(ctx context.Context) ([]*model.Subject, error) {
	var list []*model.Subject
	for _, s := range m.subjects {
		list = append(list, s)
	}
	return list, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id int64) (*model.Subject, error) {
	return m.subjects[id], nil
}

type mockGateway struct {
	sendFn     func(ctx context.Context, to, header, message string) error
	headers    []string
	recipients []string
}

func (m *mockGateway) Send(ctx context.Context, to, header, message string) error {
	m.headers = append(m.headers, header)
	m.recipients = append(m.recipients, to)
	if m.sendFn != nil {
		return m.sendFn(ctx, to, header, message)
	}
	return nil
}

func newTestContactService(contacts *mockContactRepo, gateway *mockGateway) *Service {
	subjects := &mockSubjectRepo{subjects: map[int64]*model.Subject{
		1: {ID: 1, Name: "General Inquiry"},
		2: {ID: 2, Name: "Refund Request"},
	}}
	return NewService(contacts, subjects, gateway, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- テスト ---

func TestContactService_Create_Success(t *testing.T) {
	var created *model.Contact
	contacts := &mockContactRepo{
		createFn: func(ctx context.Context, contact *model.Contact) error {
			contact.ID = 10
			created = contact
			return nil
		},
	}
	gateway := &mockGateway{}
	svc := newTestContactService(contacts, gateway)

	c, err := svc.Create(context.Background(), ContactInput{
		FirstName: "Hanako",
		LastName:  "Sato",
		Email:     "hanako@example.com",
		Phone:     "090-0000-0000",
		SubjectID: 2,
		Message:   "Please refund my order.",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created == nil {
		t.Fatal("contact should have been created")
	}
	if c.Subject.Name != "Refund Request" {
		t.Errorf("Subject.Name = %q, want %q", c.Subject.Name, "Refund Request")
	}

	// 管理者通知の件名は氏名になること
	if len(gateway.headers) != 1 || gateway.headers[0] != "Hanako Sato" {
		t.Errorf("notification headers = %v, want sender name", gateway.headers)
	}
	// 宛先は未指定（既定の管理者宛）であること
	if len(gateway.recipients) != 1 || gateway.recipients[0] != "" {
		t.Errorf("recipients = %v, want default admin recipient", gateway.recipients)
	}
}

func TestContactService_Create_InvalidSubject(t *testing.T) {
	svc := newTestContactService(&mockContactRepo{}, &mockGateway{})

	_, err := svc.Create(context.Background(), ContactInput{
		FirstName: "Hanako",
		SubjectID: 99,
		Message:   "hello",
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidSubject {
		t.Fatalf("Create() error = %v, want INVALID_SUBJECT", err)
	}
}

func TestContactService_Create_SanitizesMessage(t *testing.T) {
	var created *model.Contact
	contacts := &mockContactRepo{
		createFn: func(ctx context.Context, contact *model.Contact) error {
			created = contact
			return nil
		},
	}
	svc := newTestContactService(contacts, &mockGateway{})

	_, err := svc.Create(context.Background(), ContactInput{
		FirstName: "Hanako",
		SubjectID: 1,
		Message:   `hello <script>alert("xss")</script>world`,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// メッセージ本文からHTMLタグが除去されること
	if created.Message != "hello world" {
		t.Errorf("Message = %q, want sanitized text", created.Message)
	}
}

func TestContactService_Create_NotificationFailureDoesNotFail(t *testing.T) {
	gateway := &mockGateway{
		sendFn: func(ctx context.Context, to, header, message string) error {
			return errors.New("mail gateway down")
		},
	}
	svc := newTestContactService(&mockContactRepo{}, gateway)

	_, err := svc.Create(context.Background(), ContactInput{
		FirstName: "Hanako",
		SubjectID: 1,
		Message:   "hello",
	})
	if err != nil {
		t.Fatalf("Create() should succeed even when notification fails, got %v", err)
	}
}

func TestContactService_Update_KeepsEmptyFields(t *testing.T) {
	var updated *model.Contact
	contacts := &mockContactRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Contact, error) {
			return &model.Contact{
				ID:        id,
				FirstName: "Hanako",
				LastName:  "Sato",
				Email:     "hanako@example.com",
				Phone:     "090-0000-0000",
				Subject:   model.Subject{ID: 1, Name: "General Inquiry"},
				Message:   "original message",
			}, nil
		},
		updateFn: func(ctx context.Context, contact *model.Contact) error {
			updated = contact
			return nil
		},
	}
	svc := newTestContactService(contacts, &mockGateway{})

	_, err := svc.Update(context.Background(), 1, ContactInput{
		Email: "new@example.com",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// 指定したフィールドだけ更新され、空のフィールドは維持されること
	if updated.Email != "new@example.com" {
		t.Errorf("Email = %q, want updated value", updated.Email)
	}
	if updated.FirstName != "Hanako" {
		t.Errorf("FirstName = %q, want original value kept", updated.FirstName)
	}
	if updated.Message != "original message" {
		t.Errorf("Message = %q, want original value kept", updated.Message)
	}
}

func TestContactService_Update_NotFound(t *testing.T) {
	svc := newTestContactService(&mockContactRepo{}, &mockGateway{})

	_, err := svc.Update(context.Background(), 42, ContactInput{})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeContactNotFound {
		t.Fatalf("Update() error = %v, want CONTACT_NOT_FOUND", err)
	}
}

func TestContactService_Delete_NotFound(t *testing.T) {
	contacts := &mockContactRepo{
		deleteFn: func(ctx context.Context, id int64) (bool, error) {
			return false, nil
		},
	}
	svc := newTestContactService(contacts, &mockGateway{})

	err := svc.Delete(context.Background(), 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeContactNotFound {
		t.Fatalf("Delete() error = %v, want CONTACT_NOT_FOUND", err)
	}
}

func TestContactService_List_TotalPages(t *testing.T) {
	contacts := &mockContactRepo{
		listFn: func(ctx context.Context, page, pageSize int) ([]*model.Contact, int, error) {
			return []*model.Contact{}, 11, nil
		},
	}
	svc := newTestContactService(contacts, &mockGateway{})

	result, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}
	if result.PageSize != PageSize {
		t.Errorf("PageSize = %d, want %d", result.PageSize, PageSize)
	}
}
