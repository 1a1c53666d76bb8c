package message

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-notifications-nosql/internal/domain"
	"github.com/go-notifications-nosql/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTemplates struct{ mock.Mock }

func (m *mockTemplates) ListByNotificationType(ctx context.Context, notificationType string) ([]domain.TemplateRecord, error) {
	args := m.Called(ctx, notificationType)
	recs, _ := args.Get(0).([]domain.TemplateRecord)
	return recs, args.Error(1)
}

func (m *mockTemplates) Put(ctx context.Context, rec *domain.TemplateRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type mockLog struct{ mock.Mock }

func (m *mockLog) Append(ctx context.Context, msg *domain.NotificationMessage) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockLog) ListByNotification(ctx context.Context, notificationID string) ([]domain.NotificationMessage, error) {
	args := m.Called(ctx, notificationID)
	msgs, _ := args.Get(0).([]domain.NotificationMessage)
	return msgs, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(ctx context.Context, from, to, subject, body string) error {
	return m.Called(ctx, from, to, subject, body).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type mockNotifications struct{ mock.Mock }

func (m *mockNotifications) Get(ctx context.Context, notificationID string) (domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

var fixedNow = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	templates     *mockTemplates
	log           *mockLog
	mailer        *mockMailer
	sms           *mockSMS
	notifications *mockNotifications
}

func newFixture() *fixture {
	return &fixture{&mockTemplates{}, &mockLog{}, &mockMailer{}, &mockSMS{}, &mockNotifications{}}
}

func (f *fixture) service() Service {
	types := registry.New[domain.NotificationTemplate]("NotificationTemplate")
	types.MustRegister(domain.KindEmail, func() domain.NotificationTemplate { return &domain.EmailNotificationTemplate{} }, domain.ShapeTemplate)
	types.MustRegister(domain.KindSMS, func() domain.NotificationTemplate { return &domain.SMSNotificationTemplate{} }, domain.ShapeTemplate)
	types.Freeze()
	return NewService(ServiceDeps{
		Notifications:   f.notifications,
		Templates:       f.templates,
		TemplateTypes:   types,
		Log:             f.log,
		Email:           f.mailer,
		SMS:             f.sms,
		DefaultLanguage: "en-US",
		Clock:           func() time.Time { return fixedNow },
	})
}

func welcomeEmail() *domain.RegistrationEmailNotification {
	n := &domain.RegistrationEmailNotification{}
	n.ID = "n-1"
	n.Type = "RegistrationEmailNotification"
	n.Kind = "RegistrationEmailNotification"
	n.IsActive = true
	n.From = "noreply@shop.example"
	n.Recipient = domain.Recipient{Name: "Ann", Email: "ann@example.com"}
	n.Parameters = map[string]string{"name": "Ann"}
	return n
}

func emailTemplate(lang, subject, body string) domain.TemplateRecord {
	return domain.TemplateRecord{
		TemplateID:       "t-" + lang,
		NotificationType: "RegistrationEmailNotification",
		Kind:             domain.KindEmail,
		LanguageCode:     lang,
		Subject:          subject,
		Body:             body,
	}
}

// --- Send ---

func TestSend_DeliversAndRecords(t *testing.T) {
	f := newFixture()
	f.templates.On("ListByNotificationType", mock.Anything, "RegistrationEmailNotification").
		Return([]domain.TemplateRecord{emailTemplate("en-US", "Welcome {name}", "Hello {name}")}, nil)
	f.mailer.On("SendEmail", mock.Anything, "noreply@shop.example", "ann@example.com", "Welcome Ann", "Hello Ann").Return(nil)
	f.log.On("Append", mock.Anything, mock.AnythingOfType("*domain.NotificationMessage")).Return(nil)

	msg, err := f.service().Send(context.Background(), welcomeEmail())

	require.NoError(t, err)
	assert.Equal(t, domain.MessageDelivered, msg.Status)
	assert.True(t, msg.Delivered())
	assert.Equal(t, "n-1", msg.NotificationID)
	assert.Equal(t, domain.ChannelEmail, msg.Channel)
	assert.Equal(t, "Hello Ann", msg.Body)
	assert.Equal(t, "en-US", msg.LanguageCode)
	require.NotNil(t, msg.SentAt)
	assert.Equal(t, fixedNow, *msg.SentAt)
	assert.NotEmpty(t, msg.MessageID)
	f.log.AssertNumberOfCalls(t, "Append", 1)
}

func TestSend_NoTemplate_NoTransportCall(t *testing.T) {
	f := newFixture()
	f.templates.On("ListByNotificationType", mock.Anything, "RegistrationEmailNotification").Return(nil, nil)

	msg, err := f.service().Send(context.Background(), welcomeEmail())

	require.Error(t, err)
	assert.Nil(t, msg)
	assert.True(t, errors.Is(err, domain.ErrTemplateNotFound))
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 0)
	f.log.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSend_TemplateOfOtherChannelDoesNotMatch(t *testing.T) {
	f := newFixture()
	sms := domain.TemplateRecord{TemplateID: "t-sms", NotificationType: "RegistrationEmailNotification", Kind: domain.KindSMS, Body: "Hi"}
	f.templates.On("ListByNotificationType", mock.Anything, mock.Anything).Return([]domain.TemplateRecord{sms}, nil)

	_, err := f.service().Send(context.Background(), welcomeEmail())

	assert.True(t, errors.Is(err, domain.ErrTemplateNotFound))
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 0)
}

func TestSend_RenderingError_NoTransportCall(t *testing.T) {
	f := newFixture()
	f.templates.On("ListByNotificationType", mock.Anything, mock.Anything).
		Return([]domain.TemplateRecord{emailTemplate("", "Hi", "Your order {order}")}, nil)

	_, err := f.service().Send(context.Background(), welcomeEmail())

	var re *domain.RenderingError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "order", re.Key)
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 0)
}

func TestSend_TransportFailure_RecordedAsData(t *testing.T) {
	f := newFixture()
	f.templates.On("ListByNotificationType", mock.Anything, mock.Anything).
		Return([]domain.TemplateRecord{emailTemplate("en-US", "Hi", "Hello {name}")}, nil)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("550 mailbox unavailable"))
	f.log.On("Append", mock.Anything, mock.Anything).Return(nil)

	msg, err := f.service().Send(context.Background(), welcomeEmail())

	require.NoError(t, err)
	assert.Equal(t, domain.MessageFailed, msg.Status)
	assert.Contains(t, msg.Error, "550 mailbox unavailable")
	assert.Contains(t, msg.Error, domain.ErrTransport.Error())
	assert.Nil(t, msg.SentAt)
	f.log.AssertNumberOfCalls(t, "Append", 1)
}

func TestSend_MissingAddress_FailsWithoutTransport(t *testing.T) {
	f := newFixture()
	f.templates.On("ListByNotificationType", mock.Anything, mock.Anything).
		Return([]domain.TemplateRecord{emailTemplate("", "Hi", "Hello")}, nil)
	f.log.On("Append", mock.Anything, mock.Anything).Return(nil)
	n := welcomeEmail()
	n.Recipient.Email = ""

	msg, err := f.service().Send(context.Background(), n)

	require.NoError(t, err)
	assert.Equal(t, domain.MessageFailed, msg.Status)
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 0)
}

func TestSend_LogFailure_ReturnsMessageAndError(t *testing.T) {
	f := newFixture()
	f.templates.On("ListByNotificationType", mock.Anything, mock.Anything).
		Return([]domain.TemplateRecord{emailTemplate("", "Hi", "Hello")}, nil)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.log.On("Append", mock.Anything, mock.Anything).Return(errors.New("table missing"))

	msg, err := f.service().Send(context.Background(), welcomeEmail())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRepository))
	require.NotNil(t, msg)
	assert.Equal(t, domain.MessageDelivered, msg.Status)
}

func TestSend_SMSChannel(t *testing.T) {
	f := newFixture()
	n := &domain.TwoFactorSMSNotification{}
	n.ID = "n-2"
	n.Type = "TwoFactorSMSNotification"
	n.Recipient.Phone = "+15550100"
	n.Parameters = map[string]string{"token": "123456"}
	f.templates.On("ListByNotificationType", mock.Anything, "TwoFactorSMSNotification").Return([]domain.TemplateRecord{
		{TemplateID: "t-1", NotificationType: "TwoFactorSMSNotification", Kind: domain.KindSMS, Body: "Code: {code}"},
	}, nil)
	f.sms.On("SendSMS", mock.Anything, "+15550100", "Code: 123456").Return(nil)
	f.log.On("Append", mock.Anything, mock.Anything).Return(nil)

	msg, err := f.service().Send(context.Background(), n)

	require.NoError(t, err)
	assert.Equal(t, domain.MessageDelivered, msg.Status)
	assert.Empty(t, msg.Subject)
	f.sms.AssertExpectations(t)
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 0)
}

func TestSend_UnsupportedChannel(t *testing.T) {
	f := newFixture()
	svc := NewService(ServiceDeps{Templates: f.templates, Log: f.log, Email: f.mailer})

	_, err := svc.Send(context.Background(), &domain.SMSNotification{})

	assert.True(t, errors.Is(err, domain.ErrUnsupportedChannel))
	f.templates.AssertNotCalled(t, "ListByNotificationType", mock.Anything, mock.Anything)
}

func TestSend_TemplateRepositoryFailure(t *testing.T) {
	f := newFixture()
	f.templates.On("ListByNotificationType", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := f.service().Send(context.Background(), welcomeEmail())

	assert.True(t, errors.Is(err, domain.ErrRepository))
}

// --- template language resolution ---

func TestSend_PrefersNotificationLanguage(t *testing.T) {
	f := newFixture()
	f.templates.On("ListByNotificationType", mock.Anything, mock.Anything).Return([]domain.TemplateRecord{
		emailTemplate("", "neutral", "neutral"),
		emailTemplate("en-US", "english", "english"),
		emailTemplate("de-DE", "deutsch", "deutsch"),
	}, nil)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.log.On("Append", mock.Anything, mock.Anything).Return(nil)

	n := welcomeEmail()
	n.LanguageCode = "de-de"
	msg, err := f.service().Send(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "deutsch", msg.Body)

	n.LanguageCode = "fr-FR"
	msg, err = f.service().Send(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "english", msg.Body)
}

func TestLanguageChain(t *testing.T) {
	assert.Equal(t, []string{"de-DE", "en-US", ""}, languageChain("de-DE", "en-US"))
	assert.Equal(t, []string{"EN-us", ""}, languageChain("EN-us", "en-US"))
	assert.Equal(t, []string{"en-US", ""}, languageChain("", "en-US"))
	assert.Equal(t, []string{""}, languageChain("", ""))
}

// --- SendByID / History ---

func TestSendByID_Inactive(t *testing.T) {
	f := newFixture()
	n := welcomeEmail()
	n.IsActive = false
	f.notifications.On("Get", mock.Anything, "n-1").Return(n, nil)

	_, err := f.service().SendByID(context.Background(), "n-1")

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSendByID_NotFound(t *testing.T) {
	f := newFixture()
	f.notifications.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, err := f.service().SendByID(context.Background(), "nope")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestHistory(t *testing.T) {
	f := newFixture()
	f.log.On("ListByNotification", mock.Anything, "n-1").Return([]domain.NotificationMessage{{MessageID: "m2"}, {MessageID: "m1"}}, nil)

	msgs, err := f.service().History(context.Background(), "n-1")

	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

// --- SaveTemplate ---

func TestSaveTemplate_AssignsIdentityAndStamps(t *testing.T) {
	f := newFixture()
	f.templates.On("Put", mock.Anything, mock.AnythingOfType("*domain.TemplateRecord")).Return(nil).Once()
	rec := emailTemplate("de-DE", "Willkommen {name}", "<style>p { color: red }</style><p>Hallo {name}</p>")
	rec.TemplateID = ""

	require.NoError(t, f.service().SaveTemplate(context.Background(), &rec))

	assert.NotEmpty(t, rec.TemplateID)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.Equal(t, fixedNow, rec.UpdatedAt)
	f.templates.AssertExpectations(t)
}

func TestSaveTemplate_UnregisteredKind_NoWrite(t *testing.T) {
	f := newFixture()
	rec := emailTemplate("en-US", "Hi", "Hi")
	rec.Kind = "Fax"

	err := f.service().SaveTemplate(context.Background(), &rec)

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	f.templates.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSaveTemplate_RepositoryFailure(t *testing.T) {
	f := newFixture()
	f.templates.On("Put", mock.Anything, mock.Anything).Return(errors.New("throttled")).Once()
	rec := emailTemplate("en-US", "Hi", "Hi")

	err := f.service().SaveTemplate(context.Background(), &rec)

	assert.True(t, errors.Is(err, domain.ErrRepository))
}

func TestSend_StoredTemplateWithUnknownKind_IsDataIntegrityFailure(t *testing.T) {
	f := newFixture()
	broken := emailTemplate("en-US", "Hi", "Hi")
	broken.Kind = "Fax"
	f.templates.On("ListByNotificationType", mock.Anything, "RegistrationEmailNotification").
		Return([]domain.TemplateRecord{broken}, nil)

	_, err := f.service().Send(context.Background(), welcomeEmail())

	assert.True(t, errors.Is(err, domain.ErrDataIntegrity))
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
