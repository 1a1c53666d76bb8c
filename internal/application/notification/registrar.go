package notification

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/go-notifications-nosql/internal/domain"
	"github.com/go-notifications-nosql/internal/registry"
)

// CatalogEntry describes a notification kind known to the system.
type CatalogEntry struct {
	Type    string         `json:"type"`
	Channel domain.Channel `json:"channel"`
}

// Registrar declares the system's notification catalog on top of the
// notification and template registries.
type Registrar struct {
	notifications *registry.Registry[domain.Notification]
	templates     *registry.Registry[domain.NotificationTemplate]

	mu      sync.Mutex
	catalog map[string]CatalogEntry
}

// NewRegistrar creates the two family registries and registers the base
// Email and SMS variants of each.
func NewRegistrar() *Registrar {
	r := &Registrar{
		notifications: registry.New[domain.Notification]("Notification"),
		templates:     registry.New[domain.NotificationTemplate]("NotificationTemplate"),
		catalog:       make(map[string]CatalogEntry),
	}
	r.notifications.MustRegister(domain.KindEmail, func() domain.Notification { return &domain.EmailNotification{} }, domain.ShapeNotification)
	r.notifications.MustRegister(domain.KindSMS, func() domain.Notification { return &domain.SMSNotification{} }, domain.ShapeNotification)
	r.templates.MustRegister(domain.KindEmail, func() domain.NotificationTemplate { return &domain.EmailNotificationTemplate{} }, domain.ShapeTemplate)
	r.templates.MustRegister(domain.KindSMS, func() domain.NotificationTemplate { return &domain.SMSNotificationTemplate{} }, domain.ShapeTemplate)
	return r
}

// RegisterNotification adds the concrete variant V to the catalog under its
// type name. Registering the same variant again is a no-op.
//
//	notification.RegisterNotification[domain.RegistrationEmailNotification](registrar)
func RegisterNotification[V any, PV interface {
	*V
	domain.Notification
}](r *Registrar) error {
	name := reflect.TypeOf((*V)(nil)).Elem().Name()
	ctor := func() domain.Notification { return PV(new(V)) }
	if err := r.notifications.Register(name, ctor, domain.ShapeNotification); err != nil {
		return err
	}
	r.mu.Lock()
	r.catalog[name] = CatalogEntry{Type: name, Channel: ctor().Channel()}
	r.mu.Unlock()
	return nil
}

// MustRegisterNotification is RegisterNotification for startup code.
func MustRegisterNotification[V any, PV interface {
	*V
	domain.Notification
}](r *Registrar) {
	if err := RegisterNotification[V, PV](r); err != nil {
		panic(err)
	}
}

// Freeze ends the registration phase of both registries.
func (r *Registrar) Freeze() {
	r.notifications.Freeze()
	r.templates.Freeze()
}

func (r *Registrar) Notifications() *registry.Registry[domain.Notification] { return r.notifications }

func (r *Registrar) Templates() *registry.Registry[domain.NotificationTemplate] { return r.templates }

// Create returns a blank, active notification of the registered kind typeName.
func (r *Registrar) Create(typeName string) (domain.Notification, error) {
	n, err := r.notifications.Resolve(typeName)
	if err != nil {
		return nil, err
	}
	b := n.Base()
	b.Type = typeName
	b.Kind = typeName
	b.IsActive = true
	b.Parameters = map[string]string{}
	return n, nil
}

// Catalog lists the registered concrete kinds ordered by type name.
func (r *Registrar) Catalog() []CatalogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CatalogEntry, 0, len(r.catalog))
	for _, e := range r.catalog {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// KindOf returns the registry tag for n's concrete type.
func (r *Registrar) KindOf(n domain.Notification) (string, error) {
	tag, ok := r.notifications.TagOf(n)
	if !ok {
		return "", fmt.Errorf("%T: %w", n, domain.ErrUnknownVariant)
	}
	return tag, nil
}

// RegisterPlatformNotifications declares every notification kind the
// platform raises.
func RegisterPlatformNotifications(r *Registrar) error {
	for _, register := range []func(*Registrar) error{
		RegisterNotification[domain.RegistrationEmailNotification],
		RegisterNotification[domain.ResetPasswordEmailNotification],
		RegisterNotification[domain.TwoFactorEmailNotification],
		RegisterNotification[domain.TwoFactorSMSNotification],
		RegisterNotification[domain.ConfirmationEmailNotification],
		RegisterNotification[domain.StoreDynamicEmailNotification],
		RegisterNotification[domain.OrderCreateEmailNotification],
		RegisterNotification[domain.OrderPaidEmailNotification],
		RegisterNotification[domain.OrderSentEmailNotification],
		RegisterNotification[domain.NewOrderStatusEmailNotification],
		RegisterNotification[domain.CancelOrderEmailNotification],
		RegisterNotification[domain.InvoiceEmailNotification],
		RegisterNotification[domain.NewSubscriptionEmailNotification],
		RegisterNotification[domain.SubscriptionCanceledEmailNotification],
	} {
		if err := register(r); err != nil {
			return err
		}
	}
	return nil
}
