package domain

// Concrete notification kinds raised by platform business events.

type RegistrationEmailNotification struct{ EmailNotification }

type ResetPasswordEmailNotification struct{ EmailNotification }

type ConfirmationEmailNotification struct{ EmailNotification }

type StoreDynamicEmailNotification struct{ EmailNotification }

type OrderCreateEmailNotification struct{ EmailNotification }

type OrderPaidEmailNotification struct{ EmailNotification }

type OrderSentEmailNotification struct{ EmailNotification }

type NewOrderStatusEmailNotification struct{ EmailNotification }

type CancelOrderEmailNotification struct{ EmailNotification }

type InvoiceEmailNotification struct{ EmailNotification }

type NewSubscriptionEmailNotification struct{ EmailNotification }

type SubscriptionCanceledEmailNotification struct{ EmailNotification }

// TwoFactorEmailNotification delivers a one-time code by email.
type TwoFactorEmailNotification struct{ EmailNotification }

// Fields exposes the one-time token as {code}.
func (n *TwoFactorEmailNotification) Fields() map[string]string {
	return twoFactorFields(&n.NotificationBase)
}

// TwoFactorSMSNotification delivers a one-time code by SMS.
type TwoFactorSMSNotification struct{ SMSNotification }

func (n *TwoFactorSMSNotification) Fields() map[string]string {
	return twoFactorFields(&n.NotificationBase)
}

func twoFactorFields(b *NotificationBase) map[string]string {
	fields := map[string]string{}
	if token, ok := b.Param("token"); ok {
		fields["code"] = token
	}
	return fields
}
