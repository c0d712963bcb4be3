package notification

import "context"

// Credentials are the stored secrets for one channel. For SMS, Secret is the
// API secret; for Alimtalk it is the sender key.
type Credentials struct {
	APIKey string `json:"api_key"`
	Secret string `json:"secret"`
}

// Complete reports whether both halves of the credentials are present.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.Secret != ""
}

// TemplateSetting is the configured template for one status key. Content is
// the SMS body or the Alimtalk template code depending on the channel.
type TemplateSetting struct {
	Content     string `json:"content"`
	SendToAdmin bool   `json:"send_to_admin"`
}

// AdminRecipient is a shop administrator who can receive copies and alerts.
type AdminRecipient struct {
	Enabled bool   `json:"enabled"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

// LowBalanceSettings configures the low-point alert.
type LowBalanceSettings struct {
	Threshold int    `json:"threshold"`
	Message   string `json:"message"`
}

// Settings is the per-shop configuration snapshot loaded once per dispatch.
type Settings struct {
	ShopName            string                     `json:"shop_name"`
	SenderNumber        string                     `json:"sender_number"`
	SMSCredentials      Credentials                `json:"sms_credentials"`
	AlimtalkCredentials Credentials                `json:"alimtalk_credentials"`
	SMSTemplates        map[string]TemplateSetting `json:"sms_templates"`
	AlimtalkTemplates   map[string]TemplateSetting `json:"alimtalk_templates"`
	Admins              []AdminRecipient           `json:"admins"`
	LowBalance          LowBalanceSettings         `json:"low_balance"`
	VariableMapping     VariableMapping            `json:"variable_mapping,omitempty"`
}

// SMSTemplate returns the non-empty SMS template configured for statusKey.
func (s *Settings) SMSTemplate(statusKey string) (TemplateSetting, bool) {
	t, ok := s.SMSTemplates[statusKey]
	return t, ok && t.Content != ""
}

// AlimtalkTemplate returns the non-empty Alimtalk template configured for statusKey.
func (s *Settings) AlimtalkTemplate(statusKey string) (TemplateSetting, bool) {
	t, ok := s.AlimtalkTemplates[statusKey]
	return t, ok && t.Content != ""
}

// AdminPhones returns the phones of enabled admins, in configured order.
func (s *Settings) AdminPhones() []string {
	phones := make([]string, 0, len(s.Admins))
	for _, a := range s.Admins {
		if a.Enabled && a.Phone != "" {
			phones = append(phones, a.Phone)
		}
	}
	return phones
}

// SettingsStore loads the configuration snapshot from the config store.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (*Settings, error)
}
