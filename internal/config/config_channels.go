package config

// ChannelsConfig contains per-channel configuration.
type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	WhatsApp WhatsAppConfig `json:"whatsapp"`
	LiveChat LiveChatConfig `json:"livechat"`
	Discord  DiscordConfig  `json:"discord"`
	Web      WebConfig      `json:"web"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"-"` // from env BALCAO_TELEGRAM_TOKEN only
}

type WhatsAppConfig struct {
	Enabled       bool   `json:"enabled"`
	APIURL        string `json:"api_url,omitempty"` // default Graph API base
	PhoneNumberID string `json:"phone_number_id"`
	AccessToken   string `json:"-"` // from env BALCAO_WHATSAPP_TOKEN only
	VerifyToken   string `json:"-"` // from env BALCAO_WHATSAPP_VERIFY_TOKEN only
}

type LiveChatConfig struct {
	Enabled           bool   `json:"enabled"`
	URL               string `json:"url"`
	APIKey            string `json:"-"`                            // from env BALCAO_LIVECHAT_API_KEY only
	HumanDepartmentID int    `json:"human_department_id,omitempty"` // transfer target, default 1
	IdleCloseMinutes  int    `json:"idle_close_minutes,omitempty"`  // default 30
}

type DiscordConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"-"` // from env BALCAO_DISCORD_TOKEN only
}

// WebConfig configures the browser websocket channel served by the gateway.
type WebConfig struct {
	Enabled bool `json:"enabled"`
}
