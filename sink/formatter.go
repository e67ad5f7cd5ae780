package sink

import "fmt"

// Default display texts.
const (
	DefaultOfflineText = "Server offline"
	DefaultOnlineText  = "Server online"
)

// Formatter renders presence as display text, e.g. "Server online 3/48".
type Formatter struct {
	// MaxPlayers is shown after the player count when > 0.
	MaxPlayers int `yaml:"maxPlayers" env:"MAX_PLAYERS"`
	// OfflineText replaces DefaultOfflineText when set.
	OfflineText string `yaml:"offlineText" env:"OFFLINE_TEXT"`
	// OnlineText replaces DefaultOnlineText when set.
	OnlineText string `yaml:"onlineText" env:"ONLINE_TEXT"`
}

// Offline returns the offline text.
func (f Formatter) Offline() string {
	if f.OfflineText != "" {
		return f.OfflineText
	}

	return DefaultOfflineText
}

// Online returns the online text with the player count.
func (f Formatter) Online(playerCount int) string {
	text := f.OnlineText
	if text == "" {
		text = DefaultOnlineText
	}
	if f.MaxPlayers > 0 {
		return fmt.Sprintf("%s %d/%d", text, playerCount, f.MaxPlayers)
	}

	return fmt.Sprintf("%s %d", text, playerCount)
}
