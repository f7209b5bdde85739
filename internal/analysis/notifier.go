package analysis

import (
	"log/slog"
	"sync"
)

// Notification texts shown when a warning is raised.
const (
	// BadgeText is the attention badge.
	BadgeText = "!"

	// NotificationTitle is the title of the warning notification.
	NotificationTitle = "Vegan Confirmed Warning"

	// NotificationMessage is the body of the warning notification.
	NotificationMessage = "Item requires attention! Click the extension icon for details."
)

// Notifier is the browser chrome: badge, system notifications and the panel.
// Every call is fire-and-forget.
type Notifier interface {
	// SetBadge shows text on the attention badge with the given background color.
	SetBadge(text, color string)

	// ClearBadge removes the attention badge.
	ClearBadge()

	// Notify shows a best-effort system notification.
	Notify(title, message string)

	// OpenPanel asks for the panel to be opened.
	OpenPanel()
}

// Badge is the state of the attention badge.
type Badge struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Notification is one shown notification.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// BadgeNotifier is a Notifier that logs every call and keeps the resulting
// state so it can be reported.
type BadgeNotifier struct {
	logger *slog.Logger

	mu            sync.Mutex
	badge         Badge
	notifications []Notification
	panelOpens    int
}

// NewBadgeNotifier creates a BadgeNotifier.
func NewBadgeNotifier(logger *slog.Logger) *BadgeNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgeNotifier{logger: logger}
}

// SetBadge implements Notifier.
func (n *BadgeNotifier) SetBadge(text, color string) {
	n.mu.Lock()
	n.badge = Badge{Text: text, Color: color}
	n.mu.Unlock()

	n.logger.Info("badge set", "text", text, "color", color)
}

// ClearBadge implements Notifier.
func (n *BadgeNotifier) ClearBadge() {
	n.mu.Lock()
	n.badge = Badge{}
	n.mu.Unlock()

	n.logger.Debug("badge cleared")
}

// Notify implements Notifier.
func (n *BadgeNotifier) Notify(title, message string) {
	n.mu.Lock()
	n.notifications = append(n.notifications, Notification{Title: title, Message: message})
	n.mu.Unlock()

	n.logger.Info("notification", "title", title, "message", message)
}

// OpenPanel implements Notifier.
func (n *BadgeNotifier) OpenPanel() {
	n.mu.Lock()
	n.panelOpens++
	n.mu.Unlock()

	n.logger.Debug("panel open requested")
}

// Badge returns the current badge. The zero Badge means no badge.
func (n *BadgeNotifier) Badge() Badge {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.badge
}

// Notifications returns a copy of every notification shown so far.
func (n *BadgeNotifier) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notifications...)
}

// PanelOpens returns how many times the panel was requested.
func (n *BadgeNotifier) PanelOpens() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.panelOpens
}
