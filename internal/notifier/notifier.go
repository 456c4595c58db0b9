package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayNotRunning is returned when no sipstreak-tray process owns the lockfile.
var ErrTrayNotRunning = errors.New("sipstreak-tray is not running")

const trayExecutable = "sipstreak-tray"

// Notifier delivers reminder toasts. It prefers the desktop tray webhook and
// falls back to a terminal bell plus a line on Fallback.
type Notifier struct {
	Enabled bool
	// TrayDisabled skips the tray and writes straight to Fallback.
	TrayDisabled bool
	Fallback     io.Writer
	client       *http.Client
}

type WebhookPayload struct {
	Title      string `json:"title,omitempty"`
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func New(enabled bool, fallback io.Writer) *Notifier {
	return &Notifier{
		Enabled:  enabled,
		Fallback: fallback,
		client:   &http.Client{Timeout: 3 * time.Second},
	}
}

// ReminderText is the body shown for each reminder tick.
func ReminderText() string {
	return constants.ReminderTitle + " — " + constants.ReminderBody
}

// Remind sends the standard drink-water reminder.
func (n *Notifier) Remind() error {
	return n.Notify(ReminderText())
}

// Notify sends text to the tray app. When the tray is unavailable the text is
// written to the fallback writer instead. Disabled notifiers do nothing.
func (n *Notifier) Notify(text string) error {
	if !n.Enabled {
		return nil
	}

	var err error
	if !n.TrayDisabled {
		if err = n.notifyTray(text); err == nil {
			return nil
		}
		logger.Debug("Tray notification unavailable", "error", err)
	}

	if n.Fallback == nil {
		if err == nil {
			err = ErrTrayNotRunning
		}
		return err
	}
	_, werr := fmt.Fprintf(n.Fallback, "\a%s %s\n", time.Now().Format("15:04"), text)
	return werr
}

func (n *Notifier) notifyTray(text string) error {
	trayAppConfigPath, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(trayAppConfigPath, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload := WebhookPayload{
		Title:      constants.ReminderTitle,
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	}
	return n.send(port, secret, payload)
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// settings.json may relocate the lockfile
	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err == nil {
		var store struct {
			Settings struct {
				LockfileDir *string `json:"lockfile_dir"`
			} `json:"settings"`
		}
		if json.Unmarshal(data, &store) == nil && store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
			return *store.Settings.LockfileDir, nil
		}
	}

	return trayConfigDir, nil
}

// findAndValidateTrayProcess reads a port|pid|secret lockfile and checks that
// the pid belongs to a live sipstreak-tray process.
func findAndValidateTrayProcess(lockfilePath string) (port string, secret string, err error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port = strings.TrimSpace(parts[0])
	if port == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret = strings.TrimSpace(parts[2])
	if secret == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), trayExecutable) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, trayExecutable, process.Executable())
	}

	return port, secret, nil
}

func (n *Notifier) send(port, secret string, payload WebhookPayload) error {
	client := n.client
	if client == nil {
		client = http.DefaultClient
	}
	return sendNotification(client, port, secret, payload)
}

func sendNotification(client *http.Client, port string, secret string, payload WebhookPayload) error {
	url := fmt.Sprintf("http://127.0.0.1:%s", port)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Sipstreak-Secret", secret)

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
}
