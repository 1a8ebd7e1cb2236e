// Package notification delivers operator-facing alerts for noteworthy
// engagement events, independent of the structured request/response log.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/perplext/cipherhoneypot/src/events"
)

// Severity classifies how urgently an alert needs an operator's attention.
type Severity int

const (
	Info Severity = iota
	Warning
	Critical
)

// Alert is one operator-facing notification.
type Alert struct {
	Severity Severity
	Title    string
	Message  string
	At       time.Time
}

// ConsoleChannel prints alerts to stdout, color-coded by severity.
type ConsoleChannel struct{}

// NewConsoleChannel returns a channel that writes to the terminal.
func NewConsoleChannel() *ConsoleChannel {
	return &ConsoleChannel{}
}

// Deliver prints a with a severity-colored prefix.
func (c *ConsoleChannel) Deliver(a Alert) {
	var paint func(format string, a ...interface{}) string
	switch a.Severity {
	case Critical:
		paint = color.New(color.FgRed, color.Bold).SprintfFunc()
	case Warning:
		paint = color.New(color.FgYellow).SprintfFunc()
	default:
		paint = color.New(color.FgCyan).SprintfFunc()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", paint("[%s]", severityLabel(a.Severity)), a.Title)
	fmt.Fprintf(&b, "  %s\n", a.Message)
	fmt.Fprintf(&b, "  at %s\n", a.At.Format(time.RFC3339))
	fmt.Print(b.String())
}

func severityLabel(s Severity) string {
	switch s {
	case Critical:
		return "CRITICAL"
	case Warning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// Notifier raises an alert whenever a high-confidence scam is detected.
type Notifier struct {
	channel   *ConsoleChannel
	threshold float64
}

// NewNotifier returns a notifier that alerts when a session's confidence
// score reaches threshold.
func NewNotifier(channel *ConsoleChannel, threshold float64) *Notifier {
	return &Notifier{channel: channel, threshold: threshold}
}

// Subscribe registers the notifier against scam.detected events.
func (n *Notifier) Subscribe(bus events.Bus) {
	bus.Subscribe(events.TypeScamDetected, n.handle)
}

func (n *Notifier) handle(_ context.Context, e events.Event) error {
	score, _ := e.Payload["confidence"].(float64)
	if score < n.threshold {
		return nil
	}
	sessionID, _ := e.Payload["session_id"].(string)
	n.channel.Deliver(Alert{
		Severity: Critical,
		Title:    "high-confidence scam detected",
		Message:  fmt.Sprintf("session %s scored %.2f", sessionID, score),
		At:       time.Now().UTC(),
	})
	return nil
}
