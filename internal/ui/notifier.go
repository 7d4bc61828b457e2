package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Notifier shows blocking messages and confirmation prompts.
type Notifier interface {
	Alert(message string)
	Confirm(message string) bool
}

// RecordingNotifier records alerts and answers confirmations from a script.
// With an empty script every confirmation gets DefaultAnswer.
type RecordingNotifier struct {
	mu            sync.Mutex
	DefaultAnswer bool
	answers       []bool
	alerts        []string
	prompts       []string
}

// NewRecordingNotifier creates a notifier that answers confirmations with
// the given answers in order.
func NewRecordingNotifier(answers ...bool) *RecordingNotifier {
	return &RecordingNotifier{answers: answers}
}

func (n *RecordingNotifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, message)
}

func (n *RecordingNotifier) Confirm(message string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompts = append(n.prompts, message)
	if len(n.answers) == 0 {
		return n.DefaultAnswer
	}
	answer := n.answers[0]
	n.answers = n.answers[1:]
	return answer
}

// Alerts returns the alerts shown so far.
func (n *RecordingNotifier) Alerts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.alerts...)
}

// Prompts returns the confirmation prompts shown so far.
func (n *RecordingNotifier) Prompts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.prompts...)
}

// TerminalNotifier prints alerts and reads y/n confirmations.
type TerminalNotifier struct {
	out io.Writer
	in  *bufio.Reader
}

// NewTerminalNotifier creates a notifier over a terminal.
func NewTerminalNotifier(in io.Reader, out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out, in: bufio.NewReader(in)}
}

func (n *TerminalNotifier) Alert(message string) {
	fmt.Fprintf(n.out, "! %s\n", message)
}

func (n *TerminalNotifier) Confirm(message string) bool {
	fmt.Fprintf(n.out, "? %s [y/N] ", message)
	line, err := n.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
