package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
)

func typeInto(f *ConnectionForm, text string) {
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func submit(f *ConnectionForm) {
	f.focus(fieldSubmit)
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestConnectionFormSubmit(t *testing.T) {
	f := NewConnectionForm(nil, "")

	typeInto(f, "prod")
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeInto(f, "files.example.com")
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeInto(f, "2222")
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeInto(f, "alice")
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeInto(f, "s3cret")
	submit(f)

	if !f.IsSubmitted() {
		t.Fatalf("Expected form to be submitted, error: %q", f.errorMessage)
	}
	p := f.Profile()
	if p.Name != "prod" || p.Host != "files.example.com" || p.Port != 2222 || p.Username != "alice" {
		t.Errorf("Unexpected profile: %+v", p)
	}
	if f.Password() != "s3cret" {
		t.Errorf("Expected password s3cret, got %q", f.Password())
	}
	if !f.ShouldSave() {
		t.Error("Expected a named connection to be saved")
	}
	if f.RememberPassword() {
		t.Error("Expected remember password off by default")
	}
}

func TestConnectionFormValidation(t *testing.T) {
	tests := []struct {
		name string
		host string
		port string
		user string
		want string
	}{
		{"missing host", "", "", "bob", "Host is required"},
		{"missing user", "h", "", "", "Username is required"},
		{"bad port", "h", "99999", "bob", "Port must be a number between 1 and 65535"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewConnectionForm(nil, "")
			f.inputs[fieldHost].SetValue(tt.host)
			f.inputs[fieldPort].SetValue(tt.port)
			f.inputs[fieldUser].SetValue(tt.user)
			submit(f)
			if f.IsSubmitted() {
				t.Fatal("Expected submission to be rejected")
			}
			if f.errorMessage != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, f.errorMessage)
			}
		})
	}
}

func TestConnectionFormPrefill(t *testing.T) {
	p := &config.Profile{ID: "id-1", Name: "lab", Host: "10.0.0.5", Port: 22, Username: "root", RemoteDir: "/srv"}
	f := NewConnectionForm(p, "")

	if f.focusIndex != fieldPassword {
		t.Errorf("Expected focus on the password, got field %d", f.focusIndex)
	}
	typeInto(f, "pw")
	f.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	submit(f)

	got := f.Profile()
	if got.ID != "id-1" || got.RemoteDir != "/srv" {
		t.Errorf("Expected ID and remote dir preserved, got %+v", got)
	}
	if !f.RememberPassword() {
		t.Error("Expected ctrl+p to turn remember password on")
	}

	f.SetError("connection refused")
	if f.IsSubmitted() {
		t.Error("Expected SetError to reopen the form")
	}
}

func TestNextFieldSkipsID(t *testing.T) {
	if got := nextField(fieldRemoteDir, 1); got != fieldSubmit {
		t.Errorf("Expected submit after remote dir, got %d", got)
	}
	if got := nextField(fieldSubmit, 1); got != fieldName {
		t.Errorf("Expected wrap to name, got %d", got)
	}
	if got := nextField(fieldSubmit, -1); got != fieldRemoteDir {
		t.Errorf("Expected remote dir before submit, got %d", got)
	}
	if got := nextField(fieldName, -1); got != fieldSubmit {
		t.Errorf("Expected wrap to submit, got %d", got)
	}
}
