package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
)

// Input indices. The ID input is never shown or focused.
const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldUser
	fieldPassword
	fieldRemoteDir
	fieldID
	fieldSubmit
)

// ConnectionForm collects host, port, user and password for a connection.
// A filled-in name saves the connection as a profile.
type ConnectionForm struct {
	inputs           []textinput.Model
	focusIndex       int
	editing          bool
	profile          config.Profile
	password         string
	rememberPassword bool
	submitted        bool
	canceled         bool
	width            int
	height           int
	errorMessage     string
}

// NewConnectionForm creates a form, prefilled from p when editing or
// reconnecting. password prefills the password input.
func NewConnectionForm(p *config.Profile, password string) *ConnectionForm {
	editing := p != nil
	initial := config.Profile{Port: 22}
	if editing {
		initial = *p
	}

	inputs := make([]textinput.Model, fieldSubmit)

	initInput := func(i int, placeholder string, width int) {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholder
		inputs[i].Width = width
		inputs[i].Prompt = "> "
		inputs[i].PromptStyle = blurredStyle
		inputs[i].TextStyle = blurredStyle
	}

	initInput(fieldName, "Name (leave empty to connect without saving)", 44)
	initInput(fieldHost, "Hostname or IP", 40)
	initInput(fieldPort, "Port (default: 22)", 40)
	initInput(fieldUser, "Username", 30)
	initInput(fieldPassword, "Password", 40)
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'
	initInput(fieldRemoteDir, "Start directory (default: home)", 40)
	initInput(fieldID, "ID (auto-generated)", 40)

	if editing {
		inputs[fieldName].SetValue(initial.Name)
		inputs[fieldHost].SetValue(initial.Host)
		inputs[fieldPort].SetValue(strconv.Itoa(initial.Port))
		inputs[fieldUser].SetValue(initial.Username)
		inputs[fieldRemoteDir].SetValue(initial.RemoteDir)
		inputs[fieldID].SetValue(initial.ID)
	}
	inputs[fieldPassword].SetValue(password)

	f := &ConnectionForm{
		inputs:           inputs,
		editing:          editing,
		profile:          initial,
		rememberPassword: password != "",
	}
	// Jump straight to the password when everything else is known.
	if editing && initial.Host != "" && initial.Username != "" && password == "" {
		f.focus(fieldPassword)
	} else {
		f.focus(fieldName)
	}
	return f
}

// Init initializes the form
func (m *ConnectionForm) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ConnectionForm) focus(index int) tea.Cmd {
	m.focusIndex = index
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == index {
			cmd = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = blurredStyle
			m.inputs[i].TextStyle = blurredStyle
		}
	}
	return cmd
}

// Update handles updates to the form
func (m *ConnectionForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, nil

		case "tab", "shift+tab", "up", "down":
			step := 1
			if msg.String() == "shift+tab" || msg.String() == "up" {
				step = -1
			}
			return m, m.focus(nextField(m.focusIndex, step))

		case "ctrl+p":
			m.rememberPassword = !m.rememberPassword
			return m, nil

		case "enter":
			if m.focusIndex != fieldSubmit {
				return m, m.focus(nextField(m.focusIndex, 1))
			}
			if errMsg := m.validateForm(); errMsg != "" {
				m.errorMessage = errMsg
				return m, nil
			}
			m.updateProfile()
			m.submitted = true
			return m, nil
		}
	}

	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

// nextField moves focus by step, skipping the hidden ID input and wrapping
// around the submit button.
func nextField(current, step int) int {
	next := current + step
	if next == fieldID {
		next += step
	}
	switch {
	case next > fieldSubmit:
		next = fieldName
	case next < fieldName:
		next = fieldSubmit
	}
	return next
}

// View renders the form
func (m *ConnectionForm) View() string {
	var b strings.Builder

	title := "Connect"
	if m.editing {
		title = "Edit Connection"
	}
	b.WriteString(sectionTitleStyle.Render(title))
	b.WriteString("\n\n")

	label := func(text string) string {
		return lipgloss.NewStyle().Foreground(colorSubText).Render(text)
	}

	fields := []struct {
		label string
		index int
	}{
		{"Name", fieldName},
		{"Host", fieldHost},
		{"Port", fieldPort},
		{"Username", fieldUser},
		{"Password", fieldPassword},
		{"Remote directory", fieldRemoteDir},
	}
	for _, f := range fields {
		b.WriteString(label(f.label) + "\n")
		b.WriteString(m.inputs[f.index].View() + "\n\n")
	}

	check := "[ ]"
	if m.rememberPassword {
		check = "[x]"
	}
	hint := lipgloss.NewStyle().Foreground(colorInactive).Render("(Ctrl+P to toggle)")
	b.WriteString(fmt.Sprintf("%s %s\n\n", label(check+" Remember password in keyring"), hint))

	button := blurredButton
	if m.focusIndex == fieldSubmit {
		button = focusedButton
	}
	b.WriteString(button)

	if m.errorMessage != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(m.errorMessage))
	}

	formBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 3).
		Width(60).
		Align(lipgloss.Left).
		Render(b.String())

	availableHeight := max(m.height-3, 0)
	return lipgloss.Place(m.width, availableHeight, lipgloss.Center, lipgloss.Center, formBox)
}

func (m *ConnectionForm) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetError shows msg under the submit button and reopens the form.
func (m *ConnectionForm) SetError(msg string) {
	m.errorMessage = msg
	m.submitted = false
}

// IsCanceled returns whether the form was canceled
func (m *ConnectionForm) IsCanceled() bool {
	return m.canceled
}

// IsSubmitted returns whether the form was submitted
func (m *ConnectionForm) IsSubmitted() bool {
	return m.submitted
}

// Profile returns the connection described by the form.
func (m *ConnectionForm) Profile() config.Profile {
	return m.profile
}

// Password returns the entered password.
func (m *ConnectionForm) Password() string {
	return m.password
}

// ShouldSave reports whether the connection should be stored as a profile.
func (m *ConnectionForm) ShouldSave() bool {
	return m.profile.Name != ""
}

// RememberPassword reports whether the password goes to the keyring.
func (m *ConnectionForm) RememberPassword() bool {
	return m.rememberPassword
}

// validateForm returns a message describing the first invalid input.
func (m *ConnectionForm) validateForm() string {
	if strings.TrimSpace(m.inputs[fieldHost].Value()) == "" {
		return "Host is required"
	}
	if strings.TrimSpace(m.inputs[fieldUser].Value()) == "" {
		return "Username is required"
	}
	if port := strings.TrimSpace(m.inputs[fieldPort].Value()); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return "Port must be a number between 1 and 65535"
		}
	}
	return ""
}

// updateProfile copies the inputs into the profile and password fields.
func (m *ConnectionForm) updateProfile() {
	port := 22
	if v := strings.TrimSpace(m.inputs[fieldPort].Value()); v != "" {
		port, _ = strconv.Atoi(v)
	}
	m.profile = config.Profile{
		ID:        m.inputs[fieldID].Value(),
		Name:      strings.TrimSpace(m.inputs[fieldName].Value()),
		Host:      strings.TrimSpace(m.inputs[fieldHost].Value()),
		Port:      port,
		Username:  strings.TrimSpace(m.inputs[fieldUser].Value()),
		RemoteDir: strings.TrimSpace(m.inputs[fieldRemoteDir].Value()),
		Notes:     m.profile.Notes,
	}
	m.password = m.inputs[fieldPassword].Value()
}
