package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
)

// profileItem represents an item in the profile list
type profileItem struct {
	profile config.Profile
}

func (i profileItem) FilterValue() string {
	return i.profile.Name
}

func (i profileItem) Title() string {
	return i.profile.Name
}

func (i profileItem) Description() string {
	port := ""
	if i.profile.Port != 22 && i.profile.Port != 0 {
		port = fmt.Sprintf(":%d", i.profile.Port)
	}
	desc := fmt.Sprintf("%s@%s%s", i.profile.Username, i.profile.Host, port)
	if i.profile.RemoteDir != "" {
		desc += " " + i.profile.RemoteDir
	}
	return desc
}

// ConnectionList lists saved connection profiles.
type ConnectionList struct {
	list               list.Model
	profiles           []config.Profile
	selectedProfile    *config.Profile
	highlightedProfile *config.Profile
}

// NewConnectionList creates a new profile list component.
// width and height should be set to the current terminal size.
func NewConnectionList(profiles []config.Profile, width, height int) *ConnectionList {
	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 20
	}

	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Saved Connections"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = listTitleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new connection")),
			key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit connection")),
			key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete connection")),
		}
	}

	cl := &ConnectionList{list: l}
	cl.SetProfiles(profiles)
	return cl
}

func (cl *ConnectionList) Init() tea.Cmd {
	return nil
}

func (cl *ConnectionList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cl.list.SetWidth(msg.Width)
		cl.list.SetHeight(msg.Height - 4) // Leave room for help and status
		return cl, nil

	case tea.KeyMsg:
		if cl.list.FilterState() == list.Filtering {
			newList, cmd := cl.list.Update(msg)
			cl.list = newList
			cl.syncHighlighted()
			return cl, cmd
		}
		if key.Matches(msg, key.NewBinding(key.WithKeys("enter"))) {
			if item, ok := cl.list.SelectedItem().(profileItem); ok {
				p := item.profile
				cl.selectedProfile = &p
				return cl, nil
			}
		}
	}

	newList, cmd := cl.list.Update(msg)
	cl.list = newList
	cl.syncHighlighted()
	return cl, cmd
}

func (cl *ConnectionList) syncHighlighted() {
	if item, ok := cl.list.SelectedItem().(profileItem); ok {
		p := item.profile
		cl.highlightedProfile = &p
		return
	}
	cl.highlightedProfile = nil
}

func (cl *ConnectionList) View() string {
	if len(cl.profiles) == 0 {
		return fmt.Sprintf("\n%s\n\n  No saved connections. Press 'n' to connect or 'a' to add one.\n\n", listTitleStyle.Render("Saved Connections"))
	}
	return cl.list.View()
}

// SelectedProfile returns the profile chosen with enter, if any.
func (cl *ConnectionList) SelectedProfile() *config.Profile {
	return cl.selectedProfile
}

// HighlightedProfile returns the profile under the cursor.
func (cl *ConnectionList) HighlightedProfile() *config.Profile {
	return cl.highlightedProfile
}

// Filtering reports whether the list is capturing keys for its filter.
func (cl *ConnectionList) Filtering() bool {
	return cl.list.FilterState() == list.Filtering
}

func (cl *ConnectionList) SetProfiles(profiles []config.Profile) {
	cl.profiles = profiles
	items := make([]list.Item, len(profiles))
	for i, p := range profiles {
		items[i] = profileItem{profile: p}
	}
	cl.list.SetItems(items)
	cl.syncHighlighted()
}

func (cl *ConnectionList) Reset() {
	cl.selectedProfile = nil
	cl.list.Select(0)
	cl.syncHighlighted()
}

func (cl *ConnectionList) SetSize(width, height int) {
	cl.list.SetWidth(width)
	cl.list.SetHeight(height)
}
