package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/services"
	"github.com/desertthunder/spotsearch/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultView
)

// page is one level of the result stack; drilling into an album or playlist pushes a page.
type page struct {
	list list.Model
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	searcher services.Searcher
	opts     services.SearchOptions
	input    textinput.Model
	pages    []page
	loading  bool
	status   string
	width    int
	height   int
	err      error
	help     help.Model
	keys     keyMap
	open     func(string) error
}

// NewModel creates a new TUI model. A non-empty query is searched as soon as the program starts.
func NewModel(ctx context.Context, searcher services.Searcher, opts services.SearchOptions, query string) *Model {
	input := textinput.New()
	input.Placeholder = "keywords or an open.spotify.com link"
	input.CharLimit = 512
	input.SetValue(query)
	input.Focus()

	return &Model{
		ctx:      ctx,
		view:     SearchView,
		searcher: searcher,
		opts:     opts,
		input:    input,
		help:     help.New(),
		keys:     newKeyMap(),
		open:     shared.OpenBrowser,
	}
}

// Init starts the cursor blinking and runs the initial query, if any.
func (m *Model) Init() tea.Cmd {
	if q := m.input.Value(); q != "" {
		m.loading = true
		return tea.Batch(textinput.Blink, m.search(q))
	}
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.pages {
			m.pages[i].list.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgResultsFetched:
		data := msg.data.(resultsFetched)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil

		items := itemsFrom(data.rs)
		l := list.New(items, list.NewDefaultDelegate(), 0, 0)
		l.Title = data.title
		l.Styles.Title = styles.listTitle
		l.SetSize(m.width-4, m.height-8)
		m.pages = append(m.pages, page{list: l})
		m.status = fmt.Sprintf("%d results", len(items))
		m.view = ResultView
		return m, nil

	case MsgBrowserOpened:
		data := msg.data.(browserOpened)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not open %s: %v", data.url, data.err))
		} else {
			m.status = styles.ok.Render("Opened " + data.url)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case ResultView:
		return m.renderResults()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if len(m.pages) > 0 {
			m.view = ResultView
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		q := m.input.Value()
		if q == "" || m.loading {
			return m, nil
		}
		m.pages = nil
		m.loading = true
		m.err = nil
		return m, m.search(q)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := &m.pages[len(m.pages)-1].list

	// Keys go to the list while it is capturing filter text.
	if current.FilterState() == list.Filtering {
		var cmd tea.Cmd
		*current, cmd = current.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if len(m.pages) > 1 {
			m.pages = m.pages[:len(m.pages)-1]
			m.status = ""
			return m, nil
		}
		m.view = SearchView
		m.input.Focus()
		return m, textinput.Blink
	case "o":
		if item, ok := current.SelectedItem().(entityItem); ok {
			return m, m.openLink(item.entity)
		}
		return m, nil
	case "enter":
		item, ok := current.SelectedItem().(entityItem)
		if !ok || m.loading {
			return m, nil
		}
		switch item.entity.Kind() {
		case models.TypeAlbum, models.TypePlaylist:
			m.loading = true
			return m, m.lookup(item.entity)
		default:
			return m, m.openLink(item.entity)
		}
	}

	var cmd tea.Cmd
	*current, cmd = current.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case ResultView:
		if len(m.pages) > 0 {
			current := &m.pages[len(m.pages)-1].list
			*current, cmd = current.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) search(q string) tea.Cmd {
	return func() tea.Msg {
		rs, err := m.searcher.Search(m.ctx, q, m.opts)
		return resultsFetchedMsg(q, rs, err)
	}
}

func (m *Model) lookup(e models.Entity) tea.Cmd {
	id := entityID(e)
	return func() tea.Msg {
		rs, err := m.searcher.Lookup(m.ctx, e.Kind(), id, m.opts)
		return resultsFetchedMsg(e.Title(), rs, err)
	}
}

func (m *Model) openLink(e models.Entity) tea.Cmd {
	url := e.Link()
	open := m.open
	return func() tea.Msg {
		if url == "" {
			return browserOpenedMsg(e.Title(), fmt.Errorf("%w: no link", shared.ErrMissingArgument))
		}
		return browserOpenedMsg(url, open(url))
	}
}

func entityID(e models.Entity) string {
	switch v := e.(type) {
	case models.Album:
		return v.ID
	case models.Playlist:
		return v.ID
	case models.Track:
		return v.ID
	case models.Artist:
		return v.ID
	case models.Episode:
		return v.ID
	default:
		return ""
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Catalog Search")

	var status string
	switch {
	case m.loading:
		status = styles.help.Render("Searching...")
	case m.err != nil:
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpKeys := []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		m.keys.back,
	}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.input.View(), status, helpView)
}

func (m *Model) renderResults() string {
	if len(m.pages) == 0 {
		return ""
	}
	current := m.pages[len(m.pages)-1].list

	status := m.status
	switch {
	case m.loading:
		status = styles.help.Render("Loading...")
	case m.err != nil:
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.open, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	if len(m.pages) > 1 {
		titles := make([]string, len(m.pages))
		for i, p := range m.pages {
			titles[i] = p.list.Title
		}
		return fmt.Sprintf("%s\n%s\n%s\n\n%s", styles.Breadcrumb(titles), current.View(), status, helpView)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", current.View(), status, helpView)
}
