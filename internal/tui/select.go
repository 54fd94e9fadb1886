// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// BrowseAction represents the user's action in the result browser.
type BrowseAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone BrowseAction = iota
	// ActionSelected indicates the user picked a book.
	ActionSelected
	// ActionNextPage asks for the following result page.
	ActionNextPage
	// ActionPrevPage asks for the preceding result page.
	ActionPrevPage
	// ActionQuit indicates the user closed the browser.
	ActionQuit
)

// BrowseResult holds the outcome of one browser session.
type BrowseResult struct {
	Action    BrowseAction
	Selection *book.CanonicalBook
}

type bookItem struct {
	book.CanonicalBook
}

func (i bookItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.CanonicalBook.Title, yearLabel(i.CanonicalBook))
}

func (i bookItem) FilterValue() string {
	return i.CanonicalBook.Title
}

func (i bookItem) Description() string {
	return strings.Join(i.Authors, ", ")
}

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	labelStyle    lipgloss.Style
	titleStyle    lipgloss.Style
	priceStyle    lipgloss.Style
	metadataStyle lipgloss.Style
	authorStyle   lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		labelStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		priceStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		authorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("248")),
	}
}

type bookDelegate struct {
	styles itemStyles
}

func newDelegate() bookDelegate {
	return bookDelegate{styles: newItemStyles()}
}

func (d bookDelegate) Height() int                         { return 5 }
func (d bookDelegate) Spacing() int                        { return 1 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	entry, ok := item.(bookItem)
	if !ok {
		return
	}
	b := entry.CanonicalBook
	width := m.Width() - 4

	labelLine := d.styles.labelStyle.Render(fmt.Sprintf("[%s]", strings.ToUpper(categoryLabel(b))))
	metadataLine := d.styles.metadataStyle.Render(FormatMetadata(b, width))
	titleLine := d.styles.titleStyle.Render(truncate(entry.Title(), width))
	priceLine := d.styles.priceStyle.Render(FormatPrice(b))
	authorLine := d.styles.authorStyle.Render(truncate(entry.Description(), width))

	content := lipgloss.JoinVertical(lipgloss.Left, labelLine, metadataLine, titleLine, priceLine, authorLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list     list.Model
	query    string
	page     book.Pagination
	result   BrowseResult
	degraded []string
}

func newModel(query string, result book.SearchResult) *model {
	listItems := make([]list.Item, len(result.Items))
	for i, b := range result.Items {
		listItems[i] = bookItem{CanonicalBook: b}
	}

	l := list.New(listItems, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:     l,
		query:    query,
		page:     result.Pagination,
		result:   BrowseResult{Action: ActionNone},
		degraded: result.Errors,
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(bookItem); ok {
				b := selected.CanonicalBook
				m.result = BrowseResult{Action: ActionSelected, Selection: &b}
				return m, tea.Quit
			}
		case "n", "right":
			if m.page.HasNext {
				m.result = BrowseResult{Action: ActionNextPage}
				return m, tea.Quit
			}
		case "p", "left":
			if m.page.HasPrevious {
				m.result = BrowseResult{Action: ActionPrevPage}
				return m, tea.Quit
			}
		case "ctrl+c", "q", "esc":
			m.result = BrowseResult{Action: ActionQuit}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Results for %s (page %d of %d, %d books)",
		m.query, m.page.CurrentPage, m.page.TotalPages, m.page.TotalResults))

	parts := []string{header}
	for _, e := range m.degraded {
		parts = append(parts, warningStyle.Render("! "+e))
	}
	parts = append(parts, m.list.View())
	parts = append(parts, helpStyle.Render("Up/Down navigate | Enter select | n next page | p previous page | q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("161"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Browse shows one page of results and reports what the user chose.
// An empty page returns ActionQuit without starting the program.
func Browse(query string, result book.SearchResult) (BrowseResult, error) {
	if len(result.Items) == 0 {
		return BrowseResult{Action: ActionQuit}, nil
	}

	finalModel, err := runProgram(newModel(query, result))
	if err != nil {
		return BrowseResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return BrowseResult{}, fmt.Errorf("unexpected program result")
}

// FormatMetadata builds the condition, source and subject line for a book.
func FormatMetadata(b book.CanonicalBook, availableWidth int) string {
	var parts []string

	if b.Condition != "" && b.Condition != book.ConditionUnknown {
		parts = append(parts, string(b.Condition))
	}
	if b.IdentityHint != nil {
		parts = append(parts, "ISBN "+*b.IdentityHint)
	}
	if len(b.Subjects) > 0 {
		parts = append(parts, strings.Join(b.Subjects[:min(3, len(b.Subjects))], ", "))
	}

	if len(parts) == 0 {
		return "No metadata available"
	}

	metadata := strings.Join(parts, " | ")
	if availableWidth > 0 && len(metadata) > availableWidth {
		metadata = truncate(metadata, availableWidth)
	}
	return metadata
}

// FormatPrice renders the price with its currency, or "no offer".
func FormatPrice(b book.CanonicalBook) string {
	if b.Price == nil {
		return "no offer"
	}
	currency := ""
	if b.Currency != nil {
		currency = " " + *b.Currency
	}
	return fmt.Sprintf("%.2f%s", *b.Price, currency)
}

func yearLabel(b book.CanonicalBook) string {
	if b.FirstPublishYear == nil {
		return "n.d."
	}
	return fmt.Sprintf("%d", *b.FirstPublishYear)
}

func categoryLabel(b book.CanonicalBook) string {
	if b.Category == nil {
		return "book"
	}
	return *b.Category
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
