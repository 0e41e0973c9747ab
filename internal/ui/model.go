package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nconklindev/rentport/internal/config"
	"github.com/nconklindev/rentport/internal/converter"
	"github.com/nconklindev/rentport/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

type state int

const (
	statePickProperties state = iota
	statePickLeases
	stateOptions
	stateProcessing
	stateComplete
	stateError
)

var errNoInput = errors.New("no input selected: pick a properties file, a leases file, or both")

// InputTypes are the file types the pickers offer.
var InputTypes = []string{".xlsx", ".xlsm", ".html", ".htm", ".csv"}

// option is a toggle on the options screen bound to a config field.
type option struct {
	label string
	value *bool
}

type Model struct {
	state        state
	cfg          *config.Config
	log          zerolog.Logger
	filepicker   filepicker.Model
	options      []option
	cursor       int
	result       *types.ConversionResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan conversionResultMsg
}

type conversionResultMsg struct {
	result *types.ConversionResult
	err    error
}

type conversionCompleteMsg struct {
	result *types.ConversionResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

// NewModel starts the interactive flow. Inputs already set in cfg are
// pre-selected and their picker is skipped.
func NewModel(cfg config.Config, log zerolog.Logger) Model {
	fp := filepicker.New()
	fp.AllowedTypes = InputTypes
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(colorWarm)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorWarm)
	fp.Styles.File = lipgloss.NewStyle().Foreground(colorText)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(colorMuted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(colorMuted)

	prog := progress.New(progress.WithGradient(string(colorAccent), "#FF9F5A"))

	c := &cfg
	m := Model{
		cfg:        c,
		log:        log,
		filepicker: fp,
		progress:   prog,
		options: []option{
			{"Add lease extension columns", &c.LeaseExtensions},
			{"Only accept lease file numbers with '/'", &c.RequireSlash},
			{"Read lease columns by position when no header is found", &c.PositionalFallback},
		},
	}

	switch {
	case c.PropertiesInput == "":
		m.state = statePickProperties
	case c.LeasesInput == "":
		m.state = statePickLeases
	default:
		m.state = stateOptions
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

// Result is the finished conversion, or nil when the user quit early.
func (m Model) Result() *types.ConversionResult {
	return m.result
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, subtitle, selections and help text.
		height := msg.Height - 16
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case statePickProperties, statePickLeases:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "s":
				return m.advance()
			}

		case stateOptions:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(m.options)-1 {
					m.cursor++
				}
			case " ":
				opt := m.options[m.cursor]
				*opt.value = !*opt.value
			case "enter":
				m.state = stateProcessing
				return m.convert()
			}

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case conversionCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == statePickProperties || m.state == statePickLeases {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m.selectFile(path)
		}
		return m, cmd
	}

	return m, nil
}

// selectFile records the picked file for the current picker and moves on.
func (m Model) selectFile(path string) (Model, tea.Cmd) {
	switch m.state {
	case statePickProperties:
		m.cfg.PropertiesInput = path
	case statePickLeases:
		m.cfg.LeasesInput = path
	}
	return m.advance()
}

// advance moves from one picker to the next, and from the last picker to
// the options screen once at least one input is chosen.
func (m Model) advance() (Model, tea.Cmd) {
	switch m.state {
	case statePickProperties:
		if m.cfg.LeasesInput == "" {
			m.state = statePickLeases
			return m, nil
		}
		m.state = stateOptions
	case statePickLeases:
		if !m.cfg.HasInput() {
			m.err = errNoInput
			m.state = stateError
			return m, nil
		}
		m.state = stateOptions
	}
	return m, nil
}

func (m Model) convert() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan conversionResultMsg, 1)

	opts := converter.OptionsFromConfig(*m.cfg)
	// Picking no leases file is a choice here, not a request to search.
	opts.DiscoverLeases = false
	conv := converter.New(opts, m.log)

	progressChan := m.progressChan
	resultChan := m.resultChan

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				result, err := conv.Run(progressChan)
				resultChan <- conversionResultMsg{result: result, err: err}

				close(progressChan)
				close(resultChan)
			}()
			return waitForProgressMsg{}
		},
		m.progress.Init(),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case statePickProperties, statePickLeases:
		return m.viewFilePicker()
	case stateOptions:
		return m.viewOptions()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) maxPathLen() int {
	// Leave room for padding and borders.
	n := m.width - 20
	if n < 30 {
		n = 30
	}
	return n
}

func (m Model) selection(label, path string) string {
	if path == "" {
		return UnselectedStyle.Render(fmt.Sprintf("%s: (none)", label))
	}
	return CheckedStyle.Render(fmt.Sprintf("%s: %s", label, truncatePath(path, m.maxPathLen())))
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	title := TitleStyle.Render("🏠 Rentport - Property & Lease Export")
	byLine := SubtitleStyle.Render("Hebrew spreadsheets and HTML exports to import-ready CSV")

	s.WriteString(lipgloss.JoinVertical(lipgloss.Left, title, byLine))
	s.WriteString("\n")

	what := "properties"
	if m.state == statePickLeases {
		what = "leases"
	}
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Select the %s file (%s)", what, strings.Join(InputTypes, ", "))))
	s.WriteString("\n")
	s.WriteString(m.selection("Properties", m.cfg.PropertiesInput))
	s.WriteString("\n")
	s.WriteString(m.selection("Leases", m.cfg.LeasesInput))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: select • s: skip • q: quit"))

	return s.String()
}

func (m Model) viewOptions() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🏠 Conversion Options"))
	s.WriteString("\n\n")
	s.WriteString(m.selection("Properties", m.cfg.PropertiesInput))
	s.WriteString("\n")
	s.WriteString(m.selection("Leases", m.cfg.LeasesInput))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Output directory: %s", truncatePath(m.cfg.OutputDir, m.maxPathLen()))))
	s.WriteString("\n\n")

	for i, opt := range m.options {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		checked := " "
		if *opt.value {
			checked = "✓"
		}

		line := fmt.Sprintf("%s [%s] %s", cursor, checked, opt.label)

		if m.cursor == i {
			line = SelectedStyle.Render(line)
		} else if *opt.value {
			line = CheckedStyle.Render(line)
		} else {
			line = UnselectedStyle.Render(line)
		}

		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓: navigate • space: toggle • enter: convert • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🏠 Processing..."))
	s.WriteString("\n\n")
	s.WriteString("Classifying rows and writing CSV files...")
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(RenderSummary(m.result, m.maxPathLen()))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press enter or q to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press enter or q to exit"))

	return BoxStyle.Render(s.String())
}

// truncatePath shortens long paths from the left so the file name stays
// visible.
func truncatePath(path string, max int) string {
	r := []rune(path)
	if len(r) <= max || max <= 3 {
		return path
	}
	return "..." + string(r[len(r)-max+3:])
}
