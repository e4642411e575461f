// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/jeranaias/shopchat/internal/exchange"
	"github.com/jeranaias/shopchat/internal/model"
	"github.com/jeranaias/shopchat/internal/ui/markup"
	"github.com/jeranaias/shopchat/internal/ui/styles"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	maxPanelWidth = 76
	noticeTTL     = 2 * time.Second
)

// Controller is the part of exchange.Controller the widget drives.
type Controller interface {
	Submit(ctx context.Context, text string) error
	SelectOption(ctx context.Context, group *exchange.OptionGroup, label string) error
	PanelShown(ctx context.Context) error
}

type pendingItem struct {
	handle exchange.PendingHandle
	label  string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model of the chat widget.
type Model struct {
	ctx    context.Context
	ctrl   Controller
	format markup.Formatter
	theme  *styles.Theme
	keys   KeyMap
	logger zerolog.Logger
	copy   func(string) error
	title  string

	open          bool
	width, height int

	viewport     viewport.Model
	input        textinput.Model
	spinner      spinner.Model
	inputEnabled bool

	turns     []model.Turn
	rendered  []string
	chips     *exchange.OptionGroup
	chipFocus int
	pending   []pendingItem

	online, known bool
	notice        string
	noticeSeq     int
}

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the panel header.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithPlaceholder sets the input placeholder.
func WithPlaceholder(text string) Option {
	return func(m *Model) { m.input.Placeholder = text }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) { m.logger = l.With().Str("component", "widget").Logger() }
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copy = write
		}
	}
}

// WithKeyMap replaces the key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// New creates a closed widget. ctx bounds every controller call it makes.
func New(ctx context.Context, ctrl Controller, format markup.Formatter, theme *styles.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if theme == nil {
		theme = styles.NewTheme()
	}
	if format == nil {
		format = markup.PlainFormatter
	}

	m := Model{
		ctx:          ctx,
		ctrl:         ctrl,
		format:       format,
		theme:        theme,
		keys:         DefaultKeyMap(),
		logger:       zerolog.Nop(),
		copy:         clipboard.WriteAll,
		title:        "Asistente",
		width:        defaultWidth,
		height:       defaultHeight,
		viewport:     viewport.New(defaultWidth, defaultHeight),
		input:        ti,
		spinner:      sp,
		inputEnabled: true,
		chipFocus:    -1,
	}
	m.spinner.Style = theme.Spinner
	for _, opt := range opts {
		opt(&m)
	}
	m.layout()
	return m
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Open reports whether the panel is visible.
func (m Model) Open() bool { return m.open }

// Turns returns the turns received so far.
func (m Model) Turns() []model.Turn { return m.turns }

// Chips returns the offered option group, or nil.
func (m Model) Chips() *exchange.OptionGroup { return m.chips }

// ChipFocus returns the focused chip index, -1 when the input has focus.
func (m Model) ChipFocus() int { return m.chipFocus }

// PendingLabels returns the labels of the visible pending indicators.
func (m Model) PendingLabels() []string {
	out := make([]string, 0, len(m.pending))
	for _, p := range m.pending {
		out = append(out, p.label)
	}
	return out
}

// InputEnabled reports whether the input accepts text.
func (m Model) InputEnabled() bool { return m.inputEnabled }

// InputValue returns the current input text.
func (m Model) InputValue() string { return m.input.Value() }

// Notice returns the transient footer notice.
func (m Model) Notice() string { return m.notice }

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		if r, ok := m.format.(interface{ SetWidth(int) error }); ok {
			if err := r.SetWidth(m.bubbleWidth()); err != nil {
				m.logger.Warn().Err(err).Msg("formatter resize failed")
			}
		}
		m.rerender()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TurnMsg:
		m.turns = append(m.turns, msg.Turn)
		m.rendered = append(m.rendered, m.renderTurn(msg.Turn))
		m.refresh()
		return m, nil

	case ChipsMsg:
		if msg.Group != nil && len(msg.Group.Labels) > 0 {
			m.chips = msg.Group
			m.chipFocus = -1
			m.layout()
		}
		return m, nil

	case PendingShownMsg:
		m.pending = append(m.pending, pendingItem{handle: msg.Handle, label: msg.Label})
		m.layout()
		if len(m.pending) == 1 {
			return m, m.spinner.Tick
		}
		return m, nil

	case PendingHiddenMsg:
		for i, p := range m.pending {
			if p.handle == msg.Handle {
				m.pending = append(m.pending[:i], m.pending[i+1:]...)
				break
			}
		}
		m.layout()
		return m, nil

	case InputEnabledMsg:
		m.inputEnabled = msg.Enabled
		if msg.Enabled && m.open {
			return m, m.input.Focus()
		}
		if !msg.Enabled {
			m.input.Blur()
		}
		return m, nil

	case ExchangeDoneMsg:
		m.logResult(msg.Err)
		return m, nil

	case ConnectivityMsg:
		m.online, m.known = msg.Online, true
		return m, nil

	case PlaceholderMsg:
		m.input.Placeholder = msg.Text
		return m, nil

	case noticeClearMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		if len(m.pending) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m.toggle()
	}

	if !m.open {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		return m.toggle()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m.copyLastReply()
	case key.Matches(msg, m.keys.NextChip):
		m.cycleChips(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevChip):
		m.cycleChips(-1)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	if !m.inputEnabled {
		return m, nil
	}
	m.chipFocus = -1
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// toggle opens or closes the panel. Every open notifies the controller,
// which runs history replay and the opening exchange only the first time.
func (m Model) toggle() (tea.Model, tea.Cmd) {
	m.open = !m.open
	if !m.open {
		m.input.Blur()
		return m, nil
	}

	m.layout()
	ctx, ctrl := m.ctx, m.ctrl
	shown := func() tea.Msg {
		return ExchangeDoneMsg{Err: ctrl.PanelShown(ctx)}
	}
	if m.inputEnabled {
		return m, tea.Batch(m.input.Focus(), shown)
	}
	return m, shown
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.inputEnabled {
		return m, nil
	}
	ctx, ctrl := m.ctx, m.ctrl

	if m.chips != nil && m.chipFocus >= 0 {
		group, label := m.chips, m.chips.Labels[m.chipFocus]
		m.chips = nil
		m.chipFocus = -1
		m.layout()
		return m, func() tea.Msg {
			return ExchangeDoneMsg{Err: ctrl.SelectOption(ctx, group, label)}
		}
	}

	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.input.Reset()
	return m, func() tea.Msg {
		return ExchangeDoneMsg{Err: ctrl.Submit(ctx, text)}
	}
}

func (m *Model) cycleChips(step int) {
	if m.chips == nil {
		return
	}
	n := len(m.chips.Labels)
	switch {
	case m.chipFocus < 0 && step > 0:
		m.chipFocus = 0
	case m.chipFocus < 0:
		m.chipFocus = n - 1
	default:
		m.chipFocus = (m.chipFocus + step + n) % n
	}
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	for i := len(m.turns) - 1; i >= 0; i-- {
		if m.turns[i].Role != model.RoleBot {
			continue
		}
		if err := m.copy(markup.ToPlain(m.turns[i].Content)); err != nil {
			m.logger.Warn().Err(err).Msg("clipboard write failed")
			return m.flash("Copy failed")
		}
		return m.flash("Copied to clipboard")
	}
	return m.flash("Nothing to copy")
}

func (m Model) flash(text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeClearMsg{seq: seq}
	})
}

// logResult records the outcome of a controller call. Failures the user
// must see have already been rendered as turns.
func (m Model) logResult(err error) {
	switch {
	case err == nil:
	case errors.Is(err, exchange.ErrEmptyMessage),
		errors.Is(err, exchange.ErrRateLimited),
		errors.Is(err, exchange.ErrExchangePending),
		errors.Is(err, exchange.ErrOptionsUsed),
		errors.Is(err, exchange.ErrUnknownOption),
		errors.Is(err, context.Canceled):
		m.logger.Debug().Err(err).Msg("input not sent")
	default:
		m.logger.Error().Err(err).Msg("exchange failed")
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) panelWidth() int {
	w := m.width - 2
	if w > maxPanelWidth {
		w = maxPanelWidth
	}
	if w < 24 {
		w = 24
	}
	return w
}

// bubbleWidth is the text width inside a turn bubble: panel border and
// padding, then the bubble's own border and padding.
func (m Model) bubbleWidth() int {
	return m.panelWidth() - 4 - 2
}

func (m *Model) layout() {
	pw := m.panelWidth()
	inner := pw - 4

	m.input.Width = inner - lipgloss.Width(m.input.Prompt) - 1
	if m.input.Width < 8 {
		m.input.Width = 8
	}

	// badge + panel border + header + input (2) + help
	h := m.height - 1 - 2 - 1 - 2 - 1 - len(m.pending)
	if m.chips != nil {
		h -= lipgloss.Height(m.renderChips())
	}
	if h < 1 {
		h = 1
	}
	m.viewport.Width = inner
	m.viewport.Height = h
}

func (m *Model) rerender() {
	for i, t := range m.turns {
		m.rendered[i] = m.renderTurn(t)
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.rendered, "\n\n"))
	m.viewport.GotoBottom()
}
