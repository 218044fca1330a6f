package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/apple-arcade/internal/core"
	"github.com/vovakirdan/apple-arcade/internal/ledger"
	"github.com/vovakirdan/apple-arcade/internal/registry"
	"github.com/vovakirdan/apple-arcade/internal/storage"
)

// Dashboard layout constants
const (
	headerRows     = 1
	footerRows     = 2
	historyLimit   = 50
	requestTimeout = 5 * time.Second
)

// Tab identifies a dashboard page.
type Tab int

const (
	TabPlay Tab = iota
	TabLeaderboard
	TabProfile
	TabHistory
	tabCount
)

var tabNames = [tabCount]string{"Play", "Leaderboard", "Profile", "History"}

// String returns the tab title.
func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "?"
	}
	return tabNames[t]
}

// DashboardConfig wires a dashboard to its game, storage and ledger.
type DashboardConfig struct {
	Game    registry.Game
	Runtime core.RuntimeConfig
	Store   *storage.Store
	Player  ledger.Address

	// Ledger is the board to submit to. When nil and LedgerPinned is false,
	// the dashboard picks up the latest deployed ledger on refresh.
	Ledger       *ledger.Ledger
	LedgerPinned bool

	Refresh time.Duration // leaderboard reload interval
	TopN    int
	Context context.Context
	Logger  *log.Logger
}

type boardMsg struct {
	ledger  *ledger.Ledger
	entries []ledger.Entry
	err     error
}

type profileMsg struct {
	info    ledger.PlayerInfo
	stats   *storage.PlayerStats
	history []storage.ScoreEntry
	err     error
}

type submitMsg struct {
	res ledger.Result
	err error
}

type registerMsg struct {
	err error
}

// Dashboard is the top-level Bubble Tea model: the game plus leaderboard,
// profile and history pages.
type Dashboard struct {
	cfg       DashboardConfig
	ledger    *ledger.Ledger
	submitter *ledger.Submitter
	log       *log.Logger

	game    GameModel
	tab     Tab
	width   int
	height  int
	keys    DashboardKeyMap
	help    help.Model
	spinner spinner.Model
	board   table.Model
	history table.Model
	profile viewport.Model

	entries   []ledger.Entry
	loading   bool
	loadedAt  time.Time
	boardErr  error
	info      ledger.PlayerInfo
	stats     *storage.PlayerStats
	scores    []storage.ScoreEntry
	status    string
	statusErr bool
	quitting  bool
}

// NewDashboard builds a dashboard. The game is reset to fit the play area.
func NewDashboard(cfg DashboardConfig) Dashboard {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = 10 * time.Second
	}
	if cfg.TopN <= 0 {
		cfg.TopN = ledger.DefaultTop
	}

	width, height := cfg.Runtime.ScreenW, cfg.Runtime.ScreenH
	runtime := cfg.Runtime
	runtime.ScreenH = max(1, height-headerRows-footerRows)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	h := help.New()
	h.Width = width

	m := Dashboard{
		cfg:     cfg,
		ledger:  cfg.Ledger,
		log:     cfg.Logger,
		game:    NewGameModel(cfg.Game, runtime),
		width:   width,
		height:  height,
		keys:    DefaultDashboardKeyMap(),
		help:    h,
		spinner: sp,
		loading: true,
	}
	m.submitter = ledger.NewSubmitter(cfg.Store, m.ledger, cfg.Game.ID(), cfg.Logger)
	m.board = m.newBoardTable()
	m.history = m.newHistoryTable()
	m.profile = viewport.New(width, m.contentHeight())
	m.refreshProfile()
	return m
}

// Init starts the game loop, the spinner and the first data loads.
func (m Dashboard) Init() tea.Cmd {
	return tea.Batch(
		m.game.Init(),
		m.spinner.Tick,
		m.loadBoardCmd(),
		m.loadProfileCmd(),
		refreshCmd(m.cfg.Refresh),
	)
}

// Update handles messages for the dashboard.
func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.tab == TabPlay && msg.Y >= headerRows {
			m.game, cmd = m.game.Update(msg)
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		m.game, cmd = m.game.Update(msg)
		return m, cmd

	case GameOverMsg:
		m.setStatus("Submitting score...", false)
		return m, m.submitCmd(msg.Score)

	case submitMsg:
		if msg.err != nil {
			m.setStatus("Score not saved: "+msg.err.Error(), true)
		} else {
			m.setStatus(msg.res.Message(), false)
		}
		return m, tea.Batch(m.loadBoardCmd(), m.loadProfileCmd())

	case registerMsg:
		switch {
		case errors.Is(msg.err, ledger.ErrAlreadyRegistered):
			m.setStatus("Already registered", false)
		case msg.err != nil:
			m.setStatus("Registration failed: "+msg.err.Error(), true)
		default:
			m.setStatus(fmt.Sprintf("You are now registered! Paid %s %s", ledger.FormatAmount(m.ledger.Fee()), ledger.Symbol), false)
		}
		return m, tea.Batch(m.loadBoardCmd(), m.loadProfileCmd())

	case refreshMsg:
		m.loading = true
		return m, tea.Batch(m.loadBoardCmd(), refreshCmd(m.cfg.Refresh))

	case boardMsg:
		m.loading = false
		m.boardErr = msg.err
		if msg.err != nil {
			m.log.Warn("leaderboard refresh failed", "err", msg.err)
			return m, nil
		}
		if m.ledger == nil && msg.ledger != nil {
			m.ledger = msg.ledger
			m.submitter = ledger.NewSubmitter(m.cfg.Store, m.ledger, m.cfg.Game.ID(), m.log)
			m.log.Info("using ledger", "address", m.ledger.Address())
		}
		m.entries = msg.entries
		m.loadedAt = time.Now()
		m.updateBoardRows()
		return m, nil

	case profileMsg:
		if msg.err != nil {
			m.log.Warn("profile refresh failed", "err", msg.err)
			return m, nil
		}
		m.info = msg.info
		m.stats = msg.stats
		m.scores = msg.history
		m.updateHistoryRows()
		m.refreshProfile()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey routes keys: global bindings first, then the active tab.
func (m Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	case key.Matches(msg, m.keys.Play):
		return m.switchTab(TabPlay)
	case key.Matches(msg, m.keys.Board):
		return m.switchTab(TabLeaderboard)
	case key.Matches(msg, m.keys.Profile):
		return m.switchTab(TabProfile)
	case key.Matches(msg, m.keys.History):
		return m.switchTab(TabHistory)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Register):
		return m.register()
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabPlay:
		m.game, cmd = m.game.Update(msg)
	case TabLeaderboard:
		if key.Matches(msg, m.keys.Refresh) {
			m.loading = true
			return m, m.loadBoardCmd()
		}
		m.board, cmd = m.board.Update(msg)
	case TabProfile:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.loadProfileCmd()
		}
		m.profile, cmd = m.profile.Update(msg)
	case TabHistory:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.loadProfileCmd()
		}
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

// switchTab changes page. Leaving Play pauses a running game.
func (m Dashboard) switchTab(t Tab) (tea.Model, tea.Cmd) {
	if t == m.tab {
		return m, nil
	}
	if m.tab == TabPlay {
		m.game.Pause()
	}
	m.tab = t

	switch t {
	case TabProfile, TabHistory:
		return m, m.loadProfileCmd()
	case TabLeaderboard:
		m.loading = true
		return m, m.loadBoardCmd()
	}
	return m, nil
}

func (m Dashboard) register() (tea.Model, tea.Cmd) {
	if m.ledger == nil {
		m.setStatus("No leaderboard deployed yet (arcade deploy)", true)
		return m, nil
	}
	if m.info.Registered {
		m.setStatus("Already registered", false)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Registering (%s %s)...", ledger.FormatAmount(m.ledger.Fee()), ledger.Symbol), false)
	return m, m.registerCmd()
}

func (m *Dashboard) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Dashboard) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.game.Resize(width, m.contentHeight())
	m.board = m.newBoardTable()
	m.updateBoardRows()
	m.history = m.newHistoryTable()
	m.updateHistoryRows()
	m.profile.Width = width
	m.profile.Height = m.contentHeight()
	m.refreshProfile()
}

func (m Dashboard) contentHeight() int {
	return max(1, m.height-headerRows-footerRows)
}

// Commands. They capture what they need so they can run off the update loop.

func (m Dashboard) loadBoardCmd() tea.Cmd {
	ctx, store, l, pinned, topN := m.cfg.Context, m.cfg.Store, m.ledger, m.cfg.LedgerPinned, m.cfg.TopN
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		if l == nil {
			if pinned {
				return boardMsg{}
			}
			latest, err := ledger.OpenLatest(ctx, store)
			if errors.Is(err, ledger.ErrUnknownLedger) {
				return boardMsg{}
			}
			if err != nil {
				return boardMsg{err: err}
			}
			l = latest
		}

		entries, err := l.Top(ctx, topN)
		return boardMsg{ledger: l, entries: entries, err: err}
	}
}

func (m Dashboard) loadProfileCmd() tea.Cmd {
	ctx, store, l, player, gameID := m.cfg.Context, m.cfg.Store, m.ledger, m.cfg.Player, m.cfg.Game.ID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		var msg profileMsg
		msg.info.Address = player
		if l != nil {
			info, err := l.Player(ctx, player)
			if err != nil {
				return profileMsg{err: err}
			}
			msg.info = info
		}

		stats, err := store.GetPlayerStats(gameID, player.String())
		if err != nil {
			return profileMsg{err: err}
		}
		msg.stats = stats

		history, err := store.PlayerHistory(gameID, player.String(), historyLimit)
		if err != nil {
			return profileMsg{err: err}
		}
		msg.history = history
		return msg
	}
}

func (m Dashboard) submitCmd(score int) tea.Cmd {
	ctx, sub, player := m.cfg.Context, m.submitter, m.cfg.Player
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		res, err := sub.Submit(ctx, player, score)
		return submitMsg{res: res, err: err}
	}
}

func (m Dashboard) registerCmd() tea.Cmd {
	ctx, l, player, logger := m.cfg.Context, m.ledger, m.cfg.Player, m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		err := l.Register(ctx, player, l.Fee())
		if err == nil {
			logger.Info("player registered", "player", player.Short(), "ledger", l.Address().Short())
		}
		return registerMsg{err: err}
	}
}

// Tables

func (m Dashboard) newBoardTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 7},
		{Title: "Wallet", Width: 20},
		{Title: "Score", Width: 8},
	}
	return newStyledTable(columns, m.contentHeight()-4)
}

func (m Dashboard) newHistoryTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Score", Width: 8},
		{Title: "Date", Width: 14},
		{Title: "Leaderboard", Width: 12},
	}
	return newStyledTable(columns, m.contentHeight()-3)
}

func newStyledTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(2, height)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *Dashboard) updateBoardRows() {
	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		wallet := e.Player.Short()
		if e.Player == m.cfg.Player {
			wallet += " (you)"
		}
		rows[i] = table.Row{ledger.RankLabel(e.Rank), wallet, fmt.Sprintf("%d", e.Score)}
	}
	m.board.SetRows(rows)
}

func (m *Dashboard) updateHistoryRows() {
	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		saved := ""
		if s.Submitted {
			saved = "✓ saved"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", s.Score),
			s.CreatedAt.Local().Format("Jan 02 15:04"),
			saved,
		}
	}
	m.history.SetRows(rows)
	m.history.GotoTop()
}

func (m *Dashboard) refreshProfile() {
	m.profile.SetContent(m.profileText())
}

func (m Dashboard) profileText() string {
	label := lipgloss.NewStyle().Bold(true).Width(16)
	var b strings.Builder

	b.WriteString(titleStyle.Render("👤 Player Profile"))
	b.WriteString("\n\n")

	line := func(k, v string) {
		b.WriteString(label.Render(k))
		b.WriteString(v)
		b.WriteString("\n")
	}

	line("Wallet:", m.cfg.Player.String())
	if m.info.Registered {
		line("Status:", "✅ Registered")
	} else {
		line("Status:", "❌ Not registered")
	}
	line("Highest score:", fmt.Sprintf("%d", m.info.HighScore))

	if m.stats != nil {
		line("Games played:", fmt.Sprintf("%d", m.stats.GamesCount))
		line("Best local:", fmt.Sprintf("%d", m.stats.HighScore))
		line("Average:", fmt.Sprintf("%.1f", m.stats.AvgScore))
		line("Submitted:", fmt.Sprintf("%d", m.stats.Submitted))
		if !m.stats.LastPlayed.IsZero() {
			line("Last played:", m.stats.LastPlayed.Local().Format("Jan 02 15:04"))
		}
	}

	b.WriteString("\n")
	if m.ledger == nil {
		b.WriteString(dimStyle.Render("No leaderboard deployed yet."))
		b.WriteString("\n")
		return b.String()
	}

	line("Leaderboard:", m.ledger.Address().String())
	line("Entry fee:", ledger.FormatAmount(m.ledger.Fee())+" "+ledger.Symbol)
	if !m.info.Registered {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠️ You must register (%s %s) to save scores. Press g.",
			ledger.FormatAmount(m.ledger.Fee()), ledger.Symbol)))
		b.WriteString("\n")
	}
	return b.String()
}

// View

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

// View renders the dashboard.
func (m Dashboard) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	var content string
	switch m.tab {
	case TabPlay:
		content = m.game.View()
	case TabLeaderboard:
		content = m.renderBoard()
	case TabProfile:
		content = m.profile.View()
	case TabHistory:
		content = m.renderHistory()
	}
	b.WriteString(lipgloss.NewStyle().Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(content))
	b.WriteString("\n")

	if m.statusErr {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(warnStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Dashboard) renderTabs() string {
	tabs := make([]string, tabCount)
	for i := range tabCount {
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(i.String())
		} else {
			tabs[i] = tabStyle.Render(i.String())
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	who := dimStyle.Render(m.cfg.Player.Short())
	gap := m.width - lipgloss.Width(bar) - lipgloss.Width(who)
	if gap < 1 {
		return bar
	}
	return bar + strings.Repeat(" ", gap) + who
}

func (m Dashboard) renderBoard() string {
	var b strings.Builder

	title := fmt.Sprintf("🏆 Top %d Players", m.cfg.TopN)
	if m.loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case m.ledger == nil && !m.loading:
		b.WriteString(dimStyle.Render("No leaderboard deployed yet. Run: arcade deploy"))
	case m.boardErr != nil:
		b.WriteString(errorStyle.Render("Error fetching leaderboard: " + m.boardErr.Error()))
	case len(m.entries) == 0 && !m.loading:
		b.WriteString(dimStyle.Render("No players yet."))
	default:
		b.WriteString(m.board.View())
	}

	if m.ledger != nil {
		b.WriteString("\n")
		info := fmt.Sprintf("Ledger %s  fee %s %s", m.ledger.Address().Short(), ledger.FormatAmount(m.ledger.Fee()), ledger.Symbol)
		if !m.loadedAt.IsZero() {
			info += "  updated " + m.loadedAt.Format("15:04:05")
		}
		b.WriteString(dimStyle.Render(info))
	}
	return b.String()
}

func (m Dashboard) renderHistory() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📜 Your Games"))
	b.WriteString("\n")
	if len(m.scores) == 0 {
		b.WriteString(dimStyle.Render("No games yet. Play one on the Play tab!"))
		return b.String()
	}
	b.WriteString(m.history.View())
	return b.String()
}

// ActiveTab returns the page being shown.
func (m Dashboard) ActiveTab() Tab {
	return m.tab
}

// Status returns the current status line.
func (m Dashboard) Status() string {
	return m.status
}

// Game returns the hosted game model.
func (m Dashboard) Game() GameModel {
	return m.game
}

// Run starts a full-screen dashboard on the local terminal.
func Run(cfg DashboardConfig) error {
	p := tea.NewProgram(
		NewDashboard(cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
