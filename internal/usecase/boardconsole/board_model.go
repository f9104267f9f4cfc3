package boardconsole

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"candidatevet/internal/bootstrap/logging"
	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
	usecasevetting "candidatevet/internal/usecase/vetting"
)

const maxAuditLines = 8

// VettingService is the slice of the vetting usecase the console drives.
type VettingService interface {
	PipelineBoard(ctx context.Context) ([]usecasevetting.StageColumn, error)
	ListSections(ctx context.Context, vettingID uint64) ([]usecasevetting.SectionView, error)
	TransitionStage(ctx context.Context, caps domainvetting.Capabilities, input usecasevetting.TransitionStageInput) (ports.Vetting, error)
}

type AuditService interface {
	GetLatestAudit(ctx context.Context, vettingID uint64) (ports.DigitalAudit, error)
	StartAndRun(ctx context.Context, caps domainvetting.Capabilities, vettingID uint64) (ports.DigitalAudit, error)
}

type BoardOptions struct {
	Capabilities    domainvetting.Capabilities
	StageFilter     string
	RefreshInterval time.Duration
}

// row is one vetting flattened out of its stage column.
type row struct {
	vetting ports.Vetting
}

type boardModel struct {
	ctx             context.Context
	vettings        VettingService
	audits          AuditService
	caps            domainvetting.Capabilities
	stageFilter     domainvetting.Stage
	refreshInterval time.Duration

	columns       []usecasevetting.StageColumn
	rows          []row
	selectedIndex int
	sections      []usecasevetting.SectionView
	audit         ports.DigitalAudit
	hasAudit      bool
	hasDetail     bool
	status        string
	auditLogs     []string
}

type boardLoadedMsg struct {
	columns []usecasevetting.StageColumn
	err     error
}

type detailLoadedMsg struct {
	vettingID uint64
	sections  []usecasevetting.SectionView
	audit     ports.DigitalAudit
	hasAudit  bool
	err       error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action    string
	vettingID uint64
	result    string
	err       error
}

func NewBoardModel(ctx context.Context, vettings VettingService, audits AuditService, options BoardOptions) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	var stageFilter domainvetting.Stage
	if parsed, err := domainvetting.ParseStage(options.StageFilter); err == nil {
		stageFilter = parsed
	}

	return &boardModel{
		ctx:             ctx,
		vettings:        vettings,
		audits:          audits,
		caps:            options.Capabilities,
		stageFilter:     stageFilter,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadBoardCmd(), m.tickCmd())
}

func (m *boardModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadBoardCmd(), m.tickCmd())
	case boardLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.columns = msg.columns
		m.rows = flattenColumns(msg.columns, m.stageFilter)
		if len(m.rows) == 0 {
			m.selectedIndex = 0
			m.hasDetail = false
			m.status = "pipeline is empty"
			return m, nil
		}
		if m.selectedIndex >= len(m.rows) {
			m.selectedIndex = len(m.rows) - 1
		}
		m.status = fmt.Sprintf("refreshed, %d vettings", len(m.rows))
		return m, m.loadDetailCmd()
	case detailLoadedMsg:
		selected, ok := m.selected()
		if !ok || selected.VettingID != msg.vettingID {
			return m, nil
		}
		if msg.err != nil {
			m.hasDetail = false
			m.status = "detail failed: " + msg.err.Error()
			return m, nil
		}
		m.sections = msg.sections
		m.audit = msg.audit
		m.hasAudit = msg.hasAudit
		m.hasDetail = true
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = fmt.Sprintf("%s done: %s", msg.action, msg.result)
		}
		m.appendAuditLog(msg.action, msg.vettingID, msg.result, msg.err)
		return m, m.loadBoardCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadBoardCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				return m, m.loadDetailCmd()
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.rows)-1 {
				m.selectedIndex++
				return m, m.loadDetailCmd()
			}
			return m, nil
		case "n":
			return m, m.advanceCmd()
		case "a":
			return m, m.runAuditCmd()
		}
	}
	return m, nil
}

func (m *boardModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Vetting Board"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"stage=%s refresh=%s %s",
		firstNonEmpty(string(m.stageFilter), "all"),
		m.refreshInterval,
		stageCounts(m.columns),
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Pipeline"))
	builder.WriteString("\n")
	if len(m.rows) == 0 {
		builder.WriteString(dimStyle.Render("- no vettings"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.rows {
			line := fmt.Sprintf("#%d [%s] %s for %s", item.vetting.VettingID, item.vetting.Stage, item.vetting.CandidateName, officeLine(item.vetting))
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	if !m.hasDetail {
		builder.WriteString(dimStyle.Render("- no detail"))
		builder.WriteString("\n\n")
	} else {
		if m.hasAudit {
			builder.WriteString(fmt.Sprintf("Audit: %s %s\n", m.audit.Status, auditScore(m.audit)))
		} else {
			builder.WriteString("Audit: none\n")
		}
		builder.WriteString("Sections:\n")
		for _, section := range m.sections {
			builder.WriteString(fmt.Sprintf("- %s %s assigned=%d\n", section.SectionType, section.Status, len(section.AssignedMemberIDs)))
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Audit Log"))
	builder.WriteString("\n")
	if len(m.auditLogs) == 0 {
		builder.WriteString(dimStyle.Render("- no actions"))
		builder.WriteString("\n\n")
	} else {
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: up/k down/j move  g refresh  n next stage  a run audit  q quit"))
	return builder.String()
}

func (m *boardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *boardModel) loadBoardCmd() tea.Cmd {
	return func() tea.Msg {
		columns, err := m.vettings.PipelineBoard(m.ctx)
		return boardLoadedMsg{columns: columns, err: err}
	}
}

func (m *boardModel) loadDetailCmd() tea.Cmd {
	selected, ok := m.selected()
	if !ok {
		return nil
	}
	vettingID := selected.VettingID
	return func() tea.Msg {
		sections, err := m.vettings.ListSections(m.ctx, vettingID)
		if err != nil {
			return detailLoadedMsg{vettingID: vettingID, err: err}
		}
		audit, err := m.audits.GetLatestAudit(m.ctx, vettingID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return detailLoadedMsg{vettingID: vettingID, err: err}
		}
		return detailLoadedMsg{
			vettingID: vettingID,
			sections:  sections,
			audit:     audit,
			hasAudit:  err == nil,
		}
	}
}

func (m *boardModel) advanceCmd() tea.Cmd {
	selected, ok := m.selected()
	if !ok {
		m.status = "no vetting selected"
		return nil
	}
	next, ok := domainvetting.NextStage(selected.Stage)
	if !ok {
		m.status = fmt.Sprintf("%s is the final stage", selected.Stage)
		return nil
	}
	vettingID := selected.VettingID
	m.status = "advancing to " + string(next)
	return func() tea.Msg {
		vetting, err := m.vettings.TransitionStage(m.ctx, m.caps, usecasevetting.TransitionStageInput{
			VettingID: vettingID,
			To:        string(next),
		})
		if err != nil {
			return actionDoneMsg{action: "advance", vettingID: vettingID, err: err}
		}
		return actionDoneMsg{action: "advance", vettingID: vettingID, result: string(vetting.Stage)}
	}
}

func (m *boardModel) runAuditCmd() tea.Cmd {
	selected, ok := m.selected()
	if !ok {
		m.status = "no vetting selected"
		return nil
	}
	vettingID := selected.VettingID
	m.status = "running audit"
	return func() tea.Msg {
		audit, err := m.audits.StartAndRun(m.ctx, m.caps, vettingID)
		if err != nil {
			return actionDoneMsg{action: "audit", vettingID: vettingID, err: err}
		}
		return actionDoneMsg{action: "audit", vettingID: vettingID, result: string(audit.Status) + " " + auditScore(audit)}
	}
}

func (m *boardModel) selected() (ports.Vetting, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.rows) {
		return ports.Vetting{}, false
	}
	return m.rows[m.selectedIndex].vetting, true
}

func (m *boardModel) appendAuditLog(action string, vettingID uint64, result string, opErr error) {
	outcome := strings.TrimSpace(result)
	if opErr != nil {
		outcome = "error: " + opErr.Error()
	}
	if outcome == "" {
		outcome = "ok"
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("%s member=%d vetting=%d action=%s result=%s", timestamp, m.caps.MemberID, vettingID, action, outcome)
	m.auditLogs = append([]string{line}, m.auditLogs...)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[:maxAuditLines]
	}

	logging.Info(m.ctx, "board console action",
		slog.Uint64("member_id", m.caps.MemberID),
		slog.Uint64("vetting_id", vettingID),
		slog.String("action", action),
		slog.String("result", outcome),
	)
}

// flattenColumns keeps pipeline order: stage first, then the order within each column.
func flattenColumns(columns []usecasevetting.StageColumn, stageFilter domainvetting.Stage) []row {
	var rows []row
	for _, column := range columns {
		if stageFilter != "" && column.Stage != stageFilter {
			continue
		}
		for _, vetting := range column.Vettings {
			rows = append(rows, row{vetting: vetting})
		}
	}
	return rows
}

func stageCounts(columns []usecasevetting.StageColumn) string {
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		if len(column.Vettings) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%d", column.Stage, len(column.Vettings)))
	}
	return strings.Join(parts, " ")
}

func officeLine(vetting ports.Vetting) string {
	parts := []string{vetting.Office}
	if strings.TrimSpace(vetting.District) != "" {
		parts = append(parts, vetting.District)
	}
	if strings.TrimSpace(vetting.State) != "" {
		parts = append(parts, vetting.State)
	}
	return strings.Join(parts, ", ")
}

func auditScore(audit ports.DigitalAudit) string {
	if audit.Score == nil {
		return ""
	}
	return fmt.Sprintf("%d (%s)", *audit.Score, audit.Grade)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if normalized != "" {
			return normalized
		}
	}
	return ""
}
