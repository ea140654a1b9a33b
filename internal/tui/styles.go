package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary     = lipgloss.Color("#00BFFF") // Cyan: systems, primary accent
	colorAccent      = lipgloss.Color("#FFD700") // Gold: credits
	colorSuccess     = lipgloss.Color("#00E676") // Green: DSS, scoopable, sampled
	colorDanger      = lipgloss.Color("#FF5252") // Red: errors, unscoopable
	colorMuted       = lipgloss.Color("#636363") // Gray: de-emphasized
	colorMutedLight  = lipgloss.Color("#8C8C8C") // Lighter gray: normal text
	colorWhite       = lipgloss.Color("#EEEEEE") // Off-white: primary text
	colorBrightWhite = lipgloss.Color("#FFFFFF") // Pure white: emphatic text
	colorSurface     = lipgloss.Color("#1E1E2E") // Dark surface: header bg
	colorSurfaceDim  = lipgloss.Color("#181825") // Darkest surface: footer bg
	colorMagenta     = lipgloss.Color("#C792EA") // Magenta: body types
)

// Selection indicator prepended to the active row.
const selectionIndicator = "▎"

// Header styles: solid background, bold title.
var (
	styleHeader = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Padding(0, 1)

	styleHeaderTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleHeaderLabel = lipgloss.NewStyle().
				Foreground(colorMutedLight)

	styleHeaderValue = lipgloss.NewStyle().
				Foreground(colorBrightWhite).
				Bold(true)

	styleHeaderView = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// Tree and table content styles.
var (
	styleSystem = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleSystemCurrent = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleBodyName = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	styleBodyType = lipgloss.NewStyle().
			Foreground(colorMagenta)

	styleCredits = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleCreditsBold = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	styleFSS = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleDSS = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleScoop = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleNoScoop = lipgloss.NewStyle().
			Foreground(colorDanger)

	styleCurrentMarker = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	styleDim = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleDimItalic = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleEnumerator = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginRight(1)

	// styleSelectionIndicator styles the left-edge indicator for the selected row.
	styleSelectionIndicator = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleTableHeader = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Padding(0, 1)

	styleTableCell = lipgloss.NewStyle().
			Foreground(colorMutedLight).
			Padding(0, 1)

	styleTableBorder = lipgloss.NewStyle().
				Foreground(colorMuted)
)

// Gravity thresholds in g.
const (
	gravityHigh     = 2.0
	gravityElevated = 1.5
)

var (
	styleGravityLow      = lipgloss.NewStyle().Foreground(colorSuccess)
	styleGravityElevated = lipgloss.NewStyle().Foreground(colorAccent)
	styleGravityHigh     = lipgloss.NewStyle().Foreground(colorDanger)
)

// Footer styles: top border, clear key/desc contrast.
var (
	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorSurfaceDim).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(colorMuted)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFooterSep = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(colorMutedLight)
)

// Toast styles.
var (
	styleToast = lipgloss.NewStyle().
			Foreground(colorBrightWhite).
			Background(colorSurface).
			Padding(0, 1)

	styleToastError = lipgloss.NewStyle().
			Foreground(colorBrightWhite).
			Background(colorDanger).
			Bold(true).
			Padding(0, 1)
)

// Scroll indicator shown when the body view has hidden lines.
var styleScrollIndicator = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true)

// Layout breakpoints for adaptive rendering.
const (
	// CompactWidth triggers compact mode for the footer and header.
	CompactWidth = 60
)
