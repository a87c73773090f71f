package tui

// Menu entries, in display order.
const (
	ActionInstall   = "Install / Setup"
	ActionStart     = "Start"
	ActionStop      = "Stop"
	ActionRestart   = "Restart"
	ActionStatus    = "Status"
	ActionLogs      = "View Logs"
	ActionEdit      = "Edit Config"
	ActionUpdate    = "Update Binary"
	ActionUninstall = "Uninstall"
	ActionQuit      = "Exit"
)

// Key hints
const (
	HintMenu    = "↑/↓: Navigate | enter: Select | q: Quit"
	HintConfirm = "y: Confirm | n/esc: Back"
	HintForm    = "tab/↓: Next Field | shift+tab/↑: Previous | enter: Save | esc: Cancel"
)

// Lipgloss colors
const (
	ColorTitle      = "14"  // cyan
	ColorSelectedFg = "229"
	ColorSelectedBg = "57"
	ColorHelp       = "245" // grey
	ColorError      = "9"   // red
	ColorOK         = "10"  // green
)

// How many recent lines the in-panel log view fetches.
const logViewLines = 20
