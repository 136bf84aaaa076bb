package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the dashboard shortcuts.
type keyMap struct {
	Refresh key.Binding
	User    key.Binding
	Probe   key.Binding
	Health  key.Binding
	Logout  key.Binding
	Switch  key.Binding
	Back    key.Binding
	Yes     key.Binding
	No      key.Binding
	Quit    key.Binding
	Abort   key.Binding
}

var keys = keyMap{
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "renovar token")),
	User:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "usuario")),
	Probe:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "probar endpoint")),
	Health:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "salud")),
	Logout:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "cerrar sesión")),
	Switch:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "login/registro")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "volver")),
	Yes:     key.NewBinding(key.WithKeys("y", "s"), key.WithHelp("y", "sí")),
	No:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
	Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "salir")),
	Abort:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "salir")),
}

func (k keyMap) dashboardHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.User, k.Probe, k.Health, k.Logout, k.Quit}
}

func (k keyMap) authHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Abort}
}
