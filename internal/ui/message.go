package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotsearch/internal/results"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgResultsFetched MsgKind = iota
	MsgBrowserOpened
)

type resultsFetched struct {
	title string
	rs    *results.ResultSet
	err   error
}

// resultsFetchedMsg is the constructor for [MsgResultsFetched]
func resultsFetchedMsg(title string, rs *results.ResultSet, err error) Msg {
	return Msg{kind: MsgResultsFetched, data: resultsFetched{title, rs, err}}
}

type browserOpened struct {
	url string
	err error
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(url string, err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: browserOpened{url, err}}
}
