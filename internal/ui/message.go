package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/resolve"
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
	MsgPageLoaded MsgKind = iota
	MsgModerated
)

type pageLoaded struct {
	params resolve.Params
	page   *models.CorrectionPage
	err    error
}

type moderated struct {
	id     int
	method models.HandleMethod
	err    error
}

// pageLoadedMsg is the constructor for [MsgPageLoaded]
func pageLoadedMsg(params resolve.Params, page *models.CorrectionPage, err error) Msg {
	return Msg{kind: MsgPageLoaded, data: pageLoaded{params, page, err}}
}

// moderatedMsg is the constructor for [MsgModerated]
func moderatedMsg(id int, method models.HandleMethod, err error) Msg {
	return Msg{kind: MsgModerated, data: moderated{id, method, err}}
}
