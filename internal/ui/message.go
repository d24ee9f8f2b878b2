package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/blendify/internal/models"
	"github.com/desertthunder/blendify/internal/tasks"
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
	MsgProgressUpdate MsgKind = iota
	MsgBlendComplete
)

type blendOutcome struct {
	result *models.Blend
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// blendCompleteMsg is the constructor for [MsgBlendComplete]
func blendCompleteMsg(result *models.Blend, err error) Msg {
	return Msg{kind: MsgBlendComplete, data: blendOutcome{result, err}}
}
