package web

import (
	"embed"
	"html/template"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/shell"
	"github.com/bornholm/breathe/internal/ui"
	"github.com/pkg/errors"
)

//go:embed templates/**
var templateFs embed.FS

var templates *template.Template

func init() {
	tmpl, err := ui.Templates(nil, templateFs)
	if err != nil {
		panic(errors.WithStack(err))
	}

	templates = tmpl
}

type ShellTemplateData struct {
	ui.HeadTemplateData
	Header  HeaderTemplateData
	Content template.HTML
	Panel   PanelTemplateData
}

type HeaderTemplateData struct {
	CurrentPage    string
	Nav            []ui.NavLink
	MobileMenuOpen bool
	Trigger        shell.ProfileTrigger
	// Pending makes the header poll for itself until the current user is
	// resolved.
	Pending bool
	OOB     bool
}

type PanelTemplateData struct {
	CurrentPage     string
	IsOpen          bool
	User            *account.User
	Trigger         shell.ProfileTrigger
	CanUploadAvatar bool
	CanSignIn       bool
	Error           string
	OOB             bool
}

type PageTemplateData struct {
	Page string
	User *account.User
	Nav  []ui.NavLink
}

func newHeaderTemplateData(currentPage string, state shell.State) HeaderTemplateData {
	return HeaderTemplateData{
		CurrentPage:    currentPage,
		Nav:            ui.Navigation(currentPage),
		MobileMenuOpen: state.MobileMenuOpen,
		Trigger:        shell.NewProfileTrigger(state.User),
		Pending:        !state.Fetch.Resolved(),
	}
}

type ProfileUpdateTemplateData struct {
	Panel  PanelTemplateData
	Header HeaderTemplateData
}
