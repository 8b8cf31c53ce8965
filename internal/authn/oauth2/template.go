package oauth2

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/bornholm/breathe/internal/ui"
	"github.com/pkg/errors"
)

//go:embed templates/**/*.gohtml
var fs embed.FS

var templates *template.Template

func init() {
	t, err := ui.Templates(nil, fs)
	if err != nil {
		panic(errors.WithStack(err))
	}
	templates = t
}

type LoginPageTemplateData struct {
	ui.HeadTemplateData
	Providers []LoginProviderTemplateData
	HomeURL   string
}

// LoginProviderTemplateData is a sign in entry of the login page.
type LoginProviderTemplateData struct {
	Provider
	URL string
}

func newLoginPageTemplateData(prefix string, providers []Provider, homeURL string) LoginPageTemplateData {
	entries := make([]LoginProviderTemplateData, 0, len(providers))
	for _, p := range providers {
		entries = append(entries, LoginProviderTemplateData{
			Provider: p,
			URL:      prefix + "/providers/" + p.ID,
		})
	}

	return LoginPageTemplateData{
		HeadTemplateData: ui.HeadTemplateData{
			PageTitle: "Sign in",
		},
		Providers: entries,
		HomeURL:   homeURL,
	}
}

// renderLogin renders the login page in a buffer, so that nothing is written
// when the template fails.
func renderLogin(w io.Writer, data LoginPageTemplateData) error {
	var buff bytes.Buffer

	if err := templates.ExecuteTemplate(&buff, "login", data); err != nil {
		return errors.Wrap(err, "could not execute template 'login'")
	}

	if _, err := buff.WriteTo(w); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
