package core_test

import (
	"net/mail"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	testutil "github.com/nachoo07/sistemaInterno-sub000/tests"
)

var testTemplates = fstest.MapFS{
	"templates/email/_base.txt":    {Data: []byte(`{{template "content" .}} -- {{.AppName}}`)},
	"templates/email/_base.gohtml": {Data: []byte(`<p>{{template "content" .}}</p>`)},
	"templates/email/hello.txt":    {Data: []byte(`{{define "content"}}Hello {{.Data}}{{end}}`)},
	"templates/email/hello.gohtml": {Data: []byte(`{{define "content"}}Hello <b>{{.Data}}</b>{{end}}`)},
	"templates/email/broken.txt":   {Data: []byte(`{{define "content"}}Hello {{.Data{{end}}`)},
	"templates/email/notes.md":     {Data: []byte(`ignored`)},
}

func TestEmailMessage_Render(t *testing.T) {
	conf := core.NewTestConfig()
	core.ParseEmailTemplates(testTemplates, conf, testutil.NewLogger())

	tests := []struct {
		name     string
		msg      core.EmailMessage
		wantText string
		wantHTML string
		wantErr  error
	}{
		{
			name:     "templated",
			msg:      core.EmailMessage{TemplateName: "hello", TemplateData: "Ana"},
			wantText: "Hello Ana -- Sistema Interno",
			wantHTML: "<p>Hello <b>Ana</b></p>",
		},
		{
			name:     "plain body",
			msg:      core.EmailMessage{BodyStr: "just text"},
			wantText: "just text",
		},
		{name: "unknown template", msg: core.EmailMessage{TemplateName: "goodbye"}, wantErr: core.ErrTemplateNotFound},
		{name: "template failed to parse", msg: core.EmailMessage{TemplateName: "broken"}, wantErr: core.ErrTemplateNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			msg.To = []mail.Address{{Address: "ana@test.ar"}}
			err := msg.Render()
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("failed! Render() error = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if msg.HasContent() {
					t.Errorf("failed! HasContent() = true after error")
				}
				return
			}
			if strings.TrimSpace(msg.TextContent) != tt.wantText {
				t.Errorf("failed! TextContent = %q; want %q", msg.TextContent, tt.wantText)
			}
			if strings.TrimSpace(msg.HTMLContent) != tt.wantHTML {
				t.Errorf("failed! HTMLContent = %q; want %q", msg.HTMLContent, tt.wantHTML)
			}
		})
	}
}
