package core

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/ifcet/aula/fs"
)

func TestEmailTemplates_embedded(t *testing.T) {
	for _, name := range []string{"_base.txt", "_base.gohtml", "contact_ack.txt", "contact_request.gohtml"} {
		_, err := fs.Stat(appfs.FS, emailTemplatesDir+"/"+name)
		assert.NoError(t, err, name)
	}
}

func TestEmailMessage_Render(t *testing.T) {
	msg := &EmailMessage{
		Subject:      "Recibimos tu solicitud",
		TemplateName: "contact_ack",
		TemplateData: struct {
			FullName string
			Course   string
		}{FullName: "Ana Torres", Course: "Peritaje Contable"},
	}
	require.NoError(t, msg.Render())
	assert.True(t, msg.HasContent())
	assert.Contains(t, msg.TextContent, "Hola Ana Torres,")
	assert.Contains(t, msg.TextContent, "Peritaje Contable")
	assert.Contains(t, msg.TextContent, Conf.AppName)
	assert.Contains(t, msg.HTMLContent, "<p>Hola Ana Torres,</p>")

	unknown := &EmailMessage{TemplateName: "no_existe"}
	assert.Error(t, unknown.Render())

	plain := &EmailMessage{BodyStr: "hola"}
	require.NoError(t, plain.Render())
	assert.Equal(t, "hola", plain.TextContent)
}
