package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "clean text untouched", in: "Hola\n\nmundo", want: "Hola\n\nmundo"},
		{name: "escaped paragraph break", in: `uno\n\ndos`, want: "uno\n\ndos"},
		{name: "escaped line break", in: `uno\ndos`, want: "uno\ndos"},
		{name: "escaped quotes", in: `dijo \"hola\" y \'adiós\'`, want: `dijo "hola" y 'adiós'`},
		{name: "windows line endings", in: "uno\r\n\r\ndos", want: "uno\n\ndos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_idempotentOnCleanInput(t *testing.T) {
	for _, in := range []string{
		"## Título\n\nTexto plano",
		"| a | b |\n|---|---|\n| 1 | 2 |",
		"- uno\n- dos",
	} {
		once := Normalize(in)
		assert.Equal(t, in, once)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Fragment
	}{
		{name: "empty input", in: "", want: []Fragment{}},
		{name: "whitespace only", in: " \n\n \n", want: []Fragment{}},
		{
			name: "single plain paragraph",
			in:   "Bienvenidos al IFCET.",
			want: []Fragment{{Kind: KindParagraph, Text: "Bienvenidos al IFCET."}},
		},
		{
			name: "multi-line plain paragraph splits per line",
			in:   "línea uno\nlínea dos\n\nfinal",
			want: []Fragment{
				{Kind: KindParagraph, Text: "línea uno", Compact: true},
				{Kind: KindParagraph, Text: "línea dos", Compact: true},
				{Kind: KindParagraph, Text: "final"},
			},
		},
		{
			name: "headings",
			in:   "## Dos\n\n### Tres\n\n#### Cuatro",
			want: []Fragment{
				{Kind: KindHeading, Level: 2, Text: "Dos"},
				{Kind: KindHeading, Level: 3, Text: "Tres"},
				{Kind: KindHeading, Level: 4, Text: "Cuatro"},
			},
		},
		{
			name: "bold paragraph",
			in:   "**Importante:** leer todo",
			want: []Fragment{{Kind: KindEmphasis, Text: "Importante: leer todo"}},
		},
		{
			name: "unclosed bold is plain",
			in:   "**sin cierre",
			want: []Fragment{{Kind: KindParagraph, Text: "**sin cierre"}},
		},
		{
			name: "dash list drops non item lines",
			in:   "- uno\n- dos\nnota suelta",
			want: []Fragment{{Kind: KindList, Items: []string{"uno", "dos"}}},
		},
		{
			name: "check-mark list",
			in:   "Beneficios:\n✔ Certificado\n✔️ Clases en vivo",
			want: []Fragment{{Kind: KindCheckList, Items: []string{"Certificado", "Clases en vivo"}}},
		},
		{
			name: "lettered list",
			in:   "a) primero\nb) segundo",
			want: []Fragment{{Kind: KindLetteredList, Items: []string{"primero", "segundo"}}},
		},
		{
			name: "partially lettered paragraph is plain",
			in:   "a) primero\nnada más",
			want: []Fragment{
				{Kind: KindParagraph, Text: "a) primero", Compact: true},
				{Kind: KindParagraph, Text: "nada más", Compact: true},
			},
		},
		{
			name: "table",
			in:   "| Módulo | Horas |\n|---|---|\n| Seguridad | 20 |\n| Salud | 10 |",
			want: []Fragment{{
				Kind:   KindTable,
				Header: []string{"Módulo", "Horas"},
				Rows: []Row{
					{Index: 0, Cells: []string{"Seguridad", "20"}},
					{Index: 1, Cells: []string{"Salud", "10"}},
				},
			}},
		},
		{
			name: "table keeps interior empty cells",
			in:   "| a | b | c |\n| --- | --- | --- |\n| 1 |  | 3 |",
			want: []Fragment{{
				Kind:   KindTable,
				Header: []string{"a", "b", "c"},
				Rows:   []Row{{Index: 0, Cells: []string{"1", "", "3"}}},
			}},
		},
		{
			name: "table without data rows falls through",
			in:   "| a | b |\n|---|---|",
			want: []Fragment{
				{Kind: KindParagraph, Text: "| a | b |", Compact: true},
				{Kind: KindParagraph, Text: "|---|---|", Compact: true},
			},
		},
		{
			name: "pipes without separator are plain",
			in:   "opción a | opción b",
			want: []Fragment{{Kind: KindParagraph, Text: "opción a | opción b"}},
		},
		{
			name: "escaped input",
			in:   `## Título\n\n- uno\n- dos`,
			want: []Fragment{
				{Kind: KindHeading, Level: 2, Text: "Título"},
				{Kind: KindList, Items: []string{"uno", "dos"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.in))
		})
	}
}

func TestRender_rulePrecedence(t *testing.T) {
	// a paragraph matching several rules is classified by the earliest one
	frags := Render("- pendiente\n✔ listo")
	require.Len(t, frags, 1)
	assert.Equal(t, KindCheckList, frags[0].Kind)
	assert.Equal(t, []string{"listo"}, frags[0].Items)

	frags = Render("## **Negrita** en título")
	require.Len(t, frags, 1)
	assert.Equal(t, KindHeading, frags[0].Kind)
}

func TestRender_preservesOrder(t *testing.T) {
	in := "uno\n\n## dos\n\n- tres\n\ncuatro"
	kinds := make([]Kind, 0)
	for _, f := range Render(in) {
		kinds = append(kinds, f.Kind)
	}
	assert.Equal(t, []Kind{KindParagraph, KindHeading, KindList, KindParagraph}, kinds)
}

func TestRow_Odd(t *testing.T) {
	assert.False(t, Row{Index: 0}.Odd())
	assert.True(t, Row{Index: 1}.Odd())
	assert.False(t, Row{Index: 2}.Odd())
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML("## <b>Hola</b>\n\n| a |\n|---|\n| 1 |\n| 2 |")
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "&lt;b&gt;Hola&lt;/b&gt;")
	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, `<tr class="bg-white hover:bg-gray-50">`)
	assert.Contains(t, html, `<tr class="bg-gray-50 hover:bg-gray-100">`)
	assert.True(t, strings.Index(html, "<h2") < strings.Index(html, "<table"))
}

func TestRenderHTML_empty(t *testing.T) {
	out, err := RenderHTML("")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(out)))
}
