package content

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"
)

const fragmentsTmpl = `{{define "fragments"}}{{range .}}{{template "fragment" .}}{{end}}{{end}}
{{define "fragment"}}
{{- if eq .Kind "table"}}<div class="overflow-x-auto my-6"><table class="min-w-full border border-gray-200 rounded-lg">
<thead class="bg-blue-600 text-white"><tr>{{range .Header}}<th class="px-4 py-3 text-left font-semibold">{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Rows}}<tr class="{{if .Odd}}bg-gray-50 hover:bg-gray-100{{else}}bg-white hover:bg-gray-50{{end}}">{{range .Cells}}<td class="px-4 py-3 border-t border-gray-200">{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table></div>
{{else if eq .Kind "lettered_list"}}<ol class="list-[lower-alpha] pl-6 my-4 space-y-2">{{range .Items}}<li>{{.}}</li>{{end}}</ol>
{{else if eq .Kind "check_list"}}<ul class="my-4 space-y-2">{{range .Items}}<li class="flex items-start"><span class="text-green-600 mr-2">&#10004;</span>{{.}}</li>{{end}}</ul>
{{else if eq .Kind "list"}}<ul class="list-disc pl-6 my-4 space-y-2">{{range .Items}}<li>{{.}}</li>{{end}}</ul>
{{else if eq .Kind "heading"}}{{if eq .Level 2}}<h2 class="text-2xl font-bold text-gray-900 mt-8 mb-4">{{.Text}}</h2>
{{else if eq .Level 3}}<h3 class="text-xl font-bold text-gray-900 mt-6 mb-3">{{.Text}}</h3>
{{else}}<h4 class="text-lg font-semibold text-gray-900 mt-4 mb-2">{{.Text}}</h4>
{{end}}{{else if eq .Kind "emphasis"}}<p class="font-bold text-gray-900 my-4">{{.Text}}</p>
{{else if .Compact}}<p class="text-gray-700 leading-relaxed my-3">{{.Text}}</p>
{{else}}<p class="text-gray-700 leading-relaxed my-4">{{.Text}}</p>
{{end}}{{end}}`

var htmlTmpl = template.Must(template.New("content").Parse(fragmentsTmpl))

// WriteHTML renders fragments as HTML. All text is escaped.
func WriteHTML(frags []Fragment) (template.HTML, error) {
	var buff bytes.Buffer
	if err := htmlTmpl.ExecuteTemplate(&buff, "fragments", frags); err != nil {
		return "", errors.Wrap(err, "executing content template")
	}
	return template.HTML(buff.String()), nil
}

// RenderHTML renders raw content straight to HTML.
func RenderHTML(s string) (template.HTML, error) {
	return WriteHTML(Render(s))
}
