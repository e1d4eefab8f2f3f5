package http

import (
	"html/template"
	"net/http"
	"time"

	"github.com/fran-as/millDischargeDashboard/pkg/contracts"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .status { padding: 10px; margin: 10px 0; border-radius: 4px; background-color: #d1ecf1; color: #0c5460; }
        code { background: #f4f4f4; padding: 2px 4px; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="status">
        <strong>Version:</strong> {{.Version}}
        <br><strong>Time:</strong> {{.Now}}
    </div>
    <h2>Pump groups</h2>
    <ul>
    {{- range .Groups}}
        <li>{{.}}:
            <a href="/api/pumps/{{.}}/columns">columns</a>,
            <a href="/api/pumps/{{.}}/series">series</a>,
            <a href="/api/pumps/{{.}}/scatter">scatter</a>
        </li>
    {{- end}}
    </ul>
    <h2>Endpoints</h2>
    <ul>
        <li><a href="/api/table">Table metadata</a></li>
        <li><a href="/api/health/ready">Readiness</a></li>
        <li><a href="/api/version">Version Info</a></li>
        <li><code>/ws</code> selection session</li>
    </ul>
</body>
</html>
`))

type indexPage struct {
	Title   string
	Version string
	Now     string
	Groups  []string
}

// ServeIndex serves a landing page linking the pump views
func ServeIndex(groups func() []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := contracts.GetVersionInfo()
		page := indexPage{
			Title:   "Mill Discharge Dashboard",
			Version: info.Version,
			Now:     time.Now().Format("2006-01-02 15:04:05"),
			Groups:  groups(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, page); err != nil {
			http.Error(w, "Error rendering page", http.StatusInternalServerError)
		}
	}
}
