package handler

import "html/template"

const inviteUnavailableTemplate = "invite_unavailable.html"

const inviteUnavailablePage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
</head>
<body>
<main>
<h1>{{ .Title }}</h1>
<p>{{ .Message }}</p>
{{ if .Retry }}<p><a href="">Try again</a></p>{{ else }}<p>Ask the person who invited you for a new link.</p>{{ end }}
</main>
</body>
</html>
`

// InviteTemplates returns the HTML templates the invite landing page renders.
func InviteTemplates() *template.Template {
	return template.Must(template.New(inviteUnavailableTemplate).Parse(inviteUnavailablePage))
}
