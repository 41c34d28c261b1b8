package mailer

import "embed"

const (
	FROM_NAME             = "RadTag"
	MAX_RETRY             = 3
	WORKSPACE_INVITE_TMPL = "workspace_invite.tmpl"
	PROJECT_INVITE_TMPL   = "project_invite.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, toUsername, toEmail string, data any) (int, error)
}
