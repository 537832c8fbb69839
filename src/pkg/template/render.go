package template

import (
	"bytes"
	"fmt"
	texttemplate "text/template"

	log "github.com/sirupsen/logrus"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "template",
})

// Renderer turns report data into notification messages.
type Renderer struct {
	success *texttemplate.Template
	denied  *texttemplate.Template
	failure *texttemplate.Template
}

// NewRenderer parses the built-in message templates.
func NewRenderer() (*Renderer, error) {
	success, err := texttemplate.New("deploy-success").Parse(DeploySuccessTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse success template: %w", err)
	}
	denied, err := texttemplate.New("deploy-denied").Parse(DeployDeniedTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse denied template: %w", err)
	}
	failure, err := texttemplate.New("deploy-failure").Parse(DeployFailureTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse failure template: %w", err)
	}
	return &Renderer{
		success: success,
		denied:  denied,
		failure: failure,
	}, nil
}

// RenderSuccess renders the message sent after a completed deploy.
func (r *Renderer) RenderSuccess(data *models.ReportData) (string, error) {
	return r.render(r.success, data)
}

// RenderDenied renders the message sent when a deploy is refused, either
// by the permission decision or by a blocking gate policy.
func (r *Renderer) RenderDenied(data *models.ReportData) (string, error) {
	return r.render(r.denied, data)
}

// RenderFailure renders the message sent when a permitted deploy errors out.
func (r *Renderer) RenderFailure(data *models.ReportData) (string, error) {
	return r.render(r.failure, data)
}

func (r *Renderer) render(tmpl *texttemplate.Template, data *models.ReportData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logger.WithField("error", err).Error("Failed to render message template")
		return "", fmt.Errorf("failed to render template %q: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
