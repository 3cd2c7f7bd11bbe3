package auditor

import "github.com/nao1215/seoaudit/internal/model"

// Observer receives progress notifications from an audit.
// Methods are called from the goroutine running the audit; observers
// shared between concurrent audits must be safe for concurrent use.
type Observer interface {
	// AuditStarted is called once before the seed is fetched.
	AuditStarted(seedURL string, maxPages int)

	// PageAudited is called after each page was fetched and checked.
	PageAudited(page *model.PageResult, issues []model.Issue)

	// AuditFinished is called once at the end of the audit. On failure
	// result is nil and err is set.
	AuditFinished(seedURL string, result *model.AuditResult, err error)
}

// observers fans out notifications.
type observers []Observer

func (o observers) started(seedURL string, maxPages int) {
	for _, obs := range o {
		obs.AuditStarted(seedURL, maxPages)
	}
}

func (o observers) pageAudited(page *model.PageResult, issues []model.Issue) {
	for _, obs := range o {
		obs.PageAudited(page, issues)
	}
}

func (o observers) finished(seedURL string, result *model.AuditResult, err error) {
	for _, obs := range o {
		obs.AuditFinished(seedURL, result, err)
	}
}
