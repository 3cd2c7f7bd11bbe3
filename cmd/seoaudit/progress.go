package main

import (
	"io"
	"strings"
	"sync"

	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressObserver draws one progress bar per audit.
// An instance belongs to a single Auditor.
type progressObserver struct {
	progress *mpb.Progress
	bar      *mpb.Bar
}

// newProgress creates the bar container. A nil writer disables drawing.
func newProgress(w io.Writer) *mpb.Progress {
	if w == nil {
		w = io.Discard
	}
	return mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
}

// AuditStarted implements auditor.Observer.
func (o *progressObserver) AuditStarted(seedURL string, maxPages int) {
	name := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(seedURL, "https://"), "http://"), "/")
	// A bar created with a positive total cannot be resized, so the
	// total is set after creation.
	o.bar = o.progress.AddBar(0,
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(name, decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
			decor.OnComplete(
				decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), "done",
			),
		),
	)
	o.bar.SetTotal(int64(maxPages), false)
}

// PageAudited implements auditor.Observer.
func (o *progressObserver) PageAudited(*model.PageResult, []model.Issue) {
	if o.bar != nil {
		o.bar.Increment()
	}
}

// AuditFinished implements auditor.Observer.
func (o *progressObserver) AuditFinished(_ string, _ *model.AuditResult, err error) {
	if o.bar == nil {
		return
	}
	if err != nil {
		o.bar.Abort(true)
		return
	}
	// The crawl may stop before the page limit when the site is small.
	o.bar.SetTotal(-1, true)
}

// pageRecorder collects per-page crawl records for the history database.
type pageRecorder struct {
	mu      sync.Mutex
	records []database.PageRecord
}

// AuditStarted implements auditor.Observer.
func (r *pageRecorder) AuditStarted(string, int) {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}

// PageAudited implements auditor.Observer.
func (r *pageRecorder) PageAudited(page *model.PageResult, issues []model.Issue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, database.NewPageRecord(page, len(issues)))
}

// AuditFinished implements auditor.Observer.
func (r *pageRecorder) AuditFinished(string, *model.AuditResult, error) {}

// Records returns the pages recorded by the last audit.
func (r *pageRecorder) Records() []database.PageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]database.PageRecord, len(r.records))
	copy(out, r.records)
	return out
}
