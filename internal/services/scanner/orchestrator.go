package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"brandguard/internal/domain"
	"brandguard/internal/ports"
)

// PageSize is the offset step between result pages.
const PageSize = 10

// RunResult is everything gathered by one paginated scan.
type RunResult struct {
	Results      []domain.OrganicResult
	PagesScanned int
	TotalResults int64
	Errors       []string
	AuthFailures int
}

// Orchestrator walks result pages strictly one after another.
type Orchestrator struct {
	provider    ports.SearchProvider
	pacer       Pacer
	pageTimeout time.Duration
}

func NewOrchestrator(provider ports.SearchProvider, pacer Pacer, pageTimeout time.Duration) *Orchestrator {
	if pacer == nil {
		pacer = NoPacer{}
	}
	return &Orchestrator{provider: provider, pacer: pacer, pageTimeout: pageTimeout}
}

// Run fetches up to pageCount pages at offsets 0, 10, 20, ... A failed page is
// recorded in Errors and the scan moves on. Once ctx is done the remaining
// pages are recorded as failed without calling the provider.
func (o *Orchestrator) Run(ctx context.Context, query, geolocation string, pageCount int) RunResult {
	var res RunResult
	haveTotal := false
	for page := 1; page <= pageCount; page++ {
		offset := (page - 1) * PageSize
		if err := ctx.Err(); err != nil {
			res.fail(&domain.ProviderError{Page: page, Offset: offset, Err: err})
			continue
		}
		if err := o.pacer.Wait(ctx); err != nil {
			res.fail(&domain.ProviderError{Page: page, Offset: offset, Err: err})
			continue
		}
		sp, err := o.fetch(ctx, query, geolocation, offset)
		o.pacer.Done()
		if err != nil {
			perr := &domain.ProviderError{Page: page, Offset: offset, Err: err}
			log.Printf("[scanner] %q %s", query, perr)
			res.fail(perr)
			continue
		}
		res.PagesScanned++
		if !haveTotal {
			res.TotalResults = sp.TotalOrganicResults
			haveTotal = true
		}
		for i, r := range sp.OrganicResults {
			if r.Rank <= 0 {
				r.Rank = offset + i + 1
			}
			res.Results = append(res.Results, r)
		}
	}
	return res
}

func (o *Orchestrator) fetch(ctx context.Context, query, geolocation string, offset int) (ports.SearchPage, error) {
	if o.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.pageTimeout)
		defer cancel()
	}
	return o.provider.Search(ctx, query, geolocation, offset)
}

func (r *RunResult) fail(err *domain.ProviderError) {
	if errors.Is(err, domain.ErrProviderAuth) {
		r.AuthFailures++
	}
	r.Errors = append(r.Errors, fmt.Sprint(err))
}
