package specification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	domspec "github.com/kailas-cloud/specdex/internal/domain/specification"
	domval "github.com/kailas-cloud/specdex/internal/domain/value"
	"github.com/kailas-cloud/specdex/internal/jobs"
	"github.com/kailas-cloud/specdex/internal/logger"
)

// Job types handled by this package.
const (
	JobRenameAttribute = "specification.rename_attribute"
	JobPurgeValues     = "specification.purge_values"
)

type renamePayload struct {
	Specification string `json:"specification"`
	From          string `json:"from"`
	To            string `json:"to"`
}

type purgePayload struct {
	Specification string `json:"specification"`
	Attribute     string `json:"attribute,omitempty"`
}

// jobsJob is a job before payload encoding.
type jobsJob struct {
	typ     string
	key     string
	payload any
}

func (j jobsJob) build() (jobs.Job, error) {
	return jobs.NewJob(j.typ, j.key, j.payload)
}

func renameJob(spec, from, to string) jobsJob {
	return jobsJob{
		typ:     JobRenameAttribute,
		key:     spec + "/" + from + "->" + to,
		payload: renamePayload{Specification: spec, From: from, To: to},
	}
}

func purgeJob(spec, attr string) jobsJob {
	return jobsJob{
		typ:     JobPurgeValues,
		key:     spec + "/" + attr,
		payload: purgePayload{Specification: spec, Attribute: attr},
	}
}

// Handlers returns the job handlers backing renames and purges.
func (s *Service) Handlers() []jobs.Handler {
	return []jobs.Handler{
		jobs.HandlerFunc{JobType: JobRenameAttribute, Fn: s.runRename},
		jobs.HandlerFunc{JobType: JobPurgeValues, Fn: s.runPurge},
	}
}

// runRename is idempotent: a second run finds no rows under the old name.
func (s *Service) runRename(ctx context.Context, job jobs.Job) error {
	var p renamePayload
	if err := job.Decode(&p); err != nil {
		return err
	}
	n, err := s.values.Rename(ctx, p.Specification, p.From, p.To)
	if err != nil {
		return fmt.Errorf("rename values: %w", err)
	}
	logger.FromContext(ctx).Info("attribute values renamed",
		zap.String("specification", p.Specification),
		zap.String("from", p.From),
		zap.String("to", p.To),
		zap.Int("rows", n),
	)
	return nil
}

// runPurge deletes the rows of a removed specification or attribute. The
// definition is read again when the job runs: rows of an attribute that the
// current definition has (the specification was recreated or the attribute
// re-added under the same name) are kept.
func (s *Service) runPurge(ctx context.Context, job jobs.Job) error {
	var p purgePayload
	if err := job.Decode(&p); err != nil {
		return err
	}
	var (
		current domspec.Specification
		exists  bool
	)
	switch spec, err := s.repo.Get(ctx, p.Specification); {
	case err == nil:
		current, exists = spec, true
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("get specification: %w", err)
	}

	rows, err := s.values.Find(ctx, domval.Filter{Specification: p.Specification, Attribute: p.Attribute})
	if err != nil {
		return fmt.Errorf("find values: %w", err)
	}
	ids := make([]string, 0, len(rows))
	kept := 0
	for _, v := range rows {
		if exists {
			if _, defined := current.Attribute(v.Attribute()); defined {
				kept++
				continue
			}
		}
		ids = append(ids, v.ID())
	}
	if kept > 0 {
		logger.FromContext(ctx).Info("purge kept rows of a redefined attribute",
			zap.String("specification", p.Specification),
			zap.String("attribute", p.Attribute),
			zap.Int("kept", kept),
		)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.values.Delete(ctx, ids...); err != nil {
		return fmt.Errorf("delete values: %w", err)
	}
	return nil
}
