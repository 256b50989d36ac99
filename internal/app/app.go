package app

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/docspan/internal/config"
	"github.com/dshills/docspan/internal/docerr"
	"github.com/dshills/docspan/internal/document"
	"github.com/dshills/docspan/internal/plan"
	"github.com/dshills/docspan/internal/resolve"
	"github.com/dshills/docspan/internal/section"
	"github.com/dshills/docspan/internal/textindex"
)

// Engine creates document sessions from raw snapshots using one shared
// configuration.
type Engine struct {
	cfg config.Config
	log *Logger
}

// New creates an engine. A nil logger gets a default stderr logger at
// the configured level.
func New(cfg config.Config, log *Logger) *Engine {
	if log == nil {
		log = NewLogger(ParseLogLevel(cfg.Log.Level), nil)
	}
	return &Engine{cfg: cfg, log: log}
}

// Open parses a raw document snapshot and builds the session's index
// and resolvers over it.
func (e *Engine) Open(data []byte) (*Session, error) {
	return e.OpenTab(data, "")
}

// OpenTab is Open for a specific document tab.
func (e *Engine) OpenTab(data []byte, tabID string) (*Session, error) {
	snap, err := document.ParseSnapshot(data, document.ParseOptions{TabID: tabID})
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	ix := textindex.New(snap)
	sec := section.NewResolver(e.cfg.SectionConfig())
	res := resolve.New(snap, ix, sec)

	e.log.WithComponent("engine").Debug("opened document %q (%d chars, %d elements)",
		snap.Title, snap.Length(), len(snap.Elements))

	return &Session{
		snap: snap,
		ix:   ix,
		sec:  sec,
		res:  res,
		cfg:  e.cfg,
		log:  e.log,
	}, nil
}

// Session holds the engine state for one parsed document. All queries
// and plans run against the snapshot the session was opened with.
type Session struct {
	snap *document.Snapshot
	ix   *textindex.Index
	sec  *section.Resolver
	res  *resolve.Resolver
	cfg  config.Config
	log  *Logger
}

// Snapshot returns the parsed document.
func (s *Session) Snapshot() *document.Snapshot {
	return s.snap
}

// Stats returns the snapshot's structural statistics.
func (s *Session) Stats() document.Stats {
	return s.snap.Stats()
}

// Outline returns the hierarchical heading tree.
func (s *Session) Outline() []*section.OutlineNode {
	return s.sec.Outline(s.snap)
}

// Headings returns every heading with its classification.
func (s *Session) Headings() []section.Heading {
	return s.sec.AllHeadings(s.snap)
}

// Section finds a section by its heading text.
func (s *Session) Section(heading string, matchCase bool) (*section.Section, error) {
	return s.sec.FindByHeading(s.snap, heading, matchCase)
}

// Table returns the document's nth table, 0-based in document order.
func (s *Session) Table(n int) (*document.Element, error) {
	tables := s.snap.Tables()
	if n < 0 || n >= len(tables) {
		return nil, docerr.TableNotFound(n, len(tables))
	}
	return tables[n], nil
}

// Resolve converts a range specification into a concrete range.
func (s *Session) Resolve(spec resolve.Spec) resolve.Resolved {
	return s.res.Resolve(spec)
}

// ResolveJSON decodes a JSON range specification and resolves it.
func (s *Session) ResolveJSON(raw []byte) (resolve.Resolved, error) {
	spec, err := resolve.ParseSpec(gjson.ParseBytes(raw))
	if err != nil {
		return resolve.Resolved{}, err
	}
	return s.res.Resolve(spec), nil
}

// Plan validates and resolves a batch of operations into a request
// plan. Preview resolves without emitting requests.
func (s *Session) Plan(ops []plan.Operation, preview bool) *plan.Plan {
	p := s.planner(preview).Plan(ops)
	s.log.WithComponent("plan").Debug("plan %s: state=%s operations=%d requests=%d",
		p.ID, p.State, p.Result.TotalOperations, len(p.Requests))
	return p
}

// PlanJSON decodes a JSON operation list and plans it. The input is
// either a bare array or an object with an "operations" array.
func (s *Session) PlanJSON(raw []byte, preview bool) (*plan.Plan, error) {
	v := gjson.ParseBytes(raw)
	if v.IsObject() && v.Get("operations").Exists() {
		v = v.Get("operations")
	}
	ops, err := plan.ParseOperations(v)
	if err != nil {
		return nil, err
	}
	return s.Plan(ops, preview), nil
}

// Modify plans a single operation and reports it in the single-op
// result shape.
func (s *Session) Modify(op plan.Operation) (plan.ModifyResult, []string) {
	return s.planner(false).Modify(op)
}

func (s *Session) planner(preview bool) *plan.Planner {
	opts := plan.Options{
		AutoAdjust:   true,
		Preview:      preview,
		ContextChars: s.cfg.Preview.ContextChars,
	}
	return plan.NewPlanner(s.snap, s.ix, s.res, opts)
}
