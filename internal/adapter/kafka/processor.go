package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.QueryStatsProcessor = (*QueryStatsProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A searchEventCodec used for serde [schema.SearchEventV1]
type searchEventCodec struct {
	serde Serde
}

func newSearchEventCodec(s Serde) searchEventCodec {
	return searchEventCodec{s}
}

func (c searchEventCodec) Encode(v any) ([]byte, error) {
	const op = "searchEventCodec.Encode"
	if _, ok := v.(schema.SearchEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c searchEventCodec) Decode(data []byte) (any, error) {
	const op = "searchEventCodec.Decode"
	var s schema.SearchEventV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A searchCount is the number of searches seen for one query.
type searchCount int64

// A searchCountCodec used for serde [searchCount]
type searchCountCodec struct{}

func (searchCountCodec) Encode(v any) ([]byte, error) {
	const op = "searchCountCodec.Encode"
	n, ok := v.(searchCount)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return strconv.AppendInt(nil, int64(n), 10), nil
}

func (searchCountCodec) Decode(data []byte) (any, error) {
	const op = "searchCountCodec.Decode"
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil, opErr(err, op)
	}
	return searchCount(n), nil
}

// A QueryStatsProcessor counts search events per query
// from stream topic to group table.
type QueryStatsProcessor struct {
	opPrefix string
	proc     processor
}

func NewQueryStatsProc(
	seedBrokers []string,
	inputStream string,
	group string,
	searchEventSerde Serde,
) (*QueryStatsProcessor, error) {
	const op = "NewQueryStatsProc"

	p := QueryStatsProcessor{opPrefix: "QueryStatsProcessor"}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			newSearchEventCodec(searchEventSerde),
			p.processFn,
		),
		goka.Persist(searchCountCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return &p, nil
}

func (p *QueryStatsProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *QueryStatsProcessor) Close() {
	p.proc.close()
}

func (p *QueryStatsProcessor) processFn(ctx goka.Context, msg any) {
	event, _ := msg.(schema.SearchEventV1)
	if domain.SearchEventKind(event.Kind) != domain.EventSearch {
		return
	}
	ctx.SetValue(nextCount(ctx.Value()))
}

func nextCount(stored any) searchCount {
	n, _ := stored.(searchCount)
	return n + 1
}
