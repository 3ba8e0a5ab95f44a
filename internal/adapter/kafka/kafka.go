package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/lovoo/goka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt connects to the seed brokers and pings them.
// tlsConfig may be nil.
func ProducerClientOpt(
	ctx context.Context,
	seedBrokers []string,
	topic string,
	tlsConfig *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		}
		if tlsConfig != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	SetOffsets(map[string]map[int32]kgo.EpochOffset)
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// UseTLS makes every goka processor and view created afterwards dial the
// brokers over TLS.
func UseTLS(tlsConfig *tls.Config) {
	cfg := goka.DefaultConfig()
	cfg.Net.TLS.Enable = true
	cfg.Net.TLS.Config = tlsConfig
	goka.ReplaceGlobalConfig(cfg)
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func searchEventToSchemaV1(v domain.SearchEvent) (s schema.SearchEventV1) {
	s.ID = v.ID.String()
	s.Kind = string(v.Kind)
	s.Query = v.Query
	s.ResultCount = int64(v.ResultCount)
	s.SelectedResult = v.SelectedResult
	s.UserAgent = v.UserAgent
	s.Timestamp = v.Timestamp

	f := v.Filters
	s.Filters.Category = f.Category
	s.Filters.Brand = f.Brand
	s.Filters.StockStatus = string(f.StockStatus)
	s.Filters.Featured = f.Featured
	s.Filters.Materials = nonNil(f.Materials)
	s.Filters.Tags = nonNil(f.Tags)
	if f.PriceMin != nil {
		p := f.PriceMin.String()
		s.Filters.PriceMin = &p
	}
	if f.PriceMax != nil {
		p := f.PriceMax.String()
		s.Filters.PriceMax = &p
	}
	return
}

func schemaV1ToSearchEvent(s schema.SearchEventV1) (domain.SearchEvent, error) {
	const op = "schemaV1ToSearchEvent"

	id, err := uuid.Parse(s.ID)
	if err != nil {
		return domain.SearchEvent{}, opErr(err, op)
	}

	v := domain.SearchEvent{
		ID:             id,
		Kind:           domain.SearchEventKind(s.Kind),
		Query:          s.Query,
		ResultCount:    int(s.ResultCount),
		SelectedResult: s.SelectedResult,
		UserAgent:      s.UserAgent,
		Timestamp:      s.Timestamp.UTC(),
		Filters: domain.SearchFilters{
			Category:    s.Filters.Category,
			Brand:       s.Filters.Brand,
			StockStatus: domain.StockStatus(s.Filters.StockStatus),
			Featured:    s.Filters.Featured,
			Materials:   s.Filters.Materials,
			Tags:        s.Filters.Tags,
		},
	}

	if v.Filters.PriceMin, err = parsePrice(s.Filters.PriceMin); err != nil {
		return domain.SearchEvent{}, opErr(err, op)
	}
	if v.Filters.PriceMax, err = parsePrice(s.Filters.PriceMax); err != nil {
		return domain.SearchEvent{}, opErr(err, op)
	}
	return v, nil
}

func parsePrice(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
