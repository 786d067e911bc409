package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lanoanh-osi/ServiceOps/internal/cache"
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/mapper"
	"github.com/lanoanh-osi/ServiceOps/internal/payload"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// TicketService reads tickets from the workflow platform and shapes them into
// view-models. The upstream returns every ticket of a category in one call;
// filtering and paging happen here.
type TicketService struct {
	client *webhook.Client
	mapper *mapper.Mapper
	cache  *cache.TicketCache
	logger *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Client *webhook.Client
	Mapper *mapper.Mapper
	// Cache is optional.
	Cache  *cache.TicketCache
	Logger *zap.Logger
}

// ListQuery selects a category tab and an optional page.
type ListQuery struct {
	Type     domain.TicketType
	Bucket   domain.Bucket
	Page     int
	PageSize int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	m := deps.Mapper
	if m == nil {
		m = mapper.New(nil, nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{client: deps.Client, mapper: m, cache: deps.Cache, logger: logger}
}

// List returns one tab of a category. Page and PageSize of zero return the
// whole filtered list.
func (s *TicketService) List(ctx context.Context, sess session.Session, q ListQuery) (domain.TicketPage, error) {
	if err := requireSession(sess); err != nil {
		return domain.TicketPage{}, err
	}
	if _, ok := domain.ParseTicketType(string(q.Type)); !ok {
		return domain.TicketPage{}, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": q.Type})
	}
	if q.Page < 0 || q.PageSize < 0 {
		return domain.TicketPage{}, apperrors.NewValidationError("page and page_size must not be negative", nil)
	}

	id := sess.Identity()
	key := cache.Query{Type: q.Type, Bucket: q.Bucket, Page: q.Page, PageSize: q.PageSize}
	if page, ok := s.cache.Get(ctx, id, key); ok {
		return page, nil
	}

	all, err := s.fetchAll(ctx, sess, q.Type)
	if err != nil {
		return domain.TicketPage{}, err
	}
	filtered, fellBack := s.mapper.FilterByTab(all, q.Type, q.Bucket)
	if fellBack {
		s.logger.Debug("tab filter empty; showing unfiltered list",
			zap.String("type", string(q.Type)),
			zap.String("bucket", string(q.Bucket)),
			zap.Int("total", len(all)))
	}

	page := domain.TicketPage{
		Items:    Slice(filtered, q.Page, q.PageSize),
		Total:    len(filtered),
		Page:     q.Page,
		PageSize: q.PageSize,
		FellBack: fellBack,
	}
	s.cache.Set(ctx, id, key, page)
	return page, nil
}

// Detail returns one ticket. Delivery tickets fall back to the list endpoint
// when the detail endpoint fails and borrow missing core fields from it.
func (s *TicketService) Detail(ctx context.Context, sess session.Session, t domain.TicketType, ticketID string) (domain.TicketDetail, error) {
	if err := requireSession(sess); err != nil {
		return domain.TicketDetail{}, err
	}
	if _, ok := domain.ParseTicketType(string(t)); !ok {
		return domain.TicketDetail{}, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": t})
	}
	if ticketID == "" {
		return domain.TicketDetail{}, apperrors.NewValidationError("ticket id is required", nil)
	}

	body := webhook.IdentityBody(sess.Identity())
	body[webhook.KeyTicketID] = ticketID
	env := s.client.Do(ctx, webhook.Request{Path: webhook.DetailPath(t), Body: body, Token: sess.Token})

	if t != domain.TicketTypeDelivery {
		if !env.Success {
			return domain.TicketDetail{}, env.Err()
		}
		return s.mapper.MapDetail(payload.Unwrap(env.Data), t, ticketID), nil
	}

	if !env.Success {
		s.logger.Warn("delivery detail endpoint failed; falling back to list",
			zap.String("ticket_id", ticketID), zap.Int("status", env.Status))
		records, err := s.fetchRecords(ctx, sess, t)
		if err != nil {
			return domain.TicketDetail{}, err
		}
		rec := findRecord(records, ticketID)
		if rec == nil {
			return domain.TicketDetail{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return s.mapper.MapDetail(rec, t, ticketID), nil
	}

	detail := s.mapper.MapDetail(payload.Unwrap(env.Data), t, ticketID)
	if !mapper.MissingCore(detail) {
		return detail, nil
	}
	items, err := s.fetchAll(ctx, sess, t)
	if err != nil {
		s.logger.Debug("list merge skipped", zap.Error(err))
		return detail, nil
	}
	for _, item := range items {
		if item.ID == detail.ID {
			return mapper.MergeSummary(detail, item), nil
		}
	}
	return detail, nil
}

// Counts fetches every category concurrently and counts each tab.
func (s *TicketService) Counts(ctx context.Context, sess session.Session) (domain.TicketCounts, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	results := make([][]domain.TicketSummary, len(domain.TicketTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range domain.TicketTypes {
		i, t := i, t
		g.Go(func() error {
			items, err := s.fetchAll(gctx, sess, t)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(domain.TicketCounts, len(domain.TicketTypes))
	for i, t := range domain.TicketTypes {
		counts[t] = s.mapper.CountByTab(results[i], t)
	}
	return counts, nil
}

// Unassigned lists tickets not yet assigned to anyone.
func (s *TicketService) Unassigned(ctx context.Context, sess session.Session) (domain.TicketPage, error) {
	if err := requireSession(sess); err != nil {
		return domain.TicketPage{}, err
	}
	env := s.client.Do(ctx, webhook.Request{
		Path:  webhook.PathUnassigned,
		Body:  webhook.IdentityBody(sess.Identity()),
		Token: sess.Token,
	})
	if !env.Success {
		return domain.TicketPage{}, env.Err()
	}

	records := payload.Records(env.Data)
	items := make([]domain.TicketSummary, 0, len(records))
	for _, rec := range records {
		items = append(items, s.mapper.MapUnassigned(rec))
	}
	return domain.TicketPage{Items: items, Total: len(items)}, nil
}

// Performance returns the technician's dashboard metrics; absent figures
// are zero.
func (s *TicketService) Performance(ctx context.Context, sess session.Session) (domain.PerformanceMetrics, error) {
	if err := requireSession(sess); err != nil {
		return domain.PerformanceMetrics{}, err
	}
	env := s.client.Do(ctx, webhook.Request{
		Path:  webhook.PathPerformance,
		Body:  webhook.IdentityBody(sess.Identity()),
		Token: sess.Token,
	})
	if !env.Success {
		return domain.PerformanceMetrics{}, env.Err()
	}
	return mapper.MapPerformance(env.Data), nil
}

// Invalidate drops the cached lists of a technician.
func (s *TicketService) Invalidate(ctx context.Context, id domain.Identity) error {
	return s.cache.Invalidate(ctx, id)
}

func (s *TicketService) fetchRecords(ctx context.Context, sess session.Session, t domain.TicketType) ([]payload.Record, error) {
	if _, ok := domain.ParseTicketType(string(t)); !ok {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": t})
	}
	env := s.client.Do(ctx, webhook.Request{
		Path:  webhook.ListPath(t),
		Body:  webhook.IdentityBody(sess.Identity()),
		Token: sess.Token,
	})
	if !env.Success {
		return nil, env.Err()
	}
	return payload.Records(env.Data), nil
}

func (s *TicketService) fetchAll(ctx context.Context, sess session.Session, t domain.TicketType) ([]domain.TicketSummary, error) {
	records, err := s.fetchRecords(ctx, sess, t)
	if err != nil {
		return nil, err
	}
	return s.mapper.MapSummaries(records, t), nil
}

// Slice returns the 1-based page of items; non-positive page or size
// returns items unchanged.
func Slice[T any](items []T, page, size int) []T {
	if page <= 0 || size <= 0 {
		return items
	}
	if len(items) == 0 || page-1 > (len(items)-1)/size {
		return []T{}
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return items[start:end]
}

func findRecord(records []payload.Record, ticketID string) payload.Record {
	for _, rec := range records {
		for _, key := range []string{"ticket-id", "ticket_id", "ticketId", "id"} {
			if mapper.Clean(rec[key]) == ticketID {
				return rec
			}
		}
	}
	return nil
}

func requireSession(sess session.Session) error {
	if sess.IsLoggedOut() {
		return apperrors.NewUnauthorized("Chưa đăng nhập")
	}
	return nil
}
