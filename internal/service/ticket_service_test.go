package service

import (
	"context"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanoanh-osi/ServiceOps/internal/cache"
	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/mapper"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

const maintenanceList = `{"data":[
	{"ticket_id":"MT1","customer_name":"A","status":"Đã tiếp nhận"},
	{"ticket_id":"MT2","customer_name":"B","status":"Đang thực hiện"},
	{"ticket_id":"MT3","customer_name":"C","status":"Đã phân công"},
	{"ticket_id":"MT4","customer_name":"D","status":"Đã hoàn thành"}
]}`

func newTicketService(t *testing.T, up *fakeUpstream, c *cache.TicketCache) *TicketService {
	t.Helper()
	return NewTicketService(TicketDependencies{
		Client: up.client(t),
		Mapper: mapper.New(nil, func() time.Time { return fixedNow }),
		Cache:  c,
	})
}

func TestListFiltersMaintenanceInProgress(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.ListPath(domain.TicketTypeMaintenance): {Body: maintenanceList},
	})
	svc := newTicketService(t, up, nil)

	page, err := svc.List(context.Background(), tech, ListQuery{Type: domain.TicketTypeMaintenance, Bucket: domain.BucketInProgress})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "MT1", page.Items[0].ID)
	assert.Equal(t, "MT2", page.Items[1].ID)
	assert.False(t, page.FellBack)

	calls := up.callsTo(webhook.ListPath(domain.TicketTypeMaintenance))
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer t1", calls[0].Auth)
	assert.Equal(t, "NV01", calls[0].Body["staff-code"])
	assert.Equal(t, "tech@osi.vn", calls[0].Body["email"])
}

func TestListFallsBackWhenTabEmpty(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.ListPath(domain.TicketTypeMaintenance): {Body: `[{"ticket_id":"MT3","status":"Đã phân công"}]`},
	})
	svc := newTicketService(t, up, nil)

	page, err := svc.List(context.Background(), tech, ListQuery{Type: domain.TicketTypeMaintenance, Bucket: domain.BucketCompleted})
	require.NoError(t, err)
	assert.True(t, page.FellBack)
	assert.Equal(t, 1, page.Total)
}

func TestListPagingAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	up := newFakeUpstream(t, map[string]reply{
		webhook.ListPath(domain.TicketTypeMaintenance): {Body: maintenanceList},
	})
	svc := newTicketService(t, up, cache.NewTicketCache(rc, "test", time.Minute, nil))
	q := ListQuery{Type: domain.TicketTypeMaintenance, Page: 2, PageSize: 3}

	page, err := svc.List(context.Background(), tech, q)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "MT4", page.Items[0].ID)

	_, err = svc.List(context.Background(), tech, q)
	require.NoError(t, err)
	assert.Equal(t, 1, up.total(), "second call is served from cache")

	require.NoError(t, svc.Invalidate(context.Background(), tech.Identity()))
	_, err = svc.List(context.Background(), tech, q)
	require.NoError(t, err)
	assert.Equal(t, 2, up.total())
}

func TestListRequiresSessionAndType(t *testing.T) {
	svc := newTicketService(t, newFakeUpstream(t, nil), nil)

	_, err := svc.List(context.Background(), session.LoggedOut, ListQuery{Type: domain.TicketTypeDelivery})
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, err = svc.List(context.Background(), tech, ListQuery{Type: "gardening"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestListUpstreamFailure(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.ListPath(domain.TicketTypeSales): {Status: http.StatusInternalServerError, Body: `{"message":"workflow crashed"}`},
	})
	svc := newTicketService(t, up, nil)

	_, err := svc.List(context.Background(), tech, ListQuery{Type: domain.TicketTypeSales})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "UPSTREAM_FAILED", de.Code)
	assert.Equal(t, "workflow crashed", de.Message)
	assert.Equal(t, http.StatusInternalServerError, de.UpstreamStatus)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, Slice(items, 1, 2))
	assert.Equal(t, []int{5}, Slice(items, 3, 2))
	assert.Equal(t, []int{}, Slice(items, 4, 2))
	assert.Equal(t, items, Slice(items, 0, 2))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Slice(items, 1, 10))
	assert.Equal(t, []int{}, Slice([]int{}, 1, 2))
	assert.Equal(t, []int{}, Slice(items, math.MaxInt64/2+2, 2))
	assert.Equal(t, []int{}, Slice(items, 2, math.MaxInt64))
}

func TestListHugePageIsEmpty(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.ListPath(domain.TicketTypeMaintenance): {Body: maintenanceList},
	})
	svc := newTicketService(t, up, nil)

	page, err := svc.List(context.Background(), tech, ListQuery{Type: domain.TicketTypeMaintenance, Page: math.MaxInt64/2 + 2, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 4, page.Total)
}

func TestDeliveryDetailFallsBackToList(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.DetailPath(domain.TicketTypeDelivery): {Status: http.StatusInternalServerError},
		webhook.ListPath(domain.TicketTypeDelivery): {Body: `[
			{"ticket_id":"DL1","customer_name":"Cty A","status":"Đã phân công"},
			{"ticket_id":"DL2","customer_name":"Cty B","status":"Đã hoàn thành"}
		]`},
	})
	svc := newTicketService(t, up, nil)

	detail, err := svc.Detail(context.Background(), tech, domain.TicketTypeDelivery, "DL2")
	require.NoError(t, err)
	assert.Equal(t, "DL2", detail.ID)
	assert.Equal(t, "Cty B", detail.Customer)
	assert.Equal(t, domain.BucketCompleted, detail.Status)

	_, err = svc.Detail(context.Background(), tech, domain.TicketTypeDelivery, "DL9")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestDeliveryDetailMergesMissingCore(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.DetailPath(domain.TicketTypeDelivery): {Body: `[{"data":{"ticket_id":"DL1"}}]`},
		webhook.ListPath(domain.TicketTypeDelivery):   {Body: `[{"ticket_id":"DL1","customer_name":"Cty A","address":"1 Lê Lợi","status":"Đã phân công"}]`},
	})
	svc := newTicketService(t, up, nil)

	detail, err := svc.Detail(context.Background(), tech, domain.TicketTypeDelivery, "DL1")
	require.NoError(t, err)
	assert.Equal(t, "Cty A", detail.Customer)
	assert.Equal(t, "1 Lê Lợi", detail.Address)

	calls := up.callsTo(webhook.DetailPath(domain.TicketTypeDelivery))
	require.Len(t, calls, 1)
	assert.Equal(t, "DL1", calls[0].Body["ticket-id"])
}

func TestMaintenanceDetailNoFallback(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.DetailPath(domain.TicketTypeMaintenance): {Status: http.StatusNotFound, Body: `{"message":"Không tìm thấy"}`},
	})
	svc := newTicketService(t, up, nil)

	_, err := svc.Detail(context.Background(), tech, domain.TicketTypeMaintenance, "MT1")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	assert.Empty(t, up.callsTo(webhook.ListPath(domain.TicketTypeMaintenance)))
}

func TestCountsFetchesEveryCategory(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.ListPath(domain.TicketTypeDelivery):    {Body: `[{"ticket_id":"DL1","status":"Đã phân công"},{"ticket_id":"DL2","status":"Đang giao"}]`},
		webhook.ListPath(domain.TicketTypeMaintenance): {Body: maintenanceList},
		webhook.ListPath(domain.TicketTypeSales):       {Body: `{"data":[{"ticket_id":"AC1","status":"Chưa bắt đầu"}]}`},
	})
	svc := newTicketService(t, up, nil)

	counts, err := svc.Counts(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.TicketTypeDelivery][domain.BucketAssigned])
	assert.Equal(t, 1, counts[domain.TicketTypeDelivery][domain.BucketInProgress])
	assert.Equal(t, 2, counts[domain.TicketTypeMaintenance][domain.BucketInProgress])
	assert.Equal(t, 1, counts[domain.TicketTypeMaintenance][domain.BucketCompleted])
	assert.Equal(t, 1, counts[domain.TicketTypeSales][domain.BucketAssigned])
	assert.Equal(t, 3, up.total())
}

func TestCountsFailsWhenOneCategoryFails(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.ListPath(domain.TicketTypeDelivery):    {Body: `[]`},
		webhook.ListPath(domain.TicketTypeMaintenance): {Body: `[]`},
	})
	_, err := newTicketService(t, up, nil).Counts(context.Background(), tech)
	assert.Error(t, err)
}

func TestUnassignedAndPerformance(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.PathUnassigned: {Body: `[[{"ticket_id":"MT20250926-175521","type":"Bảo trì / Sửa chữa","customer_name":"Lê Minh Cường","address":"undefined"}],[{"ticket_id":"TK-DL-005","type":"Giao hàng và Lắp đặt"}]]`},
		webhook.PathPerformance: {Body: `[{"tickets_completed":4,"tickets_pending":9,"quick_response_rate":15.38}]`},
	})
	svc := newTicketService(t, up, nil)

	page, err := svc.Unassigned(context.Background(), tech)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, domain.TicketTypeMaintenance, page.Items[0].Type)
	assert.Equal(t, "", page.Items[0].Address)
	assert.Equal(t, domain.TicketTypeDelivery, page.Items[1].Type)

	perf, err := svc.Performance(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, 4.0, perf.TicketsCompleted)
	assert.Equal(t, 15.38, perf.QuickResponseRate)
	assert.Equal(t, 0.0, perf.AvgCustomerRating)
}
