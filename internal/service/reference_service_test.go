package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanoanh-osi/ServiceOps/internal/webhook"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

func TestOptionLists(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.PathActivityTypes:          {Body: `[{"data":[{"option":"Khảo sát"},{"option":""},{"option":"Demo"}]}]`},
		webhook.PathMaintenanceCategories:  {Body: `{"data":[{"option":"Điện lạnh"}]}`},
		webhook.PathMaintenanceTicketTypes: {Body: `[]`},
	})
	svc := NewReferenceService(up.client(t))

	types, err := svc.ActivityTypes(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, []string{"Khảo sát", "Demo"}, types)

	cats, err := svc.MaintenanceCategories(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, []string{"Điện lạnh"}, cats)

	kinds, err := svc.MaintenanceTypes(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, []string{}, kinds)

	assert.Equal(t, http.MethodGet, up.callsTo(webhook.PathActivityTypes)[0].Method)
}

func TestCheckDevice(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.PathCheckDevice: {Body: `[{"brand":"Daikin","model":"FTKC","instal-date":"2023-05-01"}]`},
	})
	svc := NewReferenceService(up.client(t))

	device, err := svc.CheckDevice(context.Background(), tech, " SN1 ")
	require.NoError(t, err)
	assert.Equal(t, "Daikin", device.Brand)
	assert.Equal(t, "2023-05-01", device.InstallDate)
	assert.Equal(t, "SN1", up.callsTo(webhook.PathCheckDevice)[0].Body["serial"])

	_, err = svc.CheckDevice(context.Background(), tech, "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCheckDeviceEmptyIsNotFound(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{webhook.PathCheckDevice: {Body: `[{}]`}})
	_, err := NewReferenceService(up.client(t)).CheckDevice(context.Background(), tech, "SN404")
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, MsgSerialMissing, de.Message)
}

func TestCheckSerial(t *testing.T) {
	up := newFakeUpstream(t, map[string]reply{
		webhook.PathSerialCheck: {Body: `[{"status":"Serial not found"}]`},
	})
	_, err := NewReferenceService(up.client(t)).CheckSerial(context.Background(), tech, "SN404")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	up.mu.Lock()
	up.replies[webhook.PathSerialCheck] = reply{Body: `{"status":"success","data":{"brand":"LG","install-date":"2022-01-01"}}`}
	up.mu.Unlock()
	device, err := NewReferenceService(up.client(t)).CheckSerial(context.Background(), tech, "SN1")
	require.NoError(t, err)
	assert.Equal(t, "LG", device.Brand)
	assert.Equal(t, "2022-01-01", device.InstallDate)
}
