package httpapi

import (
	"database/sql"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/domain"
	"github.com/Amadou-dot/infrasight-sub002/internal/dualwrite"
	"github.com/Amadou-dot/infrasight-sub002/internal/repository"
)

const maxDeviceBodyBytes = 1 << 20

// DevicesHandler routes entity mutations through the dual-write path.
// List/read plumbing lives elsewhere; only mutations go through here.
type DevicesHandler struct {
	coordinator *dualwrite.Coordinator
	logger      *zap.Logger
}

func NewDevicesHandler(coordinator *dualwrite.Coordinator, logger *zap.Logger) *DevicesHandler {
	return &DevicesHandler{coordinator: coordinator, logger: logger}
}

type createDeviceRequest struct {
	DeviceName      string   `json:"device_name"`
	DeviceType      string   `json:"device_type"`
	Building        string   `json:"building,omitempty"`
	Floor           string   `json:"floor,omitempty"`
	Room            string   `json:"room,omitempty"`
	Department      string   `json:"department,omitempty"`
	Status          string   `json:"status,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	FirmwareVersion string   `json:"firmware_version,omitempty"`
	BatteryLevel    *int64   `json:"battery_level,omitempty"`
}

type updateDeviceRequest struct {
	DeviceName      *string   `json:"device_name,omitempty"`
	DeviceType      *string   `json:"device_type,omitempty"`
	Building        *string   `json:"building,omitempty"`
	Floor           *string   `json:"floor,omitempty"`
	Room            *string   `json:"room,omitempty"`
	Department      *string   `json:"department,omitempty"`
	Status          *string   `json:"status,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	FirmwareVersion *string   `json:"firmware_version,omitempty"`
	BatteryLevel    *int64    `json:"battery_level,omitempty"`
}

type deviceMutationResponse struct {
	Device *deviceJSON            `json:"device,omitempty"`
	Sync   domain.DualWriteResult `json:"sync"`
}

type deviceJSON struct {
	DeviceID        string   `json:"device_id"`
	DeviceName      string   `json:"device_name"`
	DeviceType      string   `json:"device_type"`
	Building        string   `json:"building,omitempty"`
	Floor           string   `json:"floor,omitempty"`
	Room            string   `json:"room,omitempty"`
	Department      string   `json:"department,omitempty"`
	Status          string   `json:"status"`
	Tags            []string `json:"tags"`
	FirmwareVersion string   `json:"firmware_version,omitempty"`
	BatteryLevel    *int64   `json:"battery_level,omitempty"`
}

// CreateDevice handles POST /data/api/v1/devices.
func (h *DevicesHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := readBodyJSON(r, maxDeviceBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.DeviceName == "" || req.DeviceType == "" {
		writeJSON(w, http.StatusBadRequest, Fail("device_name and device_type are required"))
		return
	}

	device := &domain.LegacyDevice{
		DeviceName:      req.DeviceName,
		DeviceType:      req.DeviceType,
		Building:        nullString(req.Building),
		Floor:           nullString(req.Floor),
		Room:            nullString(req.Room),
		Department:      nullString(req.Department),
		Status:          req.Status,
		Tags:            req.Tags,
		FirmwareVersion: nullString(req.FirmwareVersion),
		BatteryLevel:    nullInt(req.BatteryLevel),
	}

	committed, result := h.coordinator.CreateDevice(r.Context(), device)
	if !result.Legacy.Success {
		writeJSON(w, http.StatusInternalServerError, Fail("device creation failed"))
		return
	}
	if !result.Success {
		// Strict mode: the legacy write stands but the caller asked to see
		// the target failure.
		writeJSON(w, http.StatusBadGateway, Fail("target store sync failed: "+result.Target.Error))
		return
	}
	writeJSON(w, http.StatusOK, Ok(deviceMutationResponse{Device: toDeviceJSON(committed), Sync: result}))
}

// UpdateDevice handles PATCH /data/api/v1/devices/{id}.
func (h *DevicesHandler) UpdateDevice(w http.ResponseWriter, r *http.Request, deviceID string) {
	var req updateDeviceRequest
	if err := readBodyJSON(r, maxDeviceBodyBytes, &req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	patch := &domain.LegacyDevicePatch{
		DeviceName:      req.DeviceName,
		DeviceType:      req.DeviceType,
		Building:        req.Building,
		Floor:           req.Floor,
		Room:            req.Room,
		Department:      req.Department,
		Status:          req.Status,
		Tags:            req.Tags,
		FirmwareVersion: req.FirmwareVersion,
		BatteryLevel:    req.BatteryLevel,
	}
	if patch.IsEmpty() {
		writeJSON(w, http.StatusBadRequest, Fail("no fields to update"))
		return
	}

	committed, result := h.coordinator.UpdateDevice(r.Context(), deviceID, patch)
	if !result.Legacy.Success {
		if result.Legacy.Error == repository.ErrNotFound.Error() {
			writeJSON(w, http.StatusNotFound, Fail("device not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, Fail("device update failed"))
		return
	}
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, Fail("target store sync failed: "+result.Target.Error))
		return
	}
	writeJSON(w, http.StatusOK, Ok(deviceMutationResponse{Device: toDeviceJSON(committed), Sync: result}))
}

// DeleteDevice handles DELETE /data/api/v1/devices/{id}. Hard delete on the
// legacy store, soft delete on the target store.
func (h *DevicesHandler) DeleteDevice(w http.ResponseWriter, r *http.Request, deviceID string) {
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = "system"
	}

	result := h.coordinator.DeleteDevice(r.Context(), deviceID, actor)
	if !result.Legacy.Success {
		if result.Legacy.Error == repository.ErrNotFound.Error() {
			writeJSON(w, http.StatusNotFound, Fail("device not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, Fail("device deletion failed"))
		return
	}
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, Fail("target store sync failed: "+result.Target.Error))
		return
	}
	writeJSON(w, http.StatusOK, Ok(deviceMutationResponse{Sync: result}))
}

func toDeviceJSON(d *domain.LegacyDevice) *deviceJSON {
	out := &deviceJSON{
		DeviceID:   d.DeviceID,
		DeviceName: d.DeviceName,
		DeviceType: d.DeviceType,
		Status:     d.Status,
		Tags:       d.Tags,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if d.Building.Valid {
		out.Building = d.Building.String
	}
	if d.Floor.Valid {
		out.Floor = d.Floor.String
	}
	if d.Room.Valid {
		out.Room = d.Room.String
	}
	if d.Department.Valid {
		out.Department = d.Department.String
	}
	if d.FirmwareVersion.Valid {
		out.FirmwareVersion = d.FirmwareVersion.String
	}
	if d.BatteryLevel.Valid {
		v := d.BatteryLevel.Int64
		out.BatteryLevel = &v
	}
	return out
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
