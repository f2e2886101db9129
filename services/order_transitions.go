package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"littlelemon/entity"
	"littlelemon/pkg/events"
	"littlelemon/pkg/logging"
	"littlelemon/repository"

	"gorm.io/gorm"
)

// OrderPatch is the raw request body of PUT/PATCH /orders/:id. Keeping the raw
// values lets us tell an absent field from an explicit null.
type OrderPatch map[string]json.RawMessage

var (
	orderWritable = map[string]bool{"user_id": true, "delivery_crew_id": true, "status": true, "date": true}
	orderReadOnly = map[string]bool{"id": true, "total": true, "order_items": true}
)

// Delivered is terminal.
var statusGraph = map[entity.OrderStatus][]entity.OrderStatus{
	entity.StatusPending: {entity.StatusDelivered},
}

func canTransition(from, to entity.OrderStatus) bool {
	for _, s := range statusGraph[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReplaceOrder is the Manager full update (PUT).
func (s *OrderService) ReplaceOrder(ctx context.Context, p Principal, orderID uint, patch OrderPatch) (*entity.Order, error) {
	return s.updateOrder(ctx, p, orderID, patch, true)
}

// PatchOrder applies a partial update. Managers may change any writable field;
// delivery crew may only move the status of orders assigned to them.
func (s *OrderService) PatchOrder(ctx context.Context, p Principal, orderID uint, patch OrderPatch) (*entity.Order, error) {
	return s.updateOrder(ctx, p, orderID, patch, false)
}

func (s *OrderService) updateOrder(ctx context.Context, p Principal, orderID uint, patch OrderPatch, full bool) (*entity.Order, error) {
	var (
		o   *entity.Order
		err error
	)
	switch {
	case !p.Authenticated():
		return nil, ErrUnauthenticated
	case p.IsManager():
		o, err = s.managerUpdate(ctx, orderID, patch, full)
	case p.IsDeliveryCrew() && !full:
		o, err = s.crewSetStatus(ctx, p, orderID, patch)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderUpdated, o, p.UserID)
	return o, nil
}

// ----- Manager -----

type managerFields struct {
	userID  *uint
	crewSet bool
	crewID  *uint
	status  *entity.OrderStatus
	date    *time.Time
}

func decodeManagerPatch(patch OrderPatch, full bool) (managerFields, error) {
	var mf managerFields
	fe := fieldErrors{}
	for k := range patch {
		switch {
		case orderReadOnly[k]:
			fe.add(k, "read-only field")
		case !orderWritable[k]:
			fe.add(k, "unknown field")
		}
	}

	if raw, ok := patch["user_id"]; ok {
		if id, err := decodeID(raw); err != nil || id == 0 {
			fe.add("user_id", "must be a positive integer")
		} else {
			mf.userID = &id
		}
	} else if full {
		fe.add("user_id", "required")
	}

	if raw, ok := patch["delivery_crew_id"]; ok {
		mf.crewSet = true
		if !isNull(raw) {
			if id, err := decodeID(raw); err != nil || id == 0 {
				fe.add("delivery_crew_id", "must be a positive integer or null")
			} else {
				mf.crewID = &id
			}
		}
	} else if full {
		// a full replace without a crew unassigns the order
		mf.crewSet = true
	}

	if raw, ok := patch["status"]; ok {
		if st, err := decodeStatus(raw); err != nil {
			fe.add("status", err.Error())
		} else {
			mf.status = &st
		}
	} else if full {
		fe.add("status", "required")
	}

	if raw, ok := patch["date"]; ok {
		if d, err := decodeDate(raw); err != nil {
			fe.add("date", "must be an RFC 3339 timestamp or YYYY-MM-DD")
		} else {
			mf.date = &d
		}
	}
	return mf, fe.err()
}

func (s *OrderService) managerUpdate(ctx context.Context, orderID uint, patch OrderPatch, full bool) (*entity.Order, error) {
	mf, err := decodeManagerPatch(patch, full)
	if err != nil {
		return nil, err
	}

	var out *entity.Order
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.Repo.GetOrderTx(tx, orderID, repository.OrderFilter{})
		if err != nil {
			return orNotFound(err, "order", orderID)
		}

		fields := map[string]any{}
		if mf.userID != nil {
			ok, err := s.UserRepo.Exists(tx, *mf.userID)
			if err != nil {
				return err
			}
			if !ok {
				return notFound("user", *mf.userID)
			}
			fields["user_id"] = *mf.userID
		}
		if mf.crewSet {
			if mf.crewID != nil {
				ok, err := s.GroupRepo.IsMember(tx, *mf.crewID, entity.GroupDeliveryCrew)
				if err != nil {
					return err
				}
				if !ok {
					return invalid("delivery_crew_id", fmt.Sprintf("user %d is not in the %s group", *mf.crewID, entity.GroupDeliveryCrew))
				}
				fields["delivery_crew_id"] = *mf.crewID
			} else {
				fields["delivery_crew_id"] = nil
			}
		}
		if mf.status != nil {
			fields["status"] = *mf.status
		}
		if mf.date != nil {
			fields["date"] = mf.date.UTC()
		}

		if err := s.Repo.UpdateFields(tx, orderID, fields); err != nil {
			return err
		}
		if mf.status != nil && *mf.status != current.Status {
			orderStatusChanges.WithLabelValues(string(entity.RoleManager), mf.status.String()).Inc()
		}
		out, err = s.Repo.GetOrderTx(tx, orderID, repository.OrderFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.FromCtx(ctx).Info("order updated by manager", "order_id", orderID, "fields", patchKeys(patch))
	return out, nil
}

// ----- Delivery crew -----

func (s *OrderService) crewSetStatus(ctx context.Context, p Principal, orderID uint, patch OrderPatch) (*entity.Order, error) {
	var extra []string
	for k := range patch {
		if k != "status" {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		fe := fieldErrors{}
		for _, k := range extra {
			fe.add(k, "delivery crew may only change status")
		}
		return nil, fe.err()
	}
	raw, ok := patch["status"]
	if !ok {
		return nil, invalid("status", "required")
	}
	to, err := decodeStatus(raw)
	if err != nil {
		return nil, invalid("status", err.Error())
	}

	crewID := p.UserID
	scope := repository.OrderFilter{DeliveryCrewID: &crewID}
	var out *entity.Order
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.Repo.GetOrderTx(tx, orderID, scope)
		if err != nil {
			return orNotFound(err, "order", orderID)
		}
		if o.Status == to {
			out = o
			return nil
		}
		if !canTransition(o.Status, to) {
			return invalid("status", fmt.Sprintf("cannot change status from %s to %s", o.Status, to))
		}

		n, err := s.Repo.UpdateStatusGuard(tx, o.ID, o.Status, to)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrConflict
		}
		orderStatusChanges.WithLabelValues(string(entity.RoleDeliveryCrew), to.String()).Inc()
		out, err = s.Repo.GetOrderTx(tx, orderID, scope)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.FromCtx(ctx).Info("order status set by delivery crew",
		"order_id", orderID, "crew_id", crewID, "status", out.Status.String())
	return out, nil
}

// ----- decoding -----

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeID(raw json.RawMessage) (uint, error) {
	var v uint
	if isNull(raw) {
		return 0, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

// decodeStatus accepts 0/1 and, for older clients, false/true.
func decodeStatus(raw json.RawMessage) (entity.OrderStatus, error) {
	if isNull(raw) {
		return 0, errors.New("must not be null")
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		st := entity.OrderStatus(n)
		if !st.Valid() {
			return 0, fmt.Errorf("unknown status %d", n)
		}
		return st, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return entity.StatusDelivered, nil
		}
		return entity.StatusPending, nil
	}
	return 0, errors.New("must be 0 (pending) or 1 (delivered)")
}

func decodeDate(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func patchKeys(patch OrderPatch) string {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
