package store

import (
	"context"
	"errors"
	"time"

	"agentcomm.app/relay/core/db/sqlc"
	"agentcomm.app/relay/internal/model"
	"github.com/jackc/pgx/v5"
)

type requestStore struct {
	queries *sqlc.Queries
}

func newRequestStore(queries *sqlc.Queries) RequestStore {
	return &requestStore{queries: queries}
}

func (s *requestStore) Create(ctx context.Context, req *model.Request) error {
	row, err := s.queries.CreateRequest(ctx, sqlc.CreateRequestParams{
		ID:         req.ID,
		OrgID:      req.OrgID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		ToTeamID:   req.ToTeamID,
		Subject:    req.Subject,
		Content:    req.Content,
		Status:     string(req.Status),
		Priority:   string(req.Priority),
		DueDate:    tsPtr(req.DueDate),
		CreatedAt:  ts(nowIfZero(req.CreatedAt)),
	})
	if err != nil {
		return err
	}
	*req = *toRequestModel(row)
	return nil
}

func (s *requestStore) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	row, err := s.queries.GetRequest(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return toRequestModel(row), nil
}

func (s *requestStore) ListOutgoing(ctx context.Context, fromUserID int64, status *model.Status, limit int32) ([]model.Request, error) {
	rows, err := s.queries.ListOutgoingRequests(ctx, sqlc.ListOutgoingRequestsParams{
		FromUserID: fromUserID,
		Status:     statusPtr(status),
		Lim:        limit,
	})
	if err != nil {
		return nil, err
	}
	return toRequestModels(rows), nil
}

func (s *requestStore) ListActiveOutgoing(ctx context.Context, fromUserID int64, limit int32) ([]model.Request, error) {
	rows, err := s.queries.ListActiveOutgoingRequests(ctx, sqlc.ListActiveOutgoingRequestsParams{
		FromUserID: fromUserID,
		Lim:        limit,
	})
	if err != nil {
		return nil, err
	}
	return toRequestModels(rows), nil
}

func (s *requestStore) CountActiveOutgoing(ctx context.Context, fromUserID int64) (int64, error) {
	return s.queries.CountActiveOutgoingRequests(ctx, fromUserID)
}

func (s *requestStore) Complete(ctx context.Context, id int64, response string, at time.Time) (bool, *model.Request, error) {
	row, err := s.queries.CompleteRequest(ctx, sqlc.CompleteRequestParams{
		ID:          id,
		Response:    &response,
		CompletedAt: ts(at),
	})
	return guarded(row, err)
}

func (s *requestStore) Cancel(ctx context.Context, id int64) (bool, *model.Request, error) {
	row, err := s.queries.CancelRequest(ctx, id)
	return guarded(row, err)
}

func (s *requestStore) ListStale(ctx context.Context, before time.Time, maxFollowUps int, limit int32) ([]model.Request, error) {
	rows, err := s.queries.ListStaleRequests(ctx, sqlc.ListStaleRequestsParams{
		Before:       ts(before),
		MaxFollowUps: int32(maxFollowUps),
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	return toRequestModels(rows), nil
}

func (s *requestStore) RecordFollowUp(ctx context.Context, id int64, expectedCount int, at time.Time) (bool, *model.Request, error) {
	row, err := s.queries.RecordFollowUp(ctx, sqlc.RecordFollowUpParams{
		ID:            id,
		FollowUpCount: int32(expectedCount),
		LastFollowUp:  ts(at),
	})
	return guarded(row, err)
}

func guarded(row sqlc.Request, err error) (bool, *model.Request, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Request is missing or already terminal
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, toRequestModel(row), nil
}

func toRequestModel(row sqlc.Request) *model.Request {
	return &model.Request{
		ID:            row.ID,
		OrgID:         row.OrgID,
		FromUserID:    row.FromUserID,
		ToUserID:      row.ToUserID,
		ToTeamID:      row.ToTeamID,
		Subject:       row.Subject,
		Content:       row.Content,
		Status:        model.Status(row.Status),
		Priority:      model.Priority(row.Priority),
		DueDate:       timePtr(row.DueDate),
		FollowUpCount: int(row.FollowUpCount),
		LastFollowUp:  timePtr(row.LastFollowUp),
		Response:      row.Response,
		CreatedAt:     row.CreatedAt.Time,
		CompletedAt:   timePtr(row.CompletedAt),
	}
}

func toRequestModels(rows []sqlc.Request) []model.Request {
	reqs := make([]model.Request, len(rows))
	for i, row := range rows {
		reqs[i] = *toRequestModel(row)
	}
	return reqs
}
