package api

import (
	"context"
	"errors"

	"github.com/julianstephens/kairos/internal/models"
)

func (c *Client) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	var out []models.Schedule
	if err := c.get(ctx, "ListSchedules", "/schedules", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	var out models.Schedule
	if err := c.get(ctx, "GetSchedule", "/schedules/"+escape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSchedulesByUser(ctx context.Context, uid string) ([]models.Schedule, error) {
	var out []models.Schedule
	if err := c.get(ctx, "ListSchedulesByUser", "/schedule/user/"+escape(uid), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSchedule(ctx context.Context, s models.Schedule) (*models.Schedule, error) {
	var out models.Schedule
	if err := c.do(ctx, "CreateSchedule", "POST", "/schedules", s, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return &s, nil
	}
	return &out, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, s models.Schedule) (*models.Schedule, error) {
	if s.ID == "" {
		return nil, errors.New("UpdateSchedule: schedule has no id")
	}
	var out models.Schedule
	if err := c.do(ctx, "UpdateSchedule", "PUT", "/schedules/"+escape(s.ID), s, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return &s, nil
	}
	return &out, nil
}

func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.do(ctx, "DeleteSchedule", "DELETE", "/schedules/"+escape(id), nil, nil)
}
