package api

import (
	"context"
	"errors"

	"github.com/julianstephens/kairos/internal/models"
)

func (c *Client) ListTasksByUser(ctx context.Context, uid string) ([]models.Task, error) {
	var out []models.Task
	if err := c.get(ctx, "ListTasksByUser", "/task/user/"+escape(uid), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTask replaces a task. A nil result means the backend did not echo it.
func (c *Client) UpdateTask(ctx context.Context, t models.Task) (*models.Task, error) {
	if t.ID == "" {
		return nil, errors.New("UpdateTask: task has no id")
	}
	var out models.Task
	if err := c.do(ctx, "UpdateTask", "PUT", "/task/"+escape(t.ID), t, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, nil
	}
	return &out, nil
}

func (c *Client) FinanceSummary(ctx context.Context, uid string) (*models.FinanceSummary, error) {
	var out models.FinanceSummary
	if err := c.get(ctx, "GetFinanceSummary", "/finance/summary/user/"+escape(uid), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
