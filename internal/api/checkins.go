package api

import (
	"context"
	"errors"

	"github.com/julianstephens/kairos/internal/models"
)

// checkinRequest is the body accepted by POST /habit-checkin
type checkinRequest struct {
	HabitID   string `json:"habitId"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

func (c *Client) ListCheckins(ctx context.Context) ([]models.HabitCheckin, error) {
	var out []models.HabitCheckin
	if err := c.get(ctx, "ListCheckins", "/habit-checkin", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCheckin(ctx context.Context, id string) (*models.HabitCheckin, error) {
	var out models.HabitCheckin
	if err := c.get(ctx, "GetCheckin", "/habit-checkin/"+escape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCheckinsByUser(ctx context.Context, uid string) ([]models.HabitCheckin, error) {
	var out []models.HabitCheckin
	if err := c.get(ctx, "ListCheckinsByUser", "/habit-checkin/user/"+escape(uid), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCheckin records a checkin. It returns nil without error when the
// backend acknowledges without echoing the record.
func (c *Client) CreateCheckin(ctx context.Context, in models.HabitCheckin) (*models.HabitCheckin, error) {
	body := checkinRequest{
		HabitID:   in.HabitID,
		Date:      in.Date,
		Completed: in.Completed,
		Quantity:  in.Quantity,
		Notes:     in.Notes,
	}
	var out models.HabitCheckin
	if err := c.do(ctx, "CreateCheckin", "POST", "/habit-checkin", body, &out); err != nil {
		c.metrics.RecordCheckin("rolled_back")
		return nil, err
	}
	c.metrics.RecordCheckin("committed")
	if out.ID == "" && out.HabitID == "" {
		return nil, nil
	}
	return &out, nil
}

func (c *Client) UpdateCheckin(ctx context.Context, in models.HabitCheckin) (*models.HabitCheckin, error) {
	if in.ID == "" {
		return nil, errors.New("UpdateCheckin: checkin has no id")
	}
	var out models.HabitCheckin
	if err := c.do(ctx, "UpdateCheckin", "PUT", "/habit-checkin/"+escape(in.ID), in, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return &in, nil
	}
	return &out, nil
}

func (c *Client) DeleteCheckin(ctx context.Context, id string) error {
	return c.do(ctx, "DeleteCheckin", "DELETE", "/habit-checkin/"+escape(id), nil, nil)
}
