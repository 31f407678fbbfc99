package api

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/utils"
)

func (c *Client) ListHabits(ctx context.Context) ([]models.Habit, error) {
	var out []models.Habit
	if err := c.get(ctx, "ListHabits", "/habit", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetHabit(ctx context.Context, id string) (*models.Habit, error) {
	var out models.Habit
	if err := c.get(ctx, "GetHabit", "/habits/"+escape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListHabitsByUser(ctx context.Context, uid string) ([]models.Habit, error) {
	var out []models.Habit
	if err := c.get(ctx, "ListHabitsByUser", "/habit/user/"+escape(uid), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HabitsForDay returns the habits of uid with the checkins recorded on day
func (c *Client) HabitsForDay(ctx context.Context, uid string, day time.Time) ([]models.HabitForHome, error) {
	var out []models.HabitForHome
	path := "/habit/user/" + escape(uid) + "/date/" + utils.PathDate(day)
	if err := c.get(ctx, "ListHabitsForDay", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateHabit(ctx context.Context, h models.Habit) (*models.Habit, error) {
	var out models.Habit
	if err := c.do(ctx, "CreateHabit", "POST", "/habits", h, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return &h, nil
	}
	return &out, nil
}

func (c *Client) UpdateHabit(ctx context.Context, h models.Habit) (*models.Habit, error) {
	if h.ID == "" {
		return nil, errors.New("UpdateHabit: habit has no id")
	}
	var out models.Habit
	if err := c.do(ctx, "UpdateHabit", "PUT", "/habits/"+escape(h.ID), h, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return &h, nil
	}
	return &out, nil
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, "DeleteHabit", "DELETE", "/habits/"+escape(id), nil, nil)
}
