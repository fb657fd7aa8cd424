package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// AddFoodItem logs a food item and returns it with its new ID
func (s *Store) AddFoodItem(item FoodItem) (*FoodItem, error) {
	if item.Date == "" {
		return nil, errors.New("food item date is required")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	_, err := s.db.Exec(`
		INSERT INTO food_items (id, date, meal, name, carbs, protein, fat, calories, fluid_ml, logged_at, profile)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Date, item.Meal, item.Name, item.Carbs, item.Protein, item.Fat,
		item.Calories, item.FluidMl, item.LoggedAt, item.Profile)
	if err != nil {
		return nil, fmt.Errorf("inserting food item: %w", err)
	}
	return &item, nil
}

// GetFoodItems returns the items logged for a date in insertion order
func (s *Store) GetFoodItems(date string) ([]FoodItem, error) {
	rows, err := s.db.Query(`
		SELECT id, date, meal, name, carbs, protein, fat, calories, fluid_ml, logged_at, profile
		FROM food_items
		WHERE date = ?
		ORDER BY created_at, rowid
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []FoodItem
	for rows.Next() {
		var f FoodItem
		if err := rows.Scan(&f.ID, &f.Date, &f.Meal, &f.Name, &f.Carbs, &f.Protein, &f.Fat,
			&f.Calories, &f.FluidMl, &f.LoggedAt, &f.Profile); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// DeleteFoodItem removes a logged item
func (s *Store) DeleteFoodItem(id string) error {
	result, err := s.db.Exec(`DELETE FROM food_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFoodItemNotFound
	}
	return nil
}

// SaveNutritionDay stores the goal and flat carb total for a date
func (s *Store) SaveNutritionDay(day NutritionDay) error {
	_, err := s.db.Exec(`
		INSERT INTO nutrition_days (date, carb_goal, total_carbs, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			carb_goal = excluded.carb_goal,
			total_carbs = excluded.total_carbs,
			updated_at = CURRENT_TIMESTAMP
	`, day.Date, day.CarbGoal, day.TotalCarbs)
	return err
}

// GetNutritionDay returns the day figures, zero valued when nothing was saved
func (s *Store) GetNutritionDay(date string) (NutritionDay, error) {
	day := NutritionDay{Date: date}
	err := s.db.QueryRow(`
		SELECT carb_goal, total_carbs FROM nutrition_days WHERE date = ?
	`, date).Scan(&day.CarbGoal, &day.TotalCarbs)
	if errors.Is(err, sql.ErrNoRows) {
		return day, nil
	}
	return day, err
}
