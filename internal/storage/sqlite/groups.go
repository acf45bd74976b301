package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/storage"
)

const groupColumns = `id, name, code, creator_id, lock_join, prevent_reset, trip_plan,
	restaurants_by_day, restaurants, last_recommended_at, version, created_at`

// CreateGroup persists a new group and its members in one transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	cols, err := encodeGroupColumns(group)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	group.Code = strings.ToUpper(group.Code)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Code, group.CreatorID,
		boolToInt(group.LockJoin), boolToInt(group.PreventReset),
		cols.tripPlan, cols.byDay, cols.picks,
		group.LastRecommendedAt, 1, group.CreatedAt,
	)
	switch {
	case isUniqueViolation(err, "groups.code"):
		return storage.ErrCodeTaken
	case isUniqueViolation(err, "groups.id"):
		return storage.ErrConflict
	case err != nil:
		return errors.Wrap(err, "failed to insert group")
	}

	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	group.Version = 1
	return nil
}

// GetGroup retrieves a group by ID, including its members in join order.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id)
	return s.loadGroup(ctx, row)
}

// GetGroupByCode resolves a join code case-insensitively.
func (s *SQLiteStore) GetGroupByCode(ctx context.Context, code string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE code = ? COLLATE NOCASE`, code)
	return s.loadGroup(ctx, row)
}

// GroupCodeExists reports whether a join code is in use.
func (s *SQLiteStore) GroupCodeExists(ctx context.Context, code string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE code = ? COLLATE NOCASE`, code).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to check join code")
	}
	return true, nil
}

// ListGroups returns groups matching filter, oldest first.
func (s *SQLiteStore) ListGroups(ctx context.Context, filter storage.GroupFilter) ([]*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups`
	var args []any
	if filter.MemberID != "" {
		query += ` WHERE id IN (SELECT group_id FROM group_members WHERE user_id = ?)`
		args = append(args, filter.MemberID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list groups")
	}

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan group")
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate groups")
	}

	// Members are loaded after the cursor is closed: the store runs on one connection.
	for _, group := range groups {
		if group.Members, err = s.listMembers(ctx, s.db, group.ID); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// UpdateGroup writes group if its version still matches the stored one.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	cols, err := encodeGroupColumns(group)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE groups SET name = ?, lock_join = ?, prevent_reset = ?, trip_plan = ?,
		 restaurants_by_day = ?, restaurants = ?, last_recommended_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		group.Name, boolToInt(group.LockJoin), boolToInt(group.PreventReset),
		cols.tripPlan, cols.byDay, cols.picks, group.LastRecommendedAt,
		group.ID, group.Version,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update group")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE id = ?`, group.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return storage.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to check group existence")
		}
		return storage.ErrConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, group.ID); err != nil {
		return errors.Wrap(err, "failed to clear members")
	}
	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	group.Version++
	return nil
}

// DeleteGroup removes a group; members cascade with it.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete group")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStore) loadGroup(ctx context.Context, row *sql.Row) (*models.Group, error) {
	group, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get group")
	}

	if group.Members, err = s.listMembers(ctx, s.db, group.ID); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *SQLiteStore) listMembers(ctx context.Context, q queryer, groupID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position`,
		groupID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get members")
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, errors.Wrap(err, "failed to scan member")
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate members")
	}
	return members, nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, groupID string, members []string) error {
	for i, userID := range members {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, position) VALUES (?, ?, ?)`,
			groupID, userID, i,
		)
		if err != nil {
			return errors.Wrap(err, "failed to insert member")
		}
	}
	return nil
}

type groupJSONColumns struct {
	tripPlan any
	byDay    any
	picks    any
}

func encodeGroupColumns(group *models.Group) (groupJSONColumns, error) {
	var cols groupJSONColumns
	var err error
	if cols.tripPlan, err = nullJSON(group.TripPlan, group.TripPlan == nil); err != nil {
		return cols, err
	}
	if cols.byDay, err = nullJSON(group.RestaurantsByDay, group.RestaurantsByDay == nil); err != nil {
		return cols, err
	}
	if cols.picks, err = nullJSON(group.Restaurants, group.Restaurants == nil); err != nil {
		return cols, err
	}
	return cols, nil
}

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	var lockJoin, preventReset int
	var tripPlan, byDay, picks sql.NullString

	if err := row.Scan(
		&group.ID, &group.Name, &group.Code, &group.CreatorID,
		&lockJoin, &preventReset, &tripPlan, &byDay, &picks,
		&group.LastRecommendedAt, &group.Version, &group.CreatedAt,
	); err != nil {
		return nil, err
	}

	group.LockJoin = lockJoin != 0
	group.PreventReset = preventReset != 0
	if tripPlan.Valid {
		group.TripPlan = &models.TripPlan{}
		if err := scanJSON(tripPlan, group.TripPlan); err != nil {
			return nil, err
		}
	}
	if err := scanJSON(byDay, &group.RestaurantsByDay); err != nil {
		return nil, err
	}
	if err := scanJSON(picks, &group.Restaurants); err != nil {
		return nil, err
	}
	return group, nil
}
