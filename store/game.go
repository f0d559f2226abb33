package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alphabeta2023/cubegame/game"
)

// CubeByUsername loads a player's cube, or game.ErrNotFound.
func (s *Store) CubeByUsername(username string) (*game.PlayerCube, error) {
	row := s.db.QueryRow(`SELECT id, username, cube_x, cube_y, cube_z,
		camera_x, camera_y, camera_z, color, size, render_order,
		total_seconds, remaining_seconds, time_expired, paused
		FROM cubes WHERE username = ?`, username)
	return scanCube(row)
}

func scanCube(row *sql.Row) (*game.PlayerCube, error) {
	var c game.PlayerCube
	err := row.Scan(&c.ID, &c.Username,
		&c.Position.X, &c.Position.Y, &c.Position.Z,
		&c.CameraPosition.X, &c.CameraPosition.Y, &c.CameraPosition.Z,
		&c.Color, &c.Size, &c.RenderOrder,
		&c.TotalSeconds, &c.RemainingSeconds, &c.TimeExpired, &c.Paused)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCube upserts a player's cube appearance and position. Clock fields of
// an existing row are left alone; use UpdateClock for those.
func (s *Store) SaveCube(c *game.PlayerCube) error {
	res, err := s.db.Exec(`INSERT INTO cubes
		(username, cube_x, cube_y, cube_z, camera_x, camera_y, camera_z,
		 color, size, render_order, total_seconds, remaining_seconds, time_expired, paused)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			cube_x = excluded.cube_x, cube_y = excluded.cube_y, cube_z = excluded.cube_z,
			camera_x = excluded.camera_x, camera_y = excluded.camera_y, camera_z = excluded.camera_z,
			color = excluded.color, size = excluded.size, render_order = excluded.render_order`,
		c.Username,
		c.Position.X, c.Position.Y, c.Position.Z,
		c.CameraPosition.X, c.CameraPosition.Y, c.CameraPosition.Z,
		c.Color, c.Size, c.RenderOrder,
		c.TotalSeconds, c.RemainingSeconds, c.TimeExpired, c.Paused)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil && c.ID == 0 {
		c.ID = id
	}
	return nil
}

// UpdateClock persists only the clock fields of an existing cube.
func (s *Store) UpdateClock(c *game.PlayerCube) error {
	res, err := s.db.Exec(`UPDATE cubes SET total_seconds = ?,
		remaining_seconds = ?, time_expired = ?, paused = ?
		WHERE username = ?`,
		c.TotalSeconds, c.RemainingSeconds, c.TimeExpired, c.Paused, c.Username)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return game.ErrNotFound
	}
	return nil
}

// ActiveCubes returns every cube whose clock is not paused.
func (s *Store) ActiveCubes() ([]*game.PlayerCube, error) {
	rows, err := s.db.Query(`SELECT id, username, cube_x, cube_y, cube_z,
		camera_x, camera_y, camera_z, color, size, render_order,
		total_seconds, remaining_seconds, time_expired, paused
		FROM cubes WHERE paused = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cubes []*game.PlayerCube
	for rows.Next() {
		var c game.PlayerCube
		if err := rows.Scan(&c.ID, &c.Username,
			&c.Position.X, &c.Position.Y, &c.Position.Z,
			&c.CameraPosition.X, &c.CameraPosition.Y, &c.CameraPosition.Z,
			&c.Color, &c.Size, &c.RenderOrder,
			&c.TotalSeconds, &c.RemainingSeconds, &c.TimeExpired, &c.Paused); err != nil {
			return nil, err
		}
		cubes = append(cubes, &c)
	}
	return cubes, rows.Err()
}

// AppendTile records one trail tile for a player.
func (s *Store) AppendTile(t *game.Tile) error {
	res, err := s.db.Exec(`INSERT INTO tiles (username, x, z, color, size, render_order)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Username, t.X, t.Z, t.Color, t.Size, t.RenderOrder)
	if err != nil {
		return err
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

// TilesByUsernameAsc returns a player's tiles oldest first.
func (s *Store) TilesByUsernameAsc(username string) ([]game.Tile, error) {
	rows, err := s.db.Query(`SELECT id, username, x, z, color, size, render_order
		FROM tiles WHERE username = ? ORDER BY id ASC`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiles []game.Tile
	for rows.Next() {
		var t game.Tile
		if err := rows.Scan(&t.ID, &t.Username, &t.X, &t.Z, &t.Color, &t.Size, &t.RenderOrder); err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}
	return tiles, rows.Err()
}

// DeleteTiles removes a batch of tiles by id.
func (s *Store) DeleteTiles(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.Exec(fmt.Sprintf(`DELETE FROM tiles WHERE id IN (%s)`, placeholders), args...)
	return err
}

// QuadrantOccupied reports whether any live prop holds the quadrant.
func (s *Store) QuadrantOccupied(quadrant int) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM props WHERE quadrant = ?`, quadrant).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertProp persists a prop. A duplicate quadrant surfaces as
// game.ErrQuadrantTaken.
func (s *Store) InsertProp(p *game.Prop) error {
	res, err := s.db.Exec(`INSERT INTO props (username, x, y, z, color, size, rotation_speed, quadrant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Username, p.Position.X, p.Position.Y, p.Position.Z,
		p.Color, p.Size, p.RotationSpeed, p.Quadrant)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return game.ErrQuadrantTaken
		}
		return err
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

// PropsByUsername lists a player's live props.
func (s *Store) PropsByUsername(username string) ([]game.Prop, error) {
	rows, err := s.db.Query(`SELECT id, username, x, y, z, color, size, rotation_speed, quadrant
		FROM props WHERE username = ?`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []game.Prop
	for rows.Next() {
		var p game.Prop
		if err := rows.Scan(&p.ID, &p.Username,
			&p.Position.X, &p.Position.Y, &p.Position.Z,
			&p.Color, &p.Size, &p.RotationSpeed, &p.Quadrant); err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

// PropByQuadrant loads the live prop holding a quadrant, or game.ErrNotFound.
func (s *Store) PropByQuadrant(quadrant int) (*game.Prop, error) {
	var p game.Prop
	err := s.db.QueryRow(`SELECT id, username, x, y, z, color, size, rotation_speed, quadrant
		FROM props WHERE quadrant = ?`, quadrant).Scan(
		&p.ID, &p.Username,
		&p.Position.X, &p.Position.Y, &p.Position.Z,
		&p.Color, &p.Size, &p.RotationSpeed, &p.Quadrant)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProp removes a prop by id, reporting whether a row existed.
func (s *Store) DeleteProp(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM props WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAllForUser wipes a player's cube, tiles, and props in one
// transaction. The user record itself stays.
func (s *Store) DeleteAllForUser(username string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM cubes WHERE username = ?`,
		`DELETE FROM tiles WHERE username = ?`,
		`DELETE FROM props WHERE username = ?`,
	} {
		if _, err := tx.Exec(stmt, username); err != nil {
			return err
		}
	}
	return tx.Commit()
}
