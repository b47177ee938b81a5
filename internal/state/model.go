package state

import (
	"errors"
	"time"
)

var (
	ErrWallNotFound = errors.New("wall not found")
	ErrNotSignedIn  = errors.New("sign in to create a wall")
	ErrEmptyName    = errors.New("name must not be empty")
	ErrInvalidID    = errors.New("invalid wall id")
)

// UnnamedWall is shown for a wall id that is not in the registry, such as a
// link opened on another machine.
const UnnamedWall = "Untitled wall"

// Wall is a named drawing surface. Only its identity is stored; pixels live
// in the raster buffer of whoever has it open.
type Wall struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// User is the signed-in display identity.
type User struct {
	Name   string
	Avatar string
}
